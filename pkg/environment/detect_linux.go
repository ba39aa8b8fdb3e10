// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package environment

import (
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

// AutoDetectBridgeType detects the default bridge type based on the environment.
func AutoDetectBridgeType(log zerolog.Logger) string {
	boardModel, _ := os.ReadFile(deviceTreeModelPath)
	var name unix.Utsname
	if err := unix.Uname(&name); err != nil {
		log.Debug().Err(err).Msg("Uname failed")
		return detectBridgeType(cString(boardModel), "", "")
	}
	result := detectBridgeType(cString(boardModel), cString(name.Machine[:]), cString(name.Release[:]))
	log.Debug().
		Str("model", cString(boardModel)).
		Str("machine", cString(name.Machine[:])).
		Str("release", cString(name.Release[:])).
		Str("bridge", result).
		Msg("Detected bridge type")
	return result
}
