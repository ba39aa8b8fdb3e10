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
	"strings"
)

const (
	// BridgeRaspberryPi selects the Raspberry Pi GPIO, I2C and SPI bridge.
	BridgeRaspberryPi = "rpi"
	// BridgeSimulator selects the virtual bridge with the simulator front panel.
	BridgeSimulator = "sim"

	// Location of the board model on device tree based systems
	deviceTreeModelPath = "/proc/device-tree/model"
)

// detectBridgeType selects a bridge type from the board model and the
// kernel identification.
func detectBridgeType(boardModel, machine, release string) string {
	if strings.Contains(boardModel, "Raspberry Pi") {
		return BridgeRaspberryPi
	}
	isArm := strings.HasPrefix(machine, "arm") || machine == "aarch64"
	if isArm && (strings.Contains(release, "rpi") || strings.Contains(release, "raspi") || strings.HasSuffix(release, "v7+") || strings.HasSuffix(release, "v8+")) {
		return BridgeRaspberryPi
	}
	return BridgeSimulator
}

// cString converts a zero terminated byte array to a string.
func cString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		b = b[:i]
	}
	return strings.TrimSpace(string(b))
}
