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

package sequencer

import (
	"time"
)

// Clock provides monotonic time readings and blocking waits.
type Clock interface {
	// Now returns the time elapsed since an arbitrary fixed point.
	// It never goes backwards.
	Now() time.Duration
	// Sleep blocks for the given duration.
	// Non-positive durations return immediately.
	Sleep(d time.Duration)
	// Resolution returns the smallest wait the clock can honor.
	Resolution() time.Duration
}

// DefaultSpinThreshold is the final part of a wait that is busy-waited.
const DefaultSpinThreshold = 200 * time.Microsecond

// spinUntil busy-waits until the clock reaches the given deadline.
func spinUntil(now func() time.Duration, deadline time.Duration) {
	for now() < deadline {
	}
}
