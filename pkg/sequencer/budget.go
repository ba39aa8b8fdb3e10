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
	"github.com/samber/lo"
)

// Budget is the timing budget of a single trigger cycle, expressed in time units.
type Budget struct {
	// FPS is the frame rate after clamping.
	FPS int
	// DeadTime is the hold before the camera pulse.
	DeadTime int
	// Exposure is the time between the camera pulse and the pattern advance,
	// including the pulse itself. Never negative.
	Exposure int
}

// NewBudget derives a budget from the given frame rate.
// The frame rate is clamped into [minFPS, maxFPS] and the resulting
// exposure is clamped to zero when the dead time exceeds the frame period.
func NewBudget(fps, minFPS, maxFPS, deadTime int) Budget {
	fps = lo.Clamp(fps, minFPS, maxFPS)
	if fps <= 0 {
		fps = 1
	}
	return Budget{
		FPS:      fps,
		DeadTime: max(deadTime, 0),
		Exposure: max(1000/fps-deadTime, 0),
	}
}

// ExposureHold returns the number of units to hold after the camera pulse.
func (b Budget) ExposureHold() int {
	return max(b.Exposure-1, 0)
}

// Period returns the total number of units of a cycle using this budget.
func (b Budget) Period() int {
	return b.DeadTime + pulseUnits + b.ExposureHold()
}
