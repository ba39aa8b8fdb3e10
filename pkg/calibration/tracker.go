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

package calibration

// NotSampled is the value of a reading that has not been sampled yet.
const NotSampled = -1

// Tracker remembers the last value of a reading, so callers only refresh
// the display when the value actually changed.
type Tracker struct {
	value int
}

// NewTracker returns a tracker that has not been sampled yet.
func NewTracker() Tracker {
	return Tracker{value: NotSampled}
}

// Value returns the last stored value (NotSampled when never updated).
func (t Tracker) Value() int {
	return t.value
}

// Sampled returns true once a value has been stored.
func (t Tracker) Sampled() bool {
	return t.value != NotSampled
}

// Update stores the given value and returns true when it differs from the
// previous one.
func (t *Tracker) Update(value int) bool {
	changed := t.value != value
	t.value = value
	return changed
}
