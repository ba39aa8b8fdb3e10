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

// State of the trigger sequencer.
type State int

const (
	StateIdle State = iota
	StateDeadTime
	StatePulseRise
	StateExposing
	StatePatternAdvance
)

// String returns a human readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDeadTime:
		return "dead-time"
	case StatePulseRise:
		return "pulse-rise"
	case StateExposing:
		return "exposing"
	case StatePatternAdvance:
		return "pattern-advance"
	default:
		return "unknown"
	}
}

// Observer is notified of every state the sequencer enters.
type Observer func(State)
