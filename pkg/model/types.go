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

package model

import (
	"time"
)

// OutputID identifies a binary (or proportional) output line.
type OutputID string

const (
	// CameraOutputID is the output id of the camera trigger line.
	CameraOutputID OutputID = "camera"
)

// Polarity of the camera trigger pulse.
type Polarity string

const (
	PolarityActiveLow  Polarity = "active-low"
	PolarityActiveHigh Polarity = "active-high"
)

// IsValid returns true for known polarities.
func (p Polarity) IsValid() bool {
	return p == PolarityActiveLow || p == PolarityActiveHigh
}

// ActiveLevel returns the electrical level of the line while the pulse is active.
func (p Polarity) ActiveLevel() bool {
	return p == PolarityActiveHigh
}

// StartSemantics selects how the start control is interpreted.
type StartSemantics string

const (
	// StartLevel treats the debounced button level as the run state (switch).
	StartLevel StartSemantics = "level"
	// StartEdge toggles the run state on every debounced press.
	StartEdge StartSemantics = "edge"
)

// IsValid returns true for known start semantics.
func (s StartSemantics) IsValid() bool {
	return s == StartLevel || s == StartEdge
}

// Duration is a time.Duration that is written as a string ("20ms") in config files.
type Duration time.Duration

// D returns the standard library duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return invalid("invalid duration '%s': %s", string(text), err)
	}
	*d = Duration(parsed)
	return nil
}
