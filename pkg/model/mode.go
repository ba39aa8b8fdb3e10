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
	"fmt"
	"strings"
)

// Mode is an illumination pattern policy applied once per cycle.
type Mode int

const (
	// ModeConstant lets all channels follow their calibrated intensity.
	ModeConstant Mode = iota
	// ModeAlternateAll flips every channel each cycle.
	ModeAlternateAll
	// ModeAlternatePair flips the two pair channels each cycle, the third stays off.
	ModeAlternatePair
	// ModeRoundRobin turns on exactly one channel per cycle, advancing cyclically.
	ModeRoundRobin
)

// AllModes lists every supported mode in cycle order.
var AllModes = []Mode{ModeConstant, ModeAlternateAll, ModeAlternatePair, ModeRoundRobin}

var modeNames = map[Mode]string{
	ModeConstant:      "constant",
	ModeAlternateAll:  "alternate-all",
	ModeAlternatePair: "alternate-pair",
	ModeRoundRobin:    "round-robin",
}

// IsValid returns true when m is a member of the closed mode set.
func (m Mode) IsValid() bool {
	_, found := modeNames[m]
	return found
}

func (m Mode) String() string {
	if name, found := modeNames[m]; found {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// Label returns the 4 character label shown on the display.
func (m Mode) Label() string {
	switch m {
	case ModeConstant:
		return "CNST"
	case ModeAlternateAll:
		return "TRG1"
	case ModeAlternatePair:
		return "TRG2"
	case ModeRoundRobin:
		return "TRG3"
	default:
		return "????"
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", "-")
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return ModeConstant, invalid("unknown mode '%s'", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if !m.IsValid() {
		return nil, invalid("invalid mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
