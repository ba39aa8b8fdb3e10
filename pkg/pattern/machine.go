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

// Package pattern implements the illumination mode state machine.
// A Machine holds the active mode and the per-channel on/off vector and
// computes the next vector once per trigger cycle.
package pattern

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/ewoutp/npm-illuminator/pkg/model"
)

var (
	maskAny = errors.WithStack
)

// LevelWriter is implemented by output drivers that can switch a channel on or off.
type LevelWriter interface {
	SetLevel(id model.OutputID, on bool) error
}

// Machine is the mode state machine.
// It is owned by the control loop and not safe for concurrent use.
type Machine struct {
	modes             []model.Mode
	modeIndex         int
	pair              [2]int
	presets           model.PresetsConfig
	resetOnModeChange bool
	levels            []bool
	activeIndex       int
}

// NewMachine creates a machine for the given number of channels, starting
// in the first configured mode with all channels off.
// The given configuration is expected to be validated.
func NewMachine(cfg model.ModesConfig, channels int) *Machine {
	m := &Machine{
		modes:             append([]model.Mode(nil), cfg.Active...),
		presets:           cfg.Presets,
		resetOnModeChange: cfg.ResetPatternOnModeChange,
		levels:            make([]bool, channels),
	}
	if len(m.modes) == 0 {
		m.modes = []model.Mode{model.ModeConstant}
	}
	if len(cfg.Pair) == 2 {
		m.pair = [2]int{cfg.Pair[0], cfg.Pair[1]}
	} else {
		m.pair = [2]int{1, 2}
	}
	return m
}

// Mode returns the current mode.
func (m *Machine) Mode() model.Mode {
	return m.modes[m.modeIndex]
}

// Modes returns the set of modes the machine cycles through.
func (m *Machine) Modes() []model.Mode {
	return append([]model.Mode(nil), m.modes...)
}

// Levels returns a copy of the current on/off vector.
func (m *Machine) Levels() []bool {
	return append([]bool(nil), m.levels...)
}

// ActiveIndex returns the channel that is on in round-robin mode.
func (m *Machine) ActiveIndex() int {
	return m.activeIndex
}

// AdvanceMode moves to the next mode of the active set, wrapping after the last.
// The on/off vector is left untouched unless the machine is configured
// to reset it to the preset of the entered mode.
func (m *Machine) AdvanceMode() model.Mode {
	m.modeIndex = (m.modeIndex + 1) % len(m.modes)
	if m.resetOnModeChange {
		m.ApplyPreset()
	}
	return m.Mode()
}

// Preset returns the baseline vector of the given mode.
// Returns nil when the mode has no baseline.
func (m *Machine) Preset(mode model.Mode) []bool {
	return m.presets.Preset(mode)
}

// ApplyPreset initializes the vector with the preset of the current mode.
// Returns false when the current mode has no preset.
func (m *Machine) ApplyPreset() bool {
	preset := m.Preset(m.Mode())
	if len(preset) == 0 {
		return false
	}
	m.InitPattern(preset...)
	return true
}

// InitPattern sets the on/off vector explicitly.
// Missing levels are off, surplus levels are ignored.
// The round-robin index moves to the first channel that is on (0 when none).
func (m *Machine) InitPattern(levels ...bool) {
	for i := range m.levels {
		m.levels[i] = i < len(levels) && levels[i]
	}
	m.activeIndex = 0
	if _, idx, found := lo.FindIndexOf(m.levels, func(on bool) bool { return on }); found {
		m.activeIndex = idx
	}
}

// Shutdown turns all channels off and writes the result to the given output.
// All channels are written, even when some writes fail.
func (m *Machine) Shutdown(out LevelWriter, ids []model.OutputID) error {
	for i := range m.levels {
		m.levels[i] = false
	}
	return maskAny(writeLevels(out, ids, m.levels))
}

// Advance computes the on/off vector of the next cycle for the current mode
// and returns a copy of it.
// The intensities are only used in constant mode, where a channel is on
// whenever its intensity is positive.
func (m *Machine) Advance(intensities []int) []bool {
	n := len(m.levels)
	switch m.Mode() {
	case model.ModeConstant:
		for i := range m.levels {
			m.levels[i] = i < len(intensities) && intensities[i] > 0
		}
	case model.ModeAlternateAll:
		for i := range m.levels {
			m.levels[i] = !m.levels[i]
		}
	case model.ModeAlternatePair:
		for i := range m.levels {
			if i == m.pair[0] || i == m.pair[1] {
				m.levels[i] = !m.levels[i]
			} else {
				m.levels[i] = false
			}
		}
	case model.ModeRoundRobin:
		if n > 0 {
			m.activeIndex = (m.activeIndex + 1) % n
			for i := range m.levels {
				m.levels[i] = i == m.activeIndex
			}
		}
	}
	return m.Levels()
}

// Apply writes the current vector to the given output.
func (m *Machine) Apply(out LevelWriter, ids []model.OutputID) error {
	return maskAny(writeLevels(out, ids, m.levels))
}

// writeLevels writes all levels, returning the first error.
func writeLevels(out LevelWriter, ids []model.OutputID, levels []bool) error {
	var firstErr error
	for i, id := range ids {
		if i >= len(levels) {
			break
		}
		if err := out.SetLevel(id, levels[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
