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

// Package sequencer implements the camera trigger sequence.
//
// Each cycle holds the outputs for the dead time, pulses the camera
// trigger line for one time unit, holds for the remaining exposure time
// and finally advances the LED pattern of the active mode.
// A cycle always runs to completion.
package sequencer

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/pattern"
)

const (
	// Number of units the camera trigger line is held at its active level.
	pulseUnits = 1
)

// Output is implemented by drivers of the camera and LED lines.
type Output interface {
	SetLevel(id model.OutputID, on bool) error
}

// Config of the sequencer.
type Config struct {
	// Camera trigger line
	Camera model.OutputID
	// Polarity of the camera trigger line
	Polarity model.Polarity
	// LED channel lines, in pattern order
	Channels []model.OutputID
	// Duration of a single time unit
	TimeUnit time.Duration
}

// Dependencies of the sequencer.
type Dependencies struct {
	Log     zerolog.Logger
	Clock   Clock
	Output  Output
	Pattern *pattern.Machine
	// Calibrate is invoked at the start of the pattern advance in
	// constant mode and returns the current channel intensities.
	// It is also responsible for writing proportional outputs.
	Calibrate func() []int
	// Observer is optional.
	Observer Observer
}

// CycleReport describes a completed cycle.
type CycleReport struct {
	Budget      Budget
	Mode        model.Mode
	Levels      []bool
	Duration    time.Duration
	WriteErrors int
}

// Sequencer runs trigger cycles.
// It is owned by the control loop and not safe for concurrent use.
type Sequencer struct {
	Config
	Dependencies

	state  State
	cycles uint64
}

// New creates a new sequencer in idle state.
func New(cfg Config, deps Dependencies) *Sequencer {
	if cfg.TimeUnit <= 0 {
		cfg.TimeUnit = time.Millisecond
	}
	if cfg.Polarity == "" {
		cfg.Polarity = model.PolarityActiveLow
	}
	return &Sequencer{
		Config:       cfg,
		Dependencies: deps,
		state:        StateIdle,
	}
}

// State returns the current state.
func (s *Sequencer) State() State {
	return s.state
}

// Cycles returns the number of completed cycles.
func (s *Sequencer) Cycles() uint64 {
	return s.cycles
}

// Reset drives the camera line to its inactive level.
func (s *Sequencer) Reset() error {
	s.enter(StateIdle)
	return s.Output.SetLevel(s.Camera, !s.Polarity.ActiveLevel())
}

// RunCycle runs exactly one trigger cycle with the given budget.
func (s *Sequencer) RunCycle(budget Budget) CycleReport {
	start := s.Clock.Now()
	writeErrors := 0
	write := func(id model.OutputID, on bool) {
		if err := s.Output.SetLevel(id, on); err != nil {
			writeErrors++
			outputWriteErrorsTotal.WithLabelValues(string(id)).Inc()
			s.Log.Warn().Err(err).Str("output", string(id)).Msg("Failed to write output level")
		}
	}

	s.enter(StateDeadTime)
	s.hold(budget.DeadTime)

	s.enter(StatePulseRise)
	active := s.Polarity.ActiveLevel()
	write(s.Camera, active)
	s.hold(pulseUnits)
	write(s.Camera, !active)

	s.enter(StateExposing)
	s.hold(budget.ExposureHold())

	s.enter(StatePatternAdvance)
	mode := s.Pattern.Mode()
	var intensities []int
	if mode == model.ModeConstant && s.Calibrate != nil {
		intensities = s.Calibrate()
	}
	levels := s.Pattern.Advance(intensities)
	for i, id := range s.Channels {
		if i < len(levels) {
			write(id, levels[i])
		}
	}

	s.enter(StateIdle)
	s.cycles++
	duration := s.Clock.Now() - start
	cyclesTotal.Inc()
	cycleDurationSeconds.Observe(duration.Seconds())
	exposureUnits.Set(float64(budget.Exposure))
	return CycleReport{
		Budget:      budget,
		Mode:        mode,
		Levels:      levels,
		Duration:    duration,
		WriteErrors: writeErrors,
	}
}

// hold waits for the given number of time units.
func (s *Sequencer) hold(units int) {
	if units <= 0 {
		return
	}
	s.Clock.Sleep(time.Duration(units) * s.TimeUnit)
}

// enter switches to the given state and notifies the observer.
func (s *Sequencer) enter(state State) {
	s.state = state
	if s.Observer != nil {
		s.Observer(state)
	}
}
