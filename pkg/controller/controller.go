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

// Package controller implements the control loop of the illuminator.
//
// While idle the loop polls the operator controls and refreshes the
// calibrated readings on the display. While running it invokes the
// trigger sequencer once per iteration and only observes a stop
// request between cycles.
package controller

import (
	"context"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ewoutp/npm-illuminator/pkg/calibration"
	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/pattern"
	"github.com/ewoutp/npm-illuminator/pkg/sequencer"
)

var (
	maskAny = errors.WithStack
)

// Dependencies of the controller.
type Dependencies struct {
	Log     zerolog.Logger
	Sampler Sampler
	Output  Output
	// Proportional is optional.
	Proportional ProportionalOutput
	// Display is optional.
	Display Display
	Buttons Buttons
	Clock   sequencer.Clock
	// Observer is optional and notified of every sequencer state.
	Observer sequencer.Observer
}

// State of the control loop.
type State struct {
	// Running is set while trigger cycles are emitted.
	Running bool
	// Intensities holds the calibrated intensity per channel.
	Intensities []calibration.Tracker
	// FPS holds the calibrated frame rate.
	FPS calibration.Tracker
	// Codes holds the last digipot code written per channel.
	Codes []calibration.Tracker
	// Budget of the last cycle.
	Budget sequencer.Budget
	// Cycles is the number of completed cycles.
	Cycles uint64

	rawChannels []int
	rawFPS      int
	readErrors  map[int]string
}

// Iteration describes the outcome of a single Iterate call.
type Iteration struct {
	// Cycle is set when a trigger cycle was run.
	Cycle *sequencer.CycleReport
	// ModeChanged is set when the mode button advanced the mode.
	ModeChanged bool
	// Started is set when the loop entered the running state.
	Started bool
	// Stopped is set when the loop left the running state.
	Stopped bool
}

// Controller runs the control loop.
type Controller struct {
	Dependencies

	cfg     model.Config
	ids     []model.OutputID
	machine *pattern.Machine
	seq     *sequencer.Sequencer
	state   State
}

// New creates a controller for the given (validated) configuration.
func New(cfg model.Config, deps Dependencies) (*Controller, error) {
	if deps.Sampler == nil || deps.Output == nil || deps.Buttons == nil || deps.Clock == nil {
		return nil, maskAny(errors.New("sampler, output, buttons and clock are required"))
	}
	if deps.Display == nil {
		deps.Display = nopDisplay{}
	}
	n := len(cfg.Channels)
	c := &Controller{
		Dependencies: deps,
		cfg:          cfg,
		ids:          make([]model.OutputID, n),
		machine:      pattern.NewMachine(cfg.Modes, n),
		state: State{
			Intensities: make([]calibration.Tracker, n),
			FPS:         calibration.NewTracker(),
			Codes:       make([]calibration.Tracker, n),
			rawChannels: make([]int, n),
			readErrors:  make(map[int]string),
		},
	}
	for i, ch := range cfg.Channels {
		c.ids[i] = ch.OutputID()
		c.state.Intensities[i] = calibration.NewTracker()
		c.state.Codes[i] = calibration.NewTracker()
	}
	c.seq = sequencer.New(sequencer.Config{
		Camera:   model.CameraOutputID,
		Polarity: cfg.Camera.Polarity,
		Channels: c.ids,
		TimeUnit: cfg.Timing.TimeUnit.D(),
	}, sequencer.Dependencies{
		Log:       deps.Log,
		Clock:     deps.Clock,
		Output:    deps.Output,
		Pattern:   c.machine,
		Calibrate: c.calibrate,
		Observer:  deps.Observer,
	})
	return c, nil
}

// State returns a snapshot of the loop state.
func (c *Controller) State() State {
	s := c.state
	s.Intensities = append([]calibration.Tracker(nil), c.state.Intensities...)
	s.Codes = append([]calibration.Tracker(nil), c.state.Codes...)
	s.Cycles = c.seq.Cycles()
	return s
}

// Mode returns the active mode.
func (c *Controller) Mode() model.Mode {
	return c.machine.Mode()
}

// Levels returns the current LED on/off vector.
func (c *Controller) Levels() []bool {
	return c.machine.Levels()
}

// Init drives all outputs to their inactive level, draws the display
// layout and takes the initial readings.
func (c *Controller) Init(ctx context.Context) error {
	if err := c.seq.Reset(); err != nil {
		return errors.Wrap(err, "failed to reset camera line")
	}
	if err := c.machine.Shutdown(c.Output, c.ids); err != nil {
		return errors.Wrap(err, "failed to turn LEDs off")
	}
	c.showLayout()
	c.refresh(ctx)
	runningGauge.Set(0)
	return nil
}

// Iterate runs a single iteration of the control loop.
func (c *Controller) Iterate(ctx context.Context) Iteration {
	iterationsTotal.Inc()
	var result Iteration
	if !c.state.Running {
		result.ModeChanged = c.pollMode()
		c.refresh(ctx)
		if ctx.Err() == nil && c.wantRunning() {
			c.start()
			result.Started = true
		}
		return result
	}

	c.state.Budget = sequencer.NewBudget(c.state.FPS.Value(),
		c.cfg.Timing.MinFPS, c.cfg.Timing.MaxFPS, c.cfg.Timing.DeadTime)
	report := c.seq.RunCycle(c.state.Budget)
	result.Cycle = &report
	result.ModeChanged = c.pollMode()
	if ctx.Err() != nil || !c.wantRunning() {
		c.stop()
		result.Stopped = true
	}
	return result
}

// Run iterates until the given context is canceled.
// Outputs are turned off when the loop ends.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return maskAny(err)
	}
	log := c.Log
	log.Info().
		Str("mode", c.machine.Mode().String()).
		Int("fps", c.state.FPS.Value()).
		Msg("Control loop started")
	idle := c.cfg.IdlePollInterval.D()
	for {
		it := c.Iterate(ctx)
		if it.Started {
			log.Info().Str("mode", c.machine.Mode().String()).Msg("Started")
		}
		if it.Stopped {
			log.Info().Uint64("cycles", c.seq.Cycles()).Msg("Stopped")
		}
		if ctx.Err() != nil {
			if c.state.Running {
				c.stop()
			}
			log.Info().Uint64("cycles", c.seq.Cycles()).Msg("Control loop ended")
			return nil
		}
		if !c.state.Running && idle > 0 {
			timer := time.NewTimer(idle)
			select {
			case <-ctx.Done():
				timer.Stop()
			case <-timer.C:
			}
		}
	}
}

// wantRunning evaluates the start control.
func (c *Controller) wantRunning() bool {
	if c.cfg.Buttons.StartAs == model.StartEdge {
		if c.Buttons.StartEdge() {
			return !c.state.Running
		}
		return c.state.Running
	}
	return c.Buttons.StartLevel()
}

// pollMode advances the mode on a mode button press.
func (c *Controller) pollMode() bool {
	if !c.Buttons.ModeEdge() {
		return false
	}
	mode := c.machine.AdvanceMode()
	modeChangesTotal.WithLabelValues(mode.String()).Inc()
	c.Log.Info().Str("mode", mode.String()).Msg("Mode changed")
	c.showMode()
	return true
}

// start enters the running state from the preset of the current mode.
func (c *Controller) start() {
	c.state.Running = true
	runningGauge.Set(1)
	if c.machine.ApplyPreset() {
		if err := c.machine.Apply(c.Output, c.ids); err != nil {
			c.Log.Warn().Err(err).Msg("Failed to apply mode preset")
		}
	}
	c.showStatus()
}

// stop leaves the running state and turns all LEDs off.
func (c *Controller) stop() {
	c.state.Running = false
	runningGauge.Set(0)
	if err := c.machine.Shutdown(c.Output, c.ids); err != nil {
		c.Log.Warn().Err(err).Msg("Failed to turn LEDs off")
	}
	c.showStatus()
}

// calibrate samples the channel inputs during a constant mode cycle,
// writes changed digipot codes and returns the channel intensities.
// The frame rate input is left alone to keep the cycle period.
func (c *Controller) calibrate() []int {
	c.refreshChannels(context.Background())
	result := make([]int, len(c.state.Intensities))
	for i, t := range c.state.Intensities {
		result[i] = t.Value()
	}
	return result
}

// refresh samples all channel and frame rate inputs and updates the
// display for every changed value.
func (c *Controller) refresh(ctx context.Context) {
	c.refreshChannels(ctx)
	raw := c.read(ctx, c.cfg.FPS.Input, c.state.rawFPS)
	c.state.rawFPS = raw
	fps := calibration.SampleToFPS(raw, c.cfg.FPS.PotLow, c.cfg.FPS.PotHigh, c.cfg.Timing.MinFPS, c.cfg.Timing.MaxFPS)
	if c.state.FPS.Update(fps) {
		fpsGauge.Set(float64(fps))
		c.showValue(fpsRow, fps)
	}
}

func (c *Controller) refreshChannels(ctx context.Context) {
	for i, ch := range c.cfg.Channels {
		raw := c.read(ctx, ch.Input, c.state.rawChannels[i])
		c.state.rawChannels[i] = raw
		intensity := calibration.SampleToIntensity(raw, ch.PotLow, ch.PotHigh, c.cfg.MaxIntensity)
		if c.state.Intensities[i].Update(intensity) {
			intensityGauge.WithLabelValues(ch.Name).Set(float64(intensity))
			c.showValue(ch.Row, intensity)
		}
		if c.Proportional != nil && c.cfg.Digipot.Enabled {
			code := calibration.SampleToCode(raw, ch.PotLow, ch.PotHigh, c.cfg.Digipot.CodeMin, c.cfg.Digipot.CodeMax)
			if c.state.Codes[i].Update(code) {
				if err := c.Proportional.SetProportional(c.ids[i], code); err != nil {
					// Force a retry on the next refresh
					c.state.Codes[i] = calibration.NewTracker()
					c.Log.Warn().Err(err).Str("channel", ch.Name).Msg("Failed to write digipot code")
				}
			}
		}
	}
}

// read samples the given input, returning previous when the read fails.
func (c *Controller) read(ctx context.Context, input, previous int) int {
	raw, err := c.Sampler.ReadRaw(ctx, input)
	if err != nil {
		samplerErrorsTotal.WithLabelValues(strconv.Itoa(input)).Inc()
		if msg := err.Error(); c.state.readErrors[input] != msg {
			c.state.readErrors[input] = msg
			c.Log.Warn().Err(err).Int("input", input).Msg("Failed to read input")
		}
		return previous
	}
	delete(c.state.readErrors, input)
	return raw
}
