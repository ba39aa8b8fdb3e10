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

// Package simulator emulates the illuminator hardware so the control loop
// can run on a machine without LEDs, camera, potentiometers or display.
package simulator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/samber/lo"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

const (
	// MaxRaw is the full scale value of a (10 bit) potentiometer sample.
	MaxRaw = 1023
)

// Hardware is the virtual device shared between the control loop and
// the front panel. Potentiometers and the display are kept here, the
// GPIO lines live on the virtual bridge.
type Hardware struct {
	cfg    model.Config
	bridge *bridge.VirtualBridge

	mutex   sync.Mutex
	raw     map[int]int
	display [][]byte
	startOn bool

	pulses      atomic.Uint64
	unsubscribe context.CancelFunc
}

// NewHardware creates virtual hardware for the given configuration.
// All potentiometers start at mid scale.
func NewHardware(cfg model.Config, vb *bridge.VirtualBridge) *Hardware {
	rows, cols := max(cfg.Display.Rows, 4), max(cfg.Display.Columns, 20)
	hw := &Hardware{
		cfg:     cfg,
		bridge:  vb,
		raw:     make(map[int]int),
		display: make([][]byte, rows),
	}
	for i := range hw.display {
		hw.display[i] = []byte(strings.Repeat(" ", cols))
	}
	for _, input := range hw.Inputs() {
		hw.raw[input] = MaxRaw / 2
	}
	camera, active := cfg.Camera.Pin, cfg.Camera.Polarity.ActiveLevel()
	hw.unsubscribe = vb.Subscribe(func(e bridge.PinEvent) {
		if e.Pin == camera && e.Level == active {
			hw.pulses.Add(1)
		}
	})
	return hw
}

// Close stops listening for pin changes.
func (hw *Hardware) Close() {
	hw.unsubscribe()
}

// Inputs returns the potentiometer inputs in display order:
// the channels followed by the frame rate.
func (hw *Hardware) Inputs() []int {
	inputs := lo.Map(hw.cfg.Channels, func(ch model.ChannelConfig, _ int) int { return ch.Input })
	return append(inputs, hw.cfg.FPS.Input)
}

// InputName returns a short name of the given input.
func (hw *Hardware) InputName(input int) string {
	if ch, found := lo.Find(hw.cfg.Channels, func(ch model.ChannelConfig) bool { return ch.Input == input }); found {
		return ch.Name
	}
	if input == hw.cfg.FPS.Input {
		return "FPS"
	}
	return fmt.Sprintf("IN%d", input)
}

// ReadRaw returns the current value of the potentiometer on the given input.
func (hw *Hardware) ReadRaw(ctx context.Context, input int) (int, error) {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	v, found := hw.raw[input]
	if !found {
		return 0, fmt.Errorf("input %d not connected", input)
	}
	return v, nil
}

// Raw returns the current value of the given input, 0 if unknown.
func (hw *Hardware) Raw(input int) int {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	return hw.raw[input]
}

// SetRaw turns the potentiometer on the given input to v, clamped to [0, MaxRaw].
func (hw *Hardware) SetRaw(input, v int) {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	hw.raw[input] = lo.Clamp(v, 0, MaxRaw)
}

// AdjustRaw turns the potentiometer on the given input by delta.
func (hw *Hardware) AdjustRaw(input, delta int) {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	hw.raw[input] = lo.Clamp(hw.raw[input]+delta, 0, MaxRaw)
}

// Show writes text on the virtual display, truncated at the right edge.
func (hw *Hardware) Show(row, col int, text string) error {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	if row < 0 || row >= len(hw.display) || col < 0 || col >= len(hw.display[row]) {
		return fmt.Errorf("position (%d,%d) outside display", row, col)
	}
	copy(hw.display[row][col:], text)
	return nil
}

// DisplayLines returns the content of the virtual display.
func (hw *Hardware) DisplayLines() []string {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	return lo.Map(hw.display, func(line []byte, _ int) string { return string(line) })
}

// LEDs returns the logical state of every channel LED.
func (hw *Hardware) LEDs() []bool {
	return lo.Map(hw.cfg.Channels, func(ch model.ChannelConfig, _ int) bool {
		return hw.bridge.Level(ch.Pin) != ch.Invert
	})
}

// CameraActive returns true while the camera trigger pulse is asserted.
func (hw *Hardware) CameraActive() bool {
	return hw.bridge.Level(hw.cfg.Camera.Pin) == hw.cfg.Camera.Polarity.ActiveLevel()
}

// Pulses returns the number of camera trigger pulses seen so far.
func (hw *Hardware) Pulses() uint64 {
	return hw.pulses.Load()
}

// StartOn returns the position of the start switch (level semantics).
func (hw *Hardware) StartOn() bool {
	hw.mutex.Lock()
	defer hw.mutex.Unlock()
	return hw.startOn
}

// PressMode presses and later releases the mode button.
func (hw *Hardware) PressMode() {
	hw.press(hw.cfg.Buttons.Mode)
}

// ToggleStart operates the start control. A start switch is flipped,
// a start button is pressed and released.
func (hw *Hardware) ToggleStart() {
	if hw.cfg.Buttons.StartAs == model.StartEdge {
		hw.press(hw.cfg.Buttons.Start)
		return
	}
	hw.mutex.Lock()
	hw.startOn = !hw.startOn
	on := hw.startOn
	hw.mutex.Unlock()
	hw.setButton(hw.cfg.Buttons.Start, on)
}

// SetStart puts the start switch in the given position.
func (hw *Hardware) SetStart(on bool) {
	hw.mutex.Lock()
	hw.startOn = on
	hw.mutex.Unlock()
	hw.setButton(hw.cfg.Buttons.Start, on)
}

// press holds a button long enough to be seen by a loop that only polls
// between cycles at the lowest frame rate.
func (hw *Hardware) press(b model.ButtonConfig) {
	hw.setButton(b, true)
	time.AfterFunc(hw.holdTime(), func() {
		hw.setButton(b, false)
	})
}

func (hw *Hardware) holdTime() time.Duration {
	period := time.Second / time.Duration(max(hw.cfg.Timing.MinFPS, 1))
	return 2*period + 3*hw.cfg.Buttons.Debounce.D()
}

func (hw *Hardware) setButton(b model.ButtonConfig, pressed bool) {
	hw.bridge.SetLevel(b.Pin, pressed != b.ActiveLow)
}
