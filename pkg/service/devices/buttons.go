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

package devices

import (
	"context"
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

// ButtonPinConfig describes a single button input.
type ButtonPinConfig struct {
	Pin       int
	ActiveLow bool
}

// debouncedButton reports a pressed state once it has been stable for
// the debounce period.
type debouncedButton struct {
	name      string
	pin       bridge.InputPin
	stable    bool
	candidate bool
	since     time.Time
	pressed   bool
}

// update samples the pin and returns the debounced state.
func (b *debouncedButton) update(log zerolog.Logger, now time.Time, debounce time.Duration) bool {
	if b.pin == nil {
		return b.stable
	}
	v, err := b.pin.Read()
	if err != nil {
		buttonReadErrorsTotal.WithLabelValues(b.name).Inc()
		log.Debug().Err(err).Str("button", b.name).Msg("Failed to read button")
		return b.stable
	}
	if v != b.candidate {
		b.candidate = v
		b.since = now
	}
	if b.candidate != b.stable && now.Sub(b.since) >= debounce {
		b.stable = b.candidate
		if b.stable {
			b.pressed = true
		}
	}
	return b.stable
}

// uniquePress returns true once for every debounced press.
func (b *debouncedButton) uniquePress(log zerolog.Logger, now time.Time, debounce time.Duration) bool {
	b.update(log, now, debounce)
	if b.pressed {
		b.pressed = false
		return true
	}
	return false
}

// GPIOButtons reads the mode button and start control from GPIO inputs.
type GPIOButtons struct {
	log      zerolog.Logger
	api      bridge.API
	mode     ButtonPinConfig
	start    ButtonPinConfig
	debounce time.Duration
	now      func() time.Time

	modeButton  debouncedButton
	startButton debouncedButton
}

// NewGPIOButtons creates button inputs.
func NewGPIOButtons(log zerolog.Logger, api bridge.API, mode, start ButtonPinConfig, debounce time.Duration) *GPIOButtons {
	return &GPIOButtons{
		log:         log,
		api:         api,
		mode:        mode,
		start:       start,
		debounce:    debounce,
		now:         time.Now,
		modeButton:  debouncedButton{name: "mode"},
		startButton: debouncedButton{name: "start"},
	}
}

// Configure is called once to put the device in the desired state.
func (d *GPIOButtons) Configure(ctx context.Context) error {
	var ae aerr.AggregateError
	if pin, err := d.api.Input(d.mode.Pin, d.mode.ActiveLow); err != nil {
		ae.Add(errors.Wrap(err, "failed to configure mode button"))
	} else {
		d.modeButton.pin = pin
	}
	if pin, err := d.api.Input(d.start.Pin, d.start.ActiveLow); err != nil {
		ae.Add(errors.Wrap(err, "failed to configure start button"))
	} else {
		d.startButton.pin = pin
	}
	return ae.AsError()
}

// Close brings the device back to a safe state.
func (d *GPIOButtons) Close(ctx context.Context) error {
	return nil
}

// ModeEdge returns true once per press of the mode button.
func (d *GPIOButtons) ModeEdge() bool {
	return d.modeButton.uniquePress(d.log, d.now(), d.debounce)
}

// StartLevel returns true while the start switch is on.
func (d *GPIOButtons) StartLevel() bool {
	return d.startButton.update(d.log, d.now(), d.debounce)
}

// StartEdge returns true once per press of the start button.
func (d *GPIOButtons) StartEdge() bool {
	return d.startButton.uniquePress(d.log, d.now(), d.debounce)
}
