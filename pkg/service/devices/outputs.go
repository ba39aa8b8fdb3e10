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
	"sync"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

// OutputPinConfig describes a single GPIO output line.
type OutputPinConfig struct {
	ID  model.OutputID
	Pin int
	// Invert the physical level
	Invert bool
	// Initial logical level
	Initial bool
}

// GPIOOutputs drives the camera trigger and LED lines with GPIO pins.
type GPIOOutputs struct {
	mutex   sync.Mutex
	api     bridge.API
	configs []OutputPinConfig
	pins    map[model.OutputID]bridge.OutputPin
}

// NewGPIOOutputs creates outputs for the given lines.
func NewGPIOOutputs(api bridge.API, configs []OutputPinConfig) *GPIOOutputs {
	return &GPIOOutputs{
		api:     api,
		configs: configs,
		pins:    make(map[model.OutputID]bridge.OutputPin),
	}
}

// Configure is called once to put the device in the desired state.
func (d *GPIOOutputs) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var ae aerr.AggregateError
	for _, c := range d.configs {
		pin, err := d.api.Output(c.Pin, c.Invert, c.Initial)
		if err != nil {
			ae.Add(errors.Wrapf(err, "failed to configure output %s", c.ID))
			continue
		}
		d.pins[c.ID] = pin
	}
	return ae.AsError()
}

// Close brings all lines back to their initial level.
func (d *GPIOOutputs) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	var ae aerr.AggregateError
	for _, c := range d.configs {
		if pin, found := d.pins[c.ID]; found {
			if err := pin.Write(c.Initial); err != nil {
				ae.Add(errors.Wrapf(err, "failed to reset output %s", c.ID))
			}
		}
	}
	return ae.AsError()
}

// SetLevel sets the logical level of the line with given ID.
func (d *GPIOOutputs) SetLevel(id model.OutputID, on bool) error {
	d.mutex.Lock()
	pin, found := d.pins[id]
	d.mutex.Unlock()

	if !found {
		return errors.Errorf("output %s not configured", id)
	}
	outputWritesTotal.WithLabelValues(string(id)).Inc()
	if err := pin.Write(on); err != nil {
		return errors.Wrapf(err, "failed to write output %s", id)
	}
	return nil
}
