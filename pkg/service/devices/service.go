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

// Package devices implements the peripherals of the illuminator on top of
// the hardware bridge.
package devices

import (
	"context"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

// Device is implemented by every peripheral managed by the Service.
type Device interface {
	// Configure initializes the peripheral once at startup.
	Configure(ctx context.Context) error
	// Close returns the peripheral to its power-on state.
	Close(ctx context.Context) error
}

// Service holds all devices of the illuminator.
type Service struct {
	log     zerolog.Logger
	devices []namedDevice

	// Outputs drives camera and LED lines
	Outputs *GPIOOutputs
	// Buttons reads the operator controls
	Buttons *GPIOButtons
	// Sampler reads potentiometers (nil without peripherals)
	Sampler *ADS1115
	// Display shows readings (nil when disabled or without peripherals)
	Display *LCD
	// Digipot sets LED currents (nil when disabled or without peripherals)
	Digipot *AD5204
}

type namedDevice struct {
	name string
	dev  Device
}

// NewService creates the devices for the given configuration.
// When withPeripherals is false, only GPIO based devices are created,
// so the ADC and display can be provided by other means.
func NewService(log zerolog.Logger, cfg model.Config, api bridge.API, withPeripherals bool) (*Service, error) {
	s := &Service{
		log: log.With().Str("component", "device-service").Logger(),
	}

	outputs := []OutputPinConfig{{
		ID:      model.CameraOutputID,
		Pin:     cfg.Camera.Pin,
		Initial: !cfg.Camera.Polarity.ActiveLevel(),
	}}
	for _, ch := range cfg.Channels {
		outputs = append(outputs, OutputPinConfig{
			ID:     ch.OutputID(),
			Pin:    ch.Pin,
			Invert: ch.Invert,
		})
	}
	s.Outputs = NewGPIOOutputs(api, outputs)
	s.add("outputs", s.Outputs)

	s.Buttons = NewGPIOButtons(s.log, api,
		ButtonPinConfig{Pin: cfg.Buttons.Mode.Pin, ActiveLow: cfg.Buttons.Mode.ActiveLow},
		ButtonPinConfig{Pin: cfg.Buttons.Start.Pin, ActiveLow: cfg.Buttons.Start.ActiveLow},
		cfg.Buttons.Debounce.D())
	s.add("buttons", s.Buttons)

	if withPeripherals {
		bus, err := api.I2CBus()
		if err != nil {
			return nil, errors.Wrap(err, "failed to open I2C bus")
		}
		s.Sampler = NewADS1115(bus, cfg.ADC.Address, cfg.ADC.ReferenceMillivolts)
		s.add("adc", s.Sampler)
		if cfg.Display.Enabled {
			s.Display = NewLCD(bus, cfg.Display.Address, cfg.Display.Columns, cfg.Display.Rows)
			s.add("display", s.Display)
		}
		if cfg.Digipot.Enabled {
			conn, err := api.SPI(cfg.Digipot.SPIPort, cfg.Digipot.SpeedHz)
			if err != nil {
				return nil, errors.Wrap(err, "failed to open digipot SPI port")
			}
			addresses := make(map[model.OutputID]int)
			for _, ch := range cfg.Channels {
				addresses[ch.OutputID()] = ch.DigipotAddress
			}
			s.Digipot, err = NewAD5204(conn, addresses, cfg.Digipot.CodeMin)
			if err != nil {
				return nil, err
			}
			s.add("digipot", s.Digipot)
		}
	}
	devicesCreatedTotal.Set(float64(len(s.devices)))
	return s, nil
}

func (s *Service) add(name string, dev Device) {
	s.devices = append(s.devices, namedDevice{name: name, dev: dev})
}

// Configure is called once to put all devices in the desired state.
func (s *Service) Configure(ctx context.Context) error {
	log := s.log
	var ae aerr.AggregateError
	configured := 0
	for _, d := range s.devices {
		log := log.With().Str("device", d.name).Logger()
		log.Debug().Msg("configuring device...")
		if err := d.dev.Configure(ctx); err != nil {
			log.Error().Err(err).Msg("Failed to configure device")
			ae.Add(err)
		} else {
			configured++
			log.Debug().Msg("configured device")
		}
	}
	log.Info().Int("count", configured).Msg("Configured devices")
	devicesConfiguredTotal.Set(float64(configured))
	return ae.AsError()
}

// Close brings all devices back to a safe state, in reverse order.
func (s *Service) Close(ctx context.Context) error {
	var ae aerr.AggregateError
	for i := len(s.devices) - 1; i >= 0; i-- {
		if err := s.devices[i].dev.Close(ctx); err != nil {
			ae.Add(err)
		}
	}
	return ae.AsError()
}
