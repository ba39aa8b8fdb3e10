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
	"time"

	"github.com/pkg/errors"

	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

// ADS1115 samples potentiometer wipers with an ADS1115 ADC.
// Samples are scaled to the 10-bit range of the potentiometer inputs
// relative to the potentiometer reference voltage.
type ADS1115 struct {
	mutex               sync.Mutex
	bus                 bridge.I2CBus
	address             byte
	referenceMillivolts int
	pollInterval        time.Duration
}

const (
	// Registry addresses
	ads1115RegConversion = 0x00
	ads1115RegConfig     = 0x01
)

const (
	// Config mode flags
	ads1115ConfigOSMask    = 0x8000 // OS Mask
	ads1115ConfigOSSingle  = 0x8000 // Write: Set to start a single-conversion
	ads1115ConfigOSNotBusy = 0x8000 // Read: Bit = 1 when device is not performing a conversion

	ads1115ConfigMuxSingle0 = 0x4000 // Single-ended AIN0
	ads1115ConfigMuxSingle1 = 0x5000 // Single-ended AIN1
	ads1115ConfigMuxSingle2 = 0x6000 // Single-ended AIN2
	ads1115ConfigMuxSingle3 = 0x7000 // Single-ended AIN3

	ads1115ConfigPGA4096mV = 0x0200 // +/-4.096V range = Gain 1

	ads1115ConfigModeSingle = 0x0100 // Power-down single-shot mode (default)
	ads1115Rate860SPS       = 0x00E0 // 860 samples per second

	ads1115ConfigCompQueueNone = 0x0003 // Disable the comparator

	// Full scale of the selected PGA in millivolts
	ads1115FullScaleMillivolts = 4096
	// Largest positive conversion result
	ads1115MaxConversion = 0x7FFF
	// Largest sample reported to the controller
	maxSample = 1023
	// Maximum number of status polls before giving up on a conversion
	ads1115MaxPolls = 50
)

var (
	ads1115MuxByInput = []uint16{
		ads1115ConfigMuxSingle0,
		ads1115ConfigMuxSingle1,
		ads1115ConfigMuxSingle2,
		ads1115ConfigMuxSingle3,
	}
)

// NewADS1115 creates a sampler for an ADS1115 at the given address.
func NewADS1115(bus bridge.I2CBus, address int, referenceMillivolts int) *ADS1115 {
	return &ADS1115{
		bus:                 bus,
		address:             byte(address),
		referenceMillivolts: referenceMillivolts,
		pollInterval:        time.Millisecond / 2,
	}
}

// Configure is called once to put the device in the desired state.
func (d *ADS1115) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.writeConfig(ctx, createConfigBits(1)); err != nil {
		return errors.Wrap(err, "failed to configure ADS1115")
	}
	return nil
}

// Close brings the device back to a safe state.
func (d *ADS1115) Close(ctx context.Context) error {
	return d.Configure(ctx)
}

// ReadRaw samples the given input (1...4) and returns a value in [0, 1023].
func (d *ADS1115) ReadRaw(ctx context.Context, input int) (int, error) {
	if input < 1 || input > len(ads1115MuxByInput) {
		return 0, errors.Errorf("invalid ADS1115 input %d", input)
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()

	// Trigger a conversion
	if err := d.writeConfig(ctx, createConfigBits(input)|ads1115ConfigOSSingle); err != nil {
		return 0, err
	}

	// Wait until conversion ready
	for polls := 0; ; polls++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		status, err := d.readWordReg(ctx, ads1115RegConfig)
		if err != nil {
			return 0, err
		}
		if status&ads1115ConfigOSMask == ads1115ConfigOSNotBusy {
			break
		}
		if polls >= ads1115MaxPolls {
			return 0, errors.Errorf("ADS1115 conversion on input %d did not complete", input)
		}
		time.Sleep(d.pollInterval)
	}

	result, err := d.readWordReg(ctx, ads1115RegConversion)
	if err != nil {
		return 0, err
	}
	return scaleConversion(int16(result), d.referenceMillivolts), nil
}

// scaleConversion maps a conversion result onto [0, 1023], where 1023
// corresponds to the given reference voltage.
func scaleConversion(result int16, referenceMillivolts int) int {
	if result <= 0 || referenceMillivolts <= 0 {
		return 0
	}
	millivolts := int(result) * ads1115FullScaleMillivolts / ads1115MaxConversion
	return min(millivolts*maxSample/referenceMillivolts, maxSample)
}

// write the config registry
func (d *ADS1115) writeConfig(ctx context.Context, configBits uint16) error {
	return d.writeWordReg(ctx, ads1115RegConfig, configBits)
}

// read a 16-bit register
func (d *ADS1115) readWordReg(ctx context.Context, reg uint8) (uint16, error) {
	var result uint16
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		var buf [3]uint8
		buf[0] = reg
		if err := dev.WriteDevice(buf[:1]); err != nil {
			return errors.Wrap(err, "failed to write registry")
		}
		if err := dev.ReadDevice(buf[1:]); err != nil {
			return errors.Wrap(err, "failed to read word")
		}
		// ADS1115 transfers MSB first
		result = (uint16(buf[1]) << 8) | uint16(buf[2])
		return nil
	}); err != nil {
		return 0, err
	}
	return result, nil
}

// write a 16-bit register value
func (d *ADS1115) writeWordReg(ctx context.Context, reg uint8, value uint16) error {
	buf := [3]uint8{reg, uint8(value >> 8), uint8(value)}
	return d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		return dev.WriteDevice(buf[:])
	})
}

// createConfigBits creates bits for the Config registry for a single shot
// on input 1..4.
// Note that the start for a single conversion bit is not included.
func createConfigBits(input int) uint16 {
	return ads1115ConfigCompQueueNone |
		ads1115Rate860SPS |
		ads1115ConfigModeSingle |
		ads1115ConfigPGA4096mV |
		ads1115MuxByInput[input-1]
}
