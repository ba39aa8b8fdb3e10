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

package bridge

import (
	"context"
	"fmt"
	"sync"

	"github.com/mattn/go-pubsub"
)

// PinEvent is published by the virtual bridge for every change of the
// physical level of a pin.
type PinEvent struct {
	Pin   int
	Level bool
}

// VirtualBridge implements the bridge with in-memory GPIO pins.
// It has no I2C or SPI devices.
type VirtualBridge struct {
	mutex  sync.Mutex
	levels map[int]bool
	events *pubsub.PubSub
}

// NewVirtualBridge implements the bridge for running without hardware.
func NewVirtualBridge() *VirtualBridge {
	return &VirtualBridge{
		levels: make(map[int]bool),
		events: pubsub.New(),
	}
}

// Input initializes a GPIO input pin with the given pin number.
// An input that was never driven reads as inactive.
func (p *VirtualBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	if pinNumber < 0 {
		return nil, fmt.Errorf("invalid pin %d", pinNumber)
	}
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if _, found := p.levels[pinNumber]; !found {
		p.levels[pinNumber] = activeLow
	}
	return &virtualInputPin{bridge: p, pin: pinNumber, activeLow: activeLow}, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *VirtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	if pinNumber < 0 {
		return nil, fmt.Errorf("invalid pin %d", pinNumber)
	}
	pin := &virtualOutputPin{bridge: p, pin: pinNumber, activeLow: activeLow}
	pin.Write(initialValue)
	return pin, nil
}

// Level returns the physical level of the given pin.
func (p *VirtualBridge) Level(pinNumber int) bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.levels[pinNumber]
}

// SetLevel drives the physical level of the given pin from outside,
// for example to emulate a button press.
func (p *VirtualBridge) SetLevel(pinNumber int, level bool) {
	p.mutex.Lock()
	changed := p.levels[pinNumber] != level
	p.levels[pinNumber] = level
	p.mutex.Unlock()
	if changed {
		virtualPinChangesTotal.Inc()
		p.events.Pub(PinEvent{Pin: pinNumber, Level: level})
	}
}

// Subscribe registers a callback for pin changes.
// Callbacks are invoked asynchronously.
func (p *VirtualBridge) Subscribe(cb func(PinEvent)) context.CancelFunc {
	wcb := func(e PinEvent) {
		cb(e)
	}
	p.events.Sub(wcb)
	return func() {
		p.events.Leave(wcb)
	}
}

// Open the I2C bus
func (p *VirtualBridge) I2CBus() (I2CBus, error) {
	return p, nil
}

// SPI is not available on the virtual bridge.
func (p *VirtualBridge) SPI(port string, speedHz int) (SPIConn, error) {
	return nil, fmt.Errorf("SPI port '%s' not available", port)
}

func (p *VirtualBridge) Close() error {
	return nil
}

// Execute an option on the bus.
func (p *VirtualBridge) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error {
	return fmt.Errorf("device 0x%02x not found", address)
}

// DetectSlaveAddresses probes the bus to detect available addresses.
func (p *VirtualBridge) DetectSlaveAddresses() []byte {
	return nil
}

type virtualInputPin struct {
	bridge    *VirtualBridge
	pin       int
	activeLow bool
}

func (ip *virtualInputPin) Read() (bool, error) {
	return ip.bridge.Level(ip.pin) != ip.activeLow, nil
}

type virtualOutputPin struct {
	bridge    *VirtualBridge
	pin       int
	activeLow bool
}

func (op *virtualOutputPin) Write(value bool) error {
	op.bridge.SetLevel(op.pin, value != op.activeLow)
	return nil
}
