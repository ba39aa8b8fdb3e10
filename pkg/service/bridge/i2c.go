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
	"runtime"
	"strconv"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
)

// I2CBus serializes access to devices on a single I2C bus.
type I2CBus interface {
	// Execute an operation on the device with given address.
	Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error
	// DetectSlaveAddresses probes the bus to detect available addresses.
	DetectSlaveAddresses() []byte
	// Close the bus and all devices on it
	Close() error
}

// I2CDevice communicates with a device on the I2C Bus that has a specific address.
type I2CDevice interface {
	// Read a block of data directly from the device (/dev/...)
	ReadDevice(data []byte) error
	// Write a block of data directly to the device (/dev/...)
	WriteDevice(data []byte) error
}

type i2cBus struct {
	location string
	devices  map[uint8]*i2cDevice
	queue    chan func()
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewI2CBus returns accessors the the I2C bus at the given location.
// All device access happens on a single OS thread.
func NewI2CBus(location string) (I2CBus, error) {
	ctx, cancel := context.WithCancel(context.Background())
	b := &i2cBus{
		location: location,
		devices:  make(map[uint8]*i2cDevice),
		queue:    make(chan func()),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go b.queueProcessor(ctx)
	return b, nil
}

// Execute an operation on the bus.
func (b *i2cBus) Execute(ctx context.Context, address uint8, op func(context.Context, I2CDevice) error) error {
	result := make(chan error, 1)
	if err := b.enqueue(ctx, func() {
		result <- b.execute(ctx, address, op)
	}); err != nil {
		return err
	}
	select {
	case err := <-result:
		return err
	case <-b.done:
		return errors.New("i2c bus closed")
	}
}

// Put a request on the queue.
func (b *i2cBus) enqueue(ctx context.Context, req func()) error {
	select {
	case b.queue <- req:
		return nil
	case <-b.done:
		return errors.New("i2c bus closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Process bus requests from the queue until the given context is canceled.
func (b *i2cBus) queueProcessor(ctx context.Context) {
	defer close(b.done)

	// Ensure we're always using the same OS thread
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case req := <-b.queue:
			req()
		case <-ctx.Done():
			return
		}
	}
}

// Execute an operation on the bus, retrying once with freshly opened devices.
func (b *i2cBus) execute(ctx context.Context, address uint8, op func(context.Context, I2CDevice) error) error {
	i2cExecuteCounters.WithLabelValues(strconv.Itoa(int(address))).Inc()

	var err error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			i2cRetriesTotal.Inc()
		}
		var dev *i2cDevice
		dev, err = b.openDevice(address)
		if err != nil {
			break
		}

		if err = op(ctx, dev); err == nil {
			return nil
		}

		// Device call failed, close all devices
		b.closeDevices()
	}
	i2cExecuteErrorCounters.WithLabelValues(strconv.Itoa(int(address))).Inc()
	return errors.Wrapf(err, "i2c operation on 0x%02x failed", address)
}

// Open a connection to a device at the given address.
func (b *i2cBus) openDevice(address uint8) (*i2cDevice, error) {
	if d, found := b.devices[address]; found {
		return d, nil
	}
	d, err := newI2CDevice(b.location, address)
	if err != nil {
		return nil, err
	}
	b.devices[address] = d
	return d, nil
}

// closeDevices closes all open devices.
func (b *i2cBus) closeDevices() error {
	var ae aerr.AggregateError
	for addr, d := range b.devices {
		if err := d.closeFile(); err != nil {
			ae.Add(err)
		}
		delete(b.devices, addr)
	}
	return ae.AsError()
}

// DetectSlaveAddresses probes the bus to detect available addresses.
func (b *i2cBus) DetectSlaveAddresses() []byte {
	result := make(chan []byte, 1)
	if err := b.enqueue(context.Background(), func() {
		var found []byte
		for addr := uint8(0x03); addr < 0x78; addr++ {
			if d, err := newI2CDevice(b.location, addr); err == nil {
				if err := d.DetectDevice(); err == nil {
					found = append(found, addr)
				}
				d.closeFile()
			}
		}
		result <- found
	}); err != nil {
		return nil
	}
	return <-result
}

// Close the bus and all devices on it
func (b *i2cBus) Close() error {
	result := make(chan error, 1)
	if err := b.enqueue(context.Background(), func() {
		result <- b.closeDevices()
	}); err != nil {
		// Already closed
		return nil
	}
	err := <-result
	b.cancel()
	<-b.done
	return err
}
