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
	"fmt"
	"sync"

	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

// fakeADS1115 emulates the registers of an ADS1115.
type fakeADS1115 struct {
	mutex       sync.Mutex
	pointer     uint8
	config      uint16
	conversions [4]uint16
	busyPolls   int
	polls       int
}

func (f *fakeADS1115) WriteDevice(data []byte) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.pointer = data[0]
	if len(data) == 3 {
		f.config = uint16(data[1])<<8 | uint16(data[2])
		f.polls = 0
	}
	return nil
}

func (f *fakeADS1115) ReadDevice(data []byte) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	var value uint16
	switch f.pointer {
	case ads1115RegConfig:
		value = f.config &^ ads1115ConfigOSMask
		if f.polls >= f.busyPolls {
			value |= ads1115ConfigOSNotBusy
		}
		f.polls++
	case ads1115RegConversion:
		mux := (f.config >> 12) & 0x3
		value = f.conversions[mux]
	}
	data[0] = uint8(value >> 8)
	data[1] = uint8(value)
	return nil
}

// fakeBus routes operations to fake devices by address.
type fakeBus struct {
	devices map[uint8]bridge.I2CDevice
	fail    error
	calls   int
}

func (b *fakeBus) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev bridge.I2CDevice) error) error {
	b.calls++
	if b.fail != nil {
		return b.fail
	}
	dev, found := b.devices[address]
	if !found {
		return fmt.Errorf("device 0x%02x not found", address)
	}
	return op(ctx, dev)
}

func (b *fakeBus) DetectSlaveAddresses() []byte { return nil }

func (b *fakeBus) Close() error { return nil }

// recordingDevice records all writes.
type recordingDevice struct {
	writes [][]byte
}

func (d *recordingDevice) WriteDevice(data []byte) error {
	d.writes = append(d.writes, append([]byte(nil), data...))
	return nil
}

func (d *recordingDevice) ReadDevice(data []byte) error {
	return nil
}

// fakeSPI records all transactions.
type fakeSPI struct {
	txs  [][]byte
	fail error
}

func (c *fakeSPI) Tx(w, r []byte) error {
	if c.fail != nil {
		return c.fail
	}
	c.txs = append(c.txs, append([]byte(nil), w...))
	return nil
}
