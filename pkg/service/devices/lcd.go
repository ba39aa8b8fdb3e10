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

	"github.com/pkg/errors"
	"tinygo.org/x/drivers/hd44780i2c"

	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

// i2cAdapter exposes a bridge I2C bus as a tinygo driver bus.
// Errors are kept since the display driver does not return them.
type i2cAdapter struct {
	ctx     context.Context
	bus     bridge.I2CBus
	lastErr error
}

// Tx writes w and then reads into r on the device with given address.
func (a *i2cAdapter) Tx(addr uint16, w, r []byte) error {
	err := a.bus.Execute(a.ctx, uint8(addr), func(ctx context.Context, dev bridge.I2CDevice) error {
		if len(w) > 0 {
			if err := dev.WriteDevice(w); err != nil {
				return err
			}
		}
		if len(r) > 0 {
			if err := dev.ReadDevice(r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		a.lastErr = err
	}
	return err
}

// takeErr returns and clears the last error.
func (a *i2cAdapter) takeErr() error {
	err := a.lastErr
	a.lastErr = nil
	return err
}

// LCD is a character display (HD44780 with PCF8574 backpack).
type LCD struct {
	mutex   sync.Mutex
	adapter *i2cAdapter
	dev     hd44780i2c.Device
	columns int
	rows    int
}

// NewLCD creates a display at the given address of the bus.
func NewLCD(bus bridge.I2CBus, address, columns, rows int) *LCD {
	adapter := &i2cAdapter{ctx: context.Background(), bus: bus}
	return &LCD{
		adapter: adapter,
		dev:     hd44780i2c.New(adapter, uint8(address)),
		columns: columns,
		rows:    rows,
	}
}

// Configure is called once to put the device in the desired state.
func (d *LCD) Configure(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if err := d.dev.Configure(hd44780i2c.Config{
		Width:  uint8(d.columns),
		Height: uint8(d.rows),
	}); err != nil {
		return errors.Wrap(err, "failed to configure display")
	}
	d.dev.ClearDisplay()
	d.dev.BacklightOn(true)
	return errors.Wrap(d.adapter.takeErr(), "failed to initialize display")
}

// Close clears the display and turns the backlight off.
func (d *LCD) Close(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.dev.ClearDisplay()
	d.dev.BacklightOn(false)
	return errors.Wrap(d.adapter.takeErr(), "failed to clear display")
}

// Show prints the given text at the given position.
// Text beyond the end of the row is cut off.
func (d *LCD) Show(row, col int, text string) error {
	if row < 0 || row >= d.rows || col < 0 || col >= d.columns {
		return errors.Errorf("position %d,%d outside display", row, col)
	}
	if col+len(text) > d.columns {
		text = text[:d.columns-col]
	}
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.dev.SetCursor(uint8(col), uint8(row))
	d.dev.Print([]byte(text))
	if err := d.adapter.takeErr(); err != nil {
		displayWriteErrorsTotal.Inc()
		return errors.Wrap(err, "failed to write display")
	}
	return nil
}
