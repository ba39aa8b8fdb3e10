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
	"strconv"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

const (
	// Number of potentiometers in an AD5204
	ad5204Channels = 4
)

// AD5204 drives the rheostat-configured potentiometers of an AD5204
// that set the current of the LED drivers.
type AD5204 struct {
	conn      bridge.SPIConn
	addresses map[model.OutputID]byte
	resetCode int
}

// NewAD5204 creates a digipot driver with the given potentiometer address
// per output. The reset code is written on configure and close.
func NewAD5204(conn bridge.SPIConn, addresses map[model.OutputID]int, resetCode int) (*AD5204, error) {
	d := &AD5204{
		conn:      conn,
		addresses: make(map[model.OutputID]byte),
		resetCode: resetCode,
	}
	for id, addr := range addresses {
		if addr < 0 || addr >= ad5204Channels {
			return nil, errors.Errorf("invalid AD5204 address %d for %s", addr, id)
		}
		d.addresses[id] = byte(addr)
	}
	return d, nil
}

// Configure is called once to put the device in the desired state.
func (d *AD5204) Configure(ctx context.Context) error {
	return d.reset()
}

// Close brings the device back to a safe state.
func (d *AD5204) Close(ctx context.Context) error {
	return d.reset()
}

// SetProportional writes the wiper position of the potentiometer of the
// given output.
func (d *AD5204) SetProportional(id model.OutputID, value int) error {
	addr, found := d.addresses[id]
	if !found {
		return errors.Errorf("no AD5204 potentiometer for %s", id)
	}
	return d.write(addr, value)
}

func (d *AD5204) reset() error {
	var ae aerr.AggregateError
	for _, addr := range d.addresses {
		if err := d.write(addr, d.resetCode); err != nil {
			ae.Add(err)
		}
	}
	return ae.AsError()
}

// write sends the address followed by the wiper position.
func (d *AD5204) write(addr byte, value int) error {
	if value < 0 || value > 255 {
		return errors.Errorf("invalid AD5204 value %d", value)
	}
	if err := d.conn.Tx([]byte{addr, byte(value)}, nil); err != nil {
		return errors.Wrapf(err, "failed to write AD5204 potentiometer %d", addr)
	}
	digipotWritesTotal.WithLabelValues(strconv.Itoa(int(addr))).Inc()
	return nil
}
