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
	"sync"

	"github.com/ecc1/gpio"
	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

type piBridge struct {
	mutex       sync.Mutex
	i2cLocation string
	bus         I2CBus
	hostReady   bool
	spiPorts    []spi.PortCloser
}

// NewRaspberryPiBridge implements the bridge for Raspberry PI's.
// The I2C bus is opened lazily at the given location.
func NewRaspberryPiBridge(i2cLocation string) (API, error) {
	if i2cLocation == "" {
		return nil, errors.New("I2C bus location is empty")
	}
	return &piBridge{
		i2cLocation: i2cLocation,
	}, nil
}

// Input initializes a GPIO input pin with the given pin number.
func (p *piBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	pin, err := gpio.Input(pinNumber, activeLow)
	if err != nil {
		return nil, errors.Wrapf(err, "Input[%d] failed", pinNumber)
	}
	return pin, nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *piBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	pin, err := gpio.Output(pinNumber, activeLow, initialValue)
	if err != nil {
		return nil, errors.Wrapf(err, "Output[%d] failed", pinNumber)
	}
	return pin, nil
}

// Open the I2C bus
func (p *piBridge) I2CBus() (I2CBus, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.bus == nil {
		bus, err := NewI2CBus(p.i2cLocation)
		if err != nil {
			return nil, errors.Wrap(err, "NewI2CBus failed")
		}
		p.bus = bus
	}
	return p.bus, nil
}

// SPI opens a connection to the SPI port with given name (empty for the
// first available port) in mode 0 with 8 bits per word.
func (p *piBridge) SPI(port string, speedHz int) (SPIConn, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.hostReady {
		if _, err := host.Init(); err != nil {
			return nil, errors.Wrap(err, "host.Init failed")
		}
		p.hostReady = true
	}
	pc, err := spireg.Open(port)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open SPI port '%s'", port)
	}
	conn, err := pc.Connect(physic.Frequency(speedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		pc.Close()
		return nil, errors.Wrapf(err, "failed to connect to SPI port '%s'", port)
	}
	p.spiPorts = append(p.spiPorts, pc)
	return &spiConn{conn: conn, port: port}, nil
}

func (p *piBridge) Close() error {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	var ae aerr.AggregateError
	if p.bus != nil {
		bus := p.bus
		p.bus = nil
		if err := bus.Close(); err != nil {
			ae.Add(errors.Wrap(err, "failed to close I2C bus"))
		}
	}
	for _, pc := range p.spiPorts {
		if err := pc.Close(); err != nil {
			ae.Add(errors.Wrap(err, "failed to close SPI port"))
		}
	}
	p.spiPorts = nil
	return ae.AsError()
}
