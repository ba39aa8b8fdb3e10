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
	"os"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const (
	// From /usr/include/linux/i2c-dev.h
	i2cSlave = 0x0703
)

type i2cDevice struct {
	address uint8
	mutex   sync.Mutex
	file    *os.File
}

// newI2CDevice opens the bus at the given location and selects the slave
// with given address.
func newI2CDevice(location string, address uint8) (*i2cDevice, error) {
	f, err := os.OpenFile(location, os.O_RDWR, os.ModeDevice)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open '%s'", location)
	}
	if err := unix.IoctlSetInt(int(f.Fd()), i2cSlave, int(address)); err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "setting address 0x%02x failed", address)
	}
	return &i2cDevice{
		address: address,
		file:    f,
	}, nil
}

func (d *i2cDevice) closeFile() error {
	return d.file.Close()
}

// DetectDevice tries to read a single byte from the device.
func (d *i2cDevice) DetectDevice() error {
	var buf [1]byte
	if err := d.ReadDevice(buf[:]); err != nil {
		return errors.Wrap(err, "detect failed")
	}
	return nil
}

// ReadDevice reads len(data) bytes from the device.
func (d *i2cDevice) ReadDevice(data []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	n, err := d.file.Read(data)
	if err != nil {
		return errors.Wrapf(err, "read[0x%02x] failed", d.address)
	}
	if n != len(data) {
		return errors.Errorf("expected to read %d bytes from 0x%02x, got %d", len(data), d.address, n)
	}
	return nil
}

// WriteDevice writes all of data to the device.
func (d *i2cDevice) WriteDevice(data []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	n, err := d.file.Write(data)
	if err != nil {
		return errors.Wrapf(err, "write[0x%02x] failed", d.address)
	}
	if n != len(data) {
		return errors.Errorf("expected to write %d bytes to 0x%02x, wrote %d", len(data), d.address, n)
	}
	return nil
}
