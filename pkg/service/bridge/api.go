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

// API of the bridge, the hardware used to connect the controller to the
// LEDs, the camera trigger, the operator controls, the ADC and the display.
type API interface {
	// Open the I2C bus
	I2CBus() (I2CBus, error)
	// Open a connection to the SPI port with given name at the given speed.
	SPI(port string, speedHz int) (SPIConn, error)

	// Access to local GPIO

	// Input initializes a GPIO input pin with the given pin number.
	Input(pinNumber int, activeLow bool) (InputPin, error)
	// Output initializes a GPIO output pin with the given pin number
	// and initial logical value.
	Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error)

	Close() error
}

// InputPin is the interface satisfied by GPIO input pins.
type InputPin interface {
	Read() (bool, error)
}

// OutputPin is the interface satisfied by GPIO output pins.
type OutputPin interface {
	Write(bool) error
}

// SPIConn is a connection to a device on an SPI port.
type SPIConn interface {
	// Tx writes w and reads into r in a single full duplex transaction.
	Tx(w, r []byte) error
}
