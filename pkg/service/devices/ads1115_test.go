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
	"errors"
	"testing"

	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

func TestScaleConversion(t *testing.T) {
	tests := []struct {
		result   int16
		ref      int
		expected int
	}{
		{0, 3300, 0},
		{-20, 3300, 0},
		{0x7FFF, 4096, 1023},
		{0x7FFF, 3300, 1023},
		{26400, 3300, 1023},
		{13200, 3300, 511},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := scaleConversion(tt.result, tt.ref); got != tt.expected {
			t.Errorf("scaleConversion(%d, %d) = %d, want %d", tt.result, tt.ref, got, tt.expected)
		}
	}
}

func TestADS1115ReadRaw(t *testing.T) {
	adc := &fakeADS1115{busyPolls: 2}
	adc.conversions = [4]uint16{0, 13200, 26400, 0x7FFF}
	bus := &fakeBus{devices: map[uint8]bridge.I2CDevice{0x48: adc}}
	d := NewADS1115(bus, 0x48, 3300)
	d.pollInterval = 0
	ctx := context.Background()
	if err := d.Configure(ctx); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	expected := []int{0, 511, 1023, 1023}
	for i, e := range expected {
		got, err := d.ReadRaw(ctx, i+1)
		if err != nil {
			t.Fatalf("ReadRaw(%d) failed: %v", i+1, err)
		}
		if got != e {
			t.Errorf("ReadRaw(%d) = %d, want %d", i+1, got, e)
		}
	}
}

func TestADS1115InvalidInput(t *testing.T) {
	d := NewADS1115(&fakeBus{}, 0x48, 3300)
	for _, input := range []int{0, 5, -1} {
		if _, err := d.ReadRaw(context.Background(), input); err == nil {
			t.Errorf("Expected error for input %d", input)
		}
	}
}

func TestADS1115ConversionTimeout(t *testing.T) {
	adc := &fakeADS1115{busyPolls: 1000}
	bus := &fakeBus{devices: map[uint8]bridge.I2CDevice{0x48: adc}}
	d := NewADS1115(bus, 0x48, 3300)
	d.pollInterval = 0
	if _, err := d.ReadRaw(context.Background(), 1); err == nil {
		t.Error("Expected timeout error")
	}
}

func TestADS1115BusError(t *testing.T) {
	bus := &fakeBus{fail: errors.New("bus down")}
	d := NewADS1115(bus, 0x48, 3300)
	if _, err := d.ReadRaw(context.Background(), 1); err == nil {
		t.Error("Expected bus error")
	}
}
