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
	"testing"

	"github.com/rs/zerolog"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

func TestServiceWithoutPeripherals(t *testing.T) {
	cfg := model.DefaultConfig()
	vb := bridge.NewVirtualBridge()
	s, err := NewService(zerolog.Nop(), cfg, vb, false)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if s.Sampler != nil || s.Display != nil || s.Digipot != nil {
		t.Error("Expected no peripherals")
	}
	ctx := context.Background()
	if err := s.Configure(ctx); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	// Active-low camera idles high
	if !vb.Level(cfg.Camera.Pin) {
		t.Error("Expected camera line to idle high")
	}
	ch := cfg.Channels[0]
	if err := s.Outputs.SetLevel(ch.OutputID(), true); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if vb.Level(ch.Pin) == ch.Invert {
		t.Error("Expected LED line to be on")
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if vb.Level(ch.Pin) != ch.Invert {
		t.Error("Expected LED line to be off after close")
	}
}

func TestServiceWithPeripheralsNeedsSPI(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Digipot.Enabled = true
	if _, err := NewService(zerolog.Nop(), cfg, bridge.NewVirtualBridge(), true); err == nil {
		t.Error("Expected error without SPI port")
	}
	cfg.Digipot.Enabled = false
	s, err := NewService(zerolog.Nop(), cfg, bridge.NewVirtualBridge(), true)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	if s.Sampler == nil || s.Display == nil {
		t.Error("Expected ADC and display")
	}
	if err := s.Configure(context.Background()); err == nil {
		t.Error("Expected configure to fail without I2C devices")
	}
}
