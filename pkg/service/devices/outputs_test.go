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

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

func TestGPIOOutputs(t *testing.T) {
	vb := bridge.NewVirtualBridge()
	d := NewGPIOOutputs(vb, []OutputPinConfig{
		{ID: model.CameraOutputID, Pin: 6, Initial: true},
		{ID: "LED410", Pin: 17},
		{ID: "LED470", Pin: 27, Invert: true},
	})
	ctx := context.Background()
	if err := d.Configure(ctx); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if !vb.Level(6) || vb.Level(17) || !vb.Level(27) {
		t.Errorf("Unexpected initial levels %v %v %v", vb.Level(6), vb.Level(17), vb.Level(27))
	}
	if err := d.SetLevel("LED410", true); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if err := d.SetLevel("LED470", true); err != nil {
		t.Fatalf("SetLevel failed: %v", err)
	}
	if !vb.Level(17) || vb.Level(27) {
		t.Errorf("Unexpected levels %v %v", vb.Level(17), vb.Level(27))
	}
	if err := d.SetLevel("unknown", true); err == nil {
		t.Error("Expected error for unknown output")
	}
	if err := d.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if !vb.Level(6) || vb.Level(17) || !vb.Level(27) {
		t.Error("Expected initial levels after close")
	}
}

func TestAD5204(t *testing.T) {
	conn := &fakeSPI{}
	d, err := NewAD5204(conn, map[model.OutputID]int{"LED410": 0, "LED470": 2, "LED560": 1}, 6)
	if err != nil {
		t.Fatalf("NewAD5204 failed: %v", err)
	}
	if err := d.Configure(context.Background()); err != nil {
		t.Fatalf("Configure failed: %v", err)
	}
	if len(conn.txs) != 3 {
		t.Errorf("Expected 3 reset writes, got %d", len(conn.txs))
	}
	conn.txs = nil
	if err := d.SetProportional("LED470", 90); err != nil {
		t.Fatalf("SetProportional failed: %v", err)
	}
	if len(conn.txs) != 1 || conn.txs[0][0] != 2 || conn.txs[0][1] != 90 {
		t.Errorf("Unexpected transaction %v", conn.txs)
	}
	if err := d.SetProportional("LED470", 300); err == nil {
		t.Error("Expected error for out of range value")
	}
	if err := d.SetProportional("camera", 10); err == nil {
		t.Error("Expected error for output without potentiometer")
	}
}

func TestAD5204InvalidAddress(t *testing.T) {
	if _, err := NewAD5204(&fakeSPI{}, map[model.OutputID]int{"LED410": 4}, 6); err == nil {
		t.Error("Expected error for invalid address")
	}
}
