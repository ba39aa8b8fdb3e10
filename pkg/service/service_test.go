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

package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/ewoutp/npm-illuminator/pkg/model"
	"github.com/ewoutp/npm-illuminator/pkg/service/bridge"
)

func TestNewServiceRequiresBridge(t *testing.T) {
	if _, err := NewService(Config{Illuminator: model.DefaultConfig()}, Dependencies{Logger: zerolog.Nop()}); err == nil {
		t.Error("expected error without bridge")
	}
}

func TestServiceRunsHeadlessSimulator(t *testing.T) {
	cfg := model.DefaultConfig()
	vb := bridge.NewVirtualBridge()
	var pulses atomic.Int32
	leave := vb.Subscribe(func(e bridge.PinEvent) {
		if e.Pin == cfg.Camera.Pin && e.Level == cfg.Camera.Polarity.ActiveLevel() {
			pulses.Add(1)
		}
	})
	defer leave()

	svc, err := NewService(Config{Illuminator: cfg, Headless: true}, Dependencies{
		Logger: zerolog.Nop(),
		Bridge: vb,
	})
	if err != nil {
		t.Fatalf("NewService failed: %s", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- svc.Run(ctx)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for pulses.Load() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("expected camera pulses, got %d", pulses.Load())
		}
		time.Sleep(time.Millisecond * 5)
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run failed: %s", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	if level := vb.Level(cfg.Camera.Pin); level == cfg.Camera.Polarity.ActiveLevel() {
		t.Error("expected camera trigger inactive after shutdown")
	}
	for _, ch := range cfg.Channels {
		if vb.Level(ch.Pin) != ch.Invert {
			t.Errorf("expected LED %s off after shutdown", ch.Name)
		}
	}
}
