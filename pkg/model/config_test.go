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

package model

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
)

func TestProfilesAreValid(t *testing.T) {
	for _, name := range ProfileNames() {
		cfg, err := Profile(name)
		if err != nil {
			t.Fatalf("Profile(%s) failed: %s", name, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("profile %s is invalid: %s", name, err)
		}
	}
	if _, err := Profile("unknown"); !IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestProfileDifferences(t *testing.T) {
	alan1, _ := Profile(ProfileAlan1)
	trig3, _ := Profile(ProfileAlanTrig3)
	driver2, _ := Profile(ProfileNPMDriver2)

	if len(alan1.Modes.Active) != 2 || len(trig3.Modes.Active) != 3 || len(driver2.Modes.Active) != 4 {
		t.Errorf("unexpected mode counts %d/%d/%d", len(alan1.Modes.Active), len(trig3.Modes.Active), len(driver2.Modes.Active))
	}
	if alan1.Buttons.Start.ActiveLow {
		t.Error("alan1 start is asserted while released")
	}
	if alan1.Digipot.Enabled || !driver2.Digipot.Enabled {
		t.Error("only npm_driver2 has a digipot")
	}
	if alan1.Channels[0].PotLow != 830 || alan1.Channels[0].PotHigh != 315 {
		t.Errorf("unexpected alan1 calibration %d..%d", alan1.Channels[0].PotLow, alan1.Channels[0].PotHigh)
	}
}

func TestNPMDriver2ChannelMap(t *testing.T) {
	cfg, _ := Profile(ProfileNPMDriver2)
	tests := []struct {
		name    string
		row     int
		address int
		input   int
	}{
		{"LED560", 0, 0, 3},
		{"LED470", 1, 2, 2},
		{"LED410", 2, 1, 1},
	}
	for _, tc := range tests {
		ch, found := lo.Find(cfg.Channels, func(ch ChannelConfig) bool { return ch.Name == tc.name })
		if !found {
			t.Fatalf("channel %s not found", tc.name)
		}
		if ch.Row != tc.row || ch.DigipotAddress != tc.address || ch.Input != tc.input {
			t.Errorf("%s: expected row %d, address %d, input %d, got %d, %d, %d",
				tc.name, tc.row, tc.address, tc.input, ch.Row, ch.DigipotAddress, ch.Input)
		}
	}
	alan1, _ := Profile(ProfileAlan1)
	for i, ch := range alan1.Channels {
		if ch.Row != i {
			t.Errorf("alan1 %s: expected row %d, got %d", ch.Name, i, ch.Row)
		}
	}
}

func TestValidatePresetsPerMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Modes.Pair = []int{0, 2}
	cfg.Modes.Presets.AlternatePair = []bool{true, false, true}
	cfg.Modes.Presets.RoundRobin = []bool{false, false, true}
	cfg.Modes.Presets.AlternateAll = []bool{true, true, true}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid presets, got %s", err)
	}
	cfg.Modes.Presets.AlternatePair = []bool{false, true, false}
	err := cfg.Validate()
	if !IsValidation(err) || !strings.Contains(err.Error(), "channel 1 outside pair") {
		t.Errorf("expected pair preset violation, got %v", err)
	}
}

func TestValidateCollectsAllViolations(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timing.MinFPS = 50
	cfg.MaxIntensity = 0
	cfg.Channels[1].Pin = cfg.Camera.Pin
	cfg.Modes.Active = []Mode{ModeConstant, ModeConstant}
	cfg.Modes.Presets.RoundRobin = []bool{true}

	err := cfg.Validate()
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := err.Error()
	for _, expected := range []string{"min_fps", "max_intensity", "already used", "duplicate active modes", "preset of mode 'round-robin'"} {
		if !strings.Contains(msg, expected) {
			t.Errorf("expected %q in %q", expected, msg)
		}
	}
}

func TestValidateViolations(t *testing.T) {
	tests := []struct {
		name   string
		modify func(c *Config)
	}{
		{"dead time zero", func(c *Config) { c.Timing.DeadTime = 0 }},
		{"dead time exceeds period", func(c *Config) { c.Timing.DeadTime = 25 }},
		{"two channels", func(c *Config) { c.Channels = c.Channels[:2] }},
		{"camera name", func(c *Config) { c.Channels[0].Name = string(CameraOutputID) }},
		{"duplicate names", func(c *Config) { c.Channels[1].Name = c.Channels[0].Name }},
		{"no modes", func(c *Config) { c.Modes.Active = nil }},
		{"invalid mode", func(c *Config) { c.Modes.Active = []Mode{Mode(9)} }},
		{"pair equal", func(c *Config) { c.Modes.Pair = []int{1, 1} }},
		{"pair out of range", func(c *Config) { c.Modes.Pair = []int{0, 3} }},
		{"polarity", func(c *Config) { c.Camera.Polarity = "inverted" }},
		{"start semantics", func(c *Config) { c.Buttons.StartAs = "toggle" }},
		{"shared button pin", func(c *Config) { c.Buttons.Start.Pin = c.Buttons.Mode.Pin }},
		{"small display", func(c *Config) { c.Display.Columns = 16 }},
		{"digipot address", func(c *Config) { c.Channels[2].DigipotAddress = 4 }},
		{"row out of range", func(c *Config) { c.Channels[0].Row = 3 }},
		{"duplicate rows", func(c *Config) { c.Channels[1].Row = c.Channels[0].Row }},
		{"round-robin preset with 3 on", func(c *Config) { c.Modes.Presets.RoundRobin = []bool{true, true, true} }},
		{"round-robin preset with none on", func(c *Config) { c.Modes.Presets.RoundRobin = []bool{false, false, false} }},
		{"alternate-pair preset outside pair", func(c *Config) { c.Modes.Presets.AlternatePair = []bool{true, true, false} }},
		{"digipot codes", func(c *Config) { c.Digipot.CodeMax = 256 }},
		{"adc reference", func(c *Config) { c.ADC.ReferenceMillivolts = 5000 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.modify(&cfg)
			if err := cfg.Validate(); !IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	cfg := DefaultConfig()
	if w := cfg.Warnings(); len(w) != 0 {
		t.Errorf("expected no warnings, got %v", w)
	}
	cfg.Channels[2].PotHigh = cfg.Channels[2].PotLow
	cfg.FPS.PotLow = 0
	cfg.FPS.PotHigh = 0
	if w := cfg.Warnings(); len(w) != 2 {
		t.Errorf("expected 2 warnings, got %v", w)
	}
}

func TestLoad(t *testing.T) {
	content := `
max_intensity = 255

[timing]
dead_time = 2
time_unit = "500us"

[camera]
polarity = "active-high"

[modes]
active = ["constant", "round-robin"]

[[channels]]
name = "A"
row = 0
pin = 5
input = 1
pot_low = 0
pot_high = 1023

[[channels]]
name = "B"
row = 1
pin = 7
input = 2
pot_low = 0
pot_high = 1023

[[channels]]
name = "C"
row = 2
pin = 8
input = 3
pot_low = 0
pot_high = 1023
`
	path := filepath.Join(t.TempDir(), "illuminator.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path, DefaultConfig())
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if cfg.MaxIntensity != 255 || cfg.Timing.DeadTime != 2 {
		t.Errorf("unexpected values %d, %d", cfg.MaxIntensity, cfg.Timing.DeadTime)
	}
	if cfg.Timing.TimeUnit.D() != 500*time.Microsecond {
		t.Errorf("unexpected time unit %s", cfg.Timing.TimeUnit.D())
	}
	if cfg.Timing.MaxFPS != 40 {
		t.Errorf("expected max fps from base, got %d", cfg.Timing.MaxFPS)
	}
	if cfg.Camera.Polarity != PolarityActiveHigh {
		t.Errorf("unexpected polarity %s", cfg.Camera.Polarity)
	}
	if len(cfg.Modes.Active) != 2 || cfg.Modes.Active[1] != ModeRoundRobin {
		t.Errorf("unexpected modes %v", cfg.Modes.Active)
	}
	if names := cfg.ChannelNames(); len(names) != 3 || names[0] != "A" {
		t.Errorf("expected channels to be replaced, got %v", names)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config is invalid: %s", err)
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := Load(filepath.Join(dir, "missing.toml"), DefaultConfig()); err == nil {
		t.Error("expected error for missing file")
	}
	path := filepath.Join(dir, "bad.toml")
	os.WriteFile(path, []byte("[modes]\nactive = [\"strobe\"]\n"), 0o644)
	if _, err := Load(path, DefaultConfig()); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestEncodeLoad(t *testing.T) {
	cfg, _ := Profile(ProfileAlanTrig3)
	data, err := cfg.Encode()
	if err != nil {
		t.Fatalf("Encode failed: %s", err)
	}
	path := filepath.Join(t.TempDir(), "illuminator.toml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path, Config{})
	if err != nil {
		t.Fatalf("Load failed: %s", err)
	}
	if err := loaded.Validate(); err != nil {
		t.Errorf("loaded config is invalid: %s", err)
	}
	if len(loaded.Modes.Active) != 3 || loaded.Buttons.Debounce != cfg.Buttons.Debounce {
		t.Errorf("unexpected loaded config %+v", loaded)
	}
}

func TestModes(t *testing.T) {
	for _, m := range AllModes {
		parsed, err := ParseMode(strings.ToUpper(strings.ReplaceAll(m.String(), "-", "_")))
		if err != nil || parsed != m {
			t.Errorf("ParseMode(%s) = %s, %v", m, parsed, err)
		}
		if len(m.Label()) != 4 {
			t.Errorf("label of %s must have 4 characters, got %q", m, m.Label())
		}
	}
	if Mode(7).IsValid() {
		t.Error("mode 7 must be invalid")
	}
	if _, err := Mode(7).MarshalText(); err == nil {
		t.Error("expected error marshaling invalid mode")
	}
}

func TestPolarity(t *testing.T) {
	if PolarityActiveLow.ActiveLevel() || !PolarityActiveHigh.ActiveLevel() {
		t.Error("unexpected active levels")
	}
	if Polarity("x").IsValid() {
		t.Error("unknown polarity must be invalid")
	}
}
