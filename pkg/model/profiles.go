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
	"sort"
	"time"

	"github.com/samber/lo"
)

const (
	// ProfileNPMDriver2 is the 4 mode driver with a digital potentiometer.
	ProfileNPMDriver2 = "npm_driver2"
	// ProfileAlan1 is the 2 mode (constant/trigger) driver.
	ProfileAlan1 = "alan1"
	// ProfileAlanTrig3 is the 3 mode (constant/trigger/cycle) driver.
	ProfileAlanTrig3 = "alan_trig3"
)

var profiles = map[string]func() Config{
	ProfileNPMDriver2: npmDriver2Profile,
	ProfileAlan1:      alan1Profile,
	ProfileAlanTrig3:  alanTrig3Profile,
}

// DefaultConfig returns the configuration of the default device profile.
func DefaultConfig() Config {
	return npmDriver2Profile()
}

// ProfileNames returns the names of all known device profiles.
func ProfileNames() []string {
	result := lo.Keys(profiles)
	sort.Strings(result)
	return result
}

// Profile returns the default configuration of the device profile with given name.
func Profile(name string) (Config, error) {
	if f, found := profiles[name]; found {
		return f(), nil
	}
	return Config{}, invalid("unknown profile '%s', expected one of %v", name, ProfileNames())
}

// baseConfig returns the settings shared by all device variants.
func baseConfig() Config {
	return Config{
		I2CBus:           "/dev/i2c-1",
		MaxIntensity:     100,
		IdlePollInterval: Duration(time.Millisecond * 5),
		Timing: TimingConfig{
			MinFPS:        5,
			MaxFPS:        40,
			DeadTime:      1,
			TimeUnit:      Duration(time.Millisecond),
			SpinThreshold: Duration(time.Microsecond * 200),
		},
		Camera: CameraConfig{
			Pin:      6,
			Polarity: PolarityActiveLow,
		},
		Channels: []ChannelConfig{
			{Name: "LED410", Pin: 17, Input: 1, PotLow: 830, PotHigh: 315, Row: 0},
			{Name: "LED470", Pin: 27, Input: 2, PotLow: 830, PotHigh: 315, Row: 1},
			{Name: "LED560", Pin: 22, Input: 3, PotLow: 830, PotHigh: 315, Row: 2},
		},
		// The frame rate potentiometer is wired inverted.
		FPS: FPSConfig{Input: 4, PotLow: 1023, PotHigh: 0},
		Modes: ModesConfig{
			Active: []Mode{ModeConstant, ModeAlternateAll},
			Pair:   []int{1, 2},
			Presets: PresetsConfig{
				AlternateAll:  []bool{true, false, false},
				AlternatePair: []bool{false, true, false},
				RoundRobin:    []bool{true, false, false},
			},
		},
		Buttons: ButtonsConfig{
			Mode:     ButtonConfig{Pin: 21, ActiveLow: true},
			Start:    ButtonConfig{Pin: 20, ActiveLow: true},
			Debounce: Duration(time.Millisecond * 20),
			StartAs:  StartLevel,
		},
		Display: DisplayConfig{
			Enabled: true,
			Address: 0x3F,
			Columns: 20,
			Rows:    4,
		},
		ADC: ADCConfig{Address: 0x48, ReferenceMillivolts: 3300},
		Digipot: DigipotConfig{
			SPIPort: "",
			SpeedHz: 1000000,
			CodeMin: 6,
			CodeMax: 90,
		},
	}
}

func npmDriver2Profile() Config {
	c := baseConfig()
	c.Modes.Active = []Mode{ModeConstant, ModeAlternateAll, ModeAlternatePair, ModeRoundRobin}
	// This board numbers the channels LED560, LED470, LED410, which
	// sets their display rows and digipot addresses.
	rows := map[string]int{"LED410": 2, "LED470": 1, "LED560": 0}
	addresses := map[string]int{"LED410": 1, "LED470": 2, "LED560": 0}
	for i := range c.Channels {
		ch := &c.Channels[i]
		ch.PotLow = 0
		ch.PotHigh = 1023
		ch.Row = rows[ch.Name]
		ch.DigipotAddress = addresses[ch.Name]
	}
	c.Digipot.Enabled = true
	return c
}

func alan1Profile() Config {
	c := baseConfig()
	// Start is asserted while the start button is released.
	c.Buttons.Start.ActiveLow = false
	return c
}

func alanTrig3Profile() Config {
	c := baseConfig()
	c.Modes.Active = []Mode{ModeConstant, ModeAlternateAll, ModeRoundRobin}
	return c
}
