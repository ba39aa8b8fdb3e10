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
	"time"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ChannelCount is the number of illumination channels of the device.
const ChannelCount = 3

// Config is the load-time configuration of the illuminator.
// It is never changed once the control loop is running.
type Config struct {
	// Path of the I2C bus device the ADC and display are connected to.
	I2CBus string `toml:"i2c_bus"`
	// Maximum intensity value (intensities are in [0, MaxIntensity])
	MaxIntensity int `toml:"max_intensity"`
	// Delay between control loop iterations while not running
	IdlePollInterval Duration `toml:"idle_poll_interval"`

	Timing   TimingConfig    `toml:"timing"`
	Camera   CameraConfig    `toml:"camera"`
	Channels []ChannelConfig `toml:"channels"`
	FPS      FPSConfig       `toml:"fps"`
	Modes    ModesConfig     `toml:"modes"`
	Buttons  ButtonsConfig   `toml:"buttons"`
	Display  DisplayConfig   `toml:"display"`
	ADC      ADCConfig       `toml:"adc"`
	Digipot  DigipotConfig   `toml:"digipot"`
}

// TimingConfig holds the frame rate range and the dead time.
type TimingConfig struct {
	MinFPS int `toml:"min_fps"`
	MaxFPS int `toml:"max_fps"`
	// Dead time in time units
	DeadTime int `toml:"dead_time"`
	// Duration of a single time unit
	TimeUnit Duration `toml:"time_unit"`
	// Final part of every wait that is spent spinning on the monotonic clock
	SpinThreshold Duration `toml:"spin_threshold"`
}

// CameraConfig configures the camera trigger line.
type CameraConfig struct {
	Pin      int      `toml:"pin"`
	Polarity Polarity `toml:"polarity"`
}

// ChannelConfig configures a single illumination channel.
type ChannelConfig struct {
	Name string `toml:"name"`
	// GPIO pin driving the LED
	Pin int `toml:"pin"`
	// If set, the LED is on when the pin is low
	Invert bool `toml:"invert"`
	// ADC input (1...) of the intensity potentiometer
	Input int `toml:"input"`
	// Raw calibration bounds. PotLow maps to intensity 0, PotHigh to MaxIntensity.
	// Either order is allowed.
	PotLow  int `toml:"pot_low"`
	PotHigh int `toml:"pot_high"`
	// Address of the channel on the digital potentiometer
	DigipotAddress int `toml:"digipot_address"`
	// Display row (0...) showing the intensity of the channel
	Row int `toml:"row"`
}

// OutputID returns the output id of the channel.
func (c ChannelConfig) OutputID() OutputID {
	return OutputID(c.Name)
}

// FPSConfig configures the frame rate potentiometer.
type FPSConfig struct {
	Input   int `toml:"input"`
	PotLow  int `toml:"pot_low"`
	PotHigh int `toml:"pot_high"`
}

// ModesConfig configures the available illumination modes.
type ModesConfig struct {
	// Modes the mode button cycles through, in order.
	Active []Mode `toml:"active"`
	// Channel indexes (0...) toggled in alternate-pair mode.
	Pair []int `toml:"pair"`
	// If set, entering a mode applies its preset instead of keeping the
	// pattern left by the previous mode.
	ResetPatternOnModeChange bool          `toml:"reset_pattern_on_mode_change"`
	Presets                  PresetsConfig `toml:"presets"`
}

// PresetsConfig holds the baseline pattern per mode, applied when a run starts.
// An empty preset keeps the current pattern.
type PresetsConfig struct {
	Constant      []bool `toml:"constant"`
	AlternateAll  []bool `toml:"alternate_all"`
	AlternatePair []bool `toml:"alternate_pair"`
	RoundRobin    []bool `toml:"round_robin"`
}

// Preset returns the baseline pattern of the given mode.
func (c PresetsConfig) Preset(m Mode) []bool {
	switch m {
	case ModeConstant:
		return c.Constant
	case ModeAlternateAll:
		return c.AlternateAll
	case ModeAlternatePair:
		return c.AlternatePair
	case ModeRoundRobin:
		return c.RoundRobin
	default:
		return nil
	}
}

// ButtonConfig configures a single push button or switch.
type ButtonConfig struct {
	Pin int `toml:"pin"`
	// If set, the button is pressed when the pin is low (pull-up wiring)
	ActiveLow bool `toml:"active_low"`
}

// ButtonsConfig configures the operator buttons.
type ButtonsConfig struct {
	Mode     ButtonConfig   `toml:"mode"`
	Start    ButtonConfig   `toml:"start"`
	Debounce Duration       `toml:"debounce"`
	StartAs  StartSemantics `toml:"start_semantics"`
}

// DisplayConfig configures the character display.
type DisplayConfig struct {
	Enabled bool `toml:"enabled"`
	Address int  `toml:"address"`
	Columns int  `toml:"columns"`
	Rows    int  `toml:"rows"`
}

// ADCConfig configures the analog to digital converter.
type ADCConfig struct {
	Address int `toml:"address"`
	// Supply voltage of the potentiometers. Readings are scaled so that this
	// voltage reads as 1023 (10 bit full scale).
	ReferenceMillivolts int `toml:"reference_millivolts"`
}

// DigipotConfig configures the optional digital potentiometer used as
// proportional intensity output.
type DigipotConfig struct {
	Enabled bool   `toml:"enabled"`
	SPIPort string `toml:"spi_port"`
	SpeedHz int    `toml:"speed_hz"`
	CodeMin int    `toml:"code_min"`
	CodeMax int    `toml:"code_max"`
}

// ChannelNames returns the names of all channels.
func (c Config) ChannelNames() []string {
	return lo.Map(c.Channels, func(ch ChannelConfig, _ int) string { return ch.Name })
}

// UnitDuration converts a number of time units into a duration.
func (c Config) UnitDuration(units int) time.Duration {
	return time.Duration(units) * c.Timing.TimeUnit.D()
}

// Load reads a TOML configuration file on top of the given base configuration.
func Load(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "failed to read config file '%s'", path)
	}
	var raw map[string]interface{}
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config file '%s'", path)
	}
	result := base
	if _, found := raw["channels"]; found {
		// Array tables append, so channels given in the file replace the base set.
		result.Channels = nil
	}
	if err := toml.Unmarshal(data, &result); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse config file '%s'", path)
	}
	return result, nil
}

// Encode returns the TOML representation of the configuration.
func (c Config) Encode() ([]byte, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return nil, maskAny(err)
	}
	return data, nil
}

// Validate checks the configuration once at startup.
// All violations are collected into a single error with cause ValidationError.
func (c Config) Validate() error {
	var ae aerr.AggregateError
	t := c.Timing
	if t.MinFPS <= 0 || t.MaxFPS <= 0 {
		ae.Add(violation("min_fps (%d) and max_fps (%d) must be > 0", t.MinFPS, t.MaxFPS))
	} else if t.MinFPS >= t.MaxFPS {
		ae.Add(violation("min_fps (%d) must be < max_fps (%d)", t.MinFPS, t.MaxFPS))
	} else if t.DeadTime >= 1000/t.MaxFPS {
		ae.Add(violation("dead_time (%d) must be < 1000/max_fps (%d)", t.DeadTime, 1000/t.MaxFPS))
	}
	if t.DeadTime < 1 {
		ae.Add(violation("dead_time (%d) must be >= 1", t.DeadTime))
	}
	if t.TimeUnit <= 0 {
		ae.Add(violation("time_unit must be > 0"))
	}
	if t.SpinThreshold < 0 {
		ae.Add(violation("spin_threshold must be >= 0"))
	}
	if c.MaxIntensity <= 0 {
		ae.Add(violation("max_intensity (%d) must be > 0", c.MaxIntensity))
	}
	if c.IdlePollInterval < 0 {
		ae.Add(violation("idle_poll_interval must be >= 0"))
	}
	if !c.Camera.Polarity.IsValid() {
		ae.Add(violation("unknown camera polarity '%s'", c.Camera.Polarity))
	}

	// Channels
	if len(c.Channels) != ChannelCount {
		ae.Add(violation("expected %d channels, got %d", ChannelCount, len(c.Channels)))
	}
	pins := map[int]string{c.Camera.Pin: string(CameraOutputID)}
	rows := map[int]string{}
	for _, ch := range c.Channels {
		if ch.Name == "" {
			ae.Add(violation("channel on pin %d has no name", ch.Pin))
		} else if OutputID(ch.Name) == CameraOutputID {
			ae.Add(violation("channel name '%s' is reserved", ch.Name))
		}
		if other, found := pins[ch.Pin]; found {
			ae.Add(violation("pin %d of channel '%s' is already used by '%s'", ch.Pin, ch.Name, other))
		}
		pins[ch.Pin] = ch.Name
		if ch.Input < 1 {
			ae.Add(violation("input of channel '%s' must be >= 1", ch.Name))
		}
		if ch.Row < 0 || ch.Row >= ChannelCount {
			ae.Add(violation("row of channel '%s' must be in [0..%d), got %d", ch.Name, ChannelCount, ch.Row))
		} else if other, found := rows[ch.Row]; found {
			ae.Add(violation("row %d of channel '%s' is already used by '%s'", ch.Row, ch.Name, other))
		}
		rows[ch.Row] = ch.Name
		if c.Digipot.Enabled && (ch.DigipotAddress < 0 || ch.DigipotAddress > 3) {
			ae.Add(violation("digipot_address of channel '%s' must be in [0..3], got %d", ch.Name, ch.DigipotAddress))
		}
	}
	if dups := lo.FindDuplicates(c.ChannelNames()); len(dups) > 0 {
		ae.Add(violation("duplicate channel names %v", dups))
	}
	if c.FPS.Input < 1 {
		ae.Add(violation("input of fps potentiometer must be >= 1"))
	}

	// Modes
	if len(c.Modes.Active) == 0 {
		ae.Add(violation("at least one active mode is required"))
	}
	for _, m := range c.Modes.Active {
		if !m.IsValid() {
			ae.Add(violation("invalid mode %d", int(m)))
		}
	}
	if dups := lo.FindDuplicates(c.Modes.Active); len(dups) > 0 {
		ae.Add(violation("duplicate active modes %v", dups))
	}
	p := c.Modes.Pair
	validPair := len(p) == 2 && p[0] != p[1] && !lo.SomeBy(p, func(i int) bool { return i < 0 || i >= len(c.Channels) })
	if lo.Contains(c.Modes.Active, ModeAlternatePair) {
		if len(p) != 2 {
			ae.Add(violation("pair must contain 2 channel indexes, got %d", len(p)))
		} else if !validPair {
			ae.Add(violation("pair %v must contain 2 distinct channel indexes in [0..%d)", p, len(c.Channels)))
		}
	}
	for _, m := range AllModes {
		if preset := c.Modes.Presets.Preset(m); len(preset) != 0 && len(preset) != len(c.Channels) {
			ae.Add(violation("preset of mode '%s' must have %d levels, got %d", m, len(c.Channels), len(preset)))
		}
	}
	// Presets must already satisfy the pattern rule of their mode,
	// they are written to the outputs before the first cycle.
	if preset := c.Modes.Presets.RoundRobin; len(preset) != 0 && lo.Count(preset, true) != 1 {
		ae.Add(violation("preset of mode '%s' must have exactly 1 level on, got %d", ModeRoundRobin, lo.Count(preset, true)))
	}
	if preset := c.Modes.Presets.AlternatePair; len(preset) != 0 && validPair {
		for i, on := range preset {
			if on && i != p[0] && i != p[1] {
				ae.Add(violation("preset of mode '%s' must keep channel %d outside pair %v off", ModeAlternatePair, i, p))
			}
		}
	}

	// Buttons
	if !c.Buttons.StartAs.IsValid() {
		ae.Add(violation("unknown start_semantics '%s'", c.Buttons.StartAs))
	}
	if c.Buttons.Mode.Pin == c.Buttons.Start.Pin {
		ae.Add(violation("mode and start button cannot share pin %d", c.Buttons.Mode.Pin))
	}
	if c.Buttons.Debounce < 0 {
		ae.Add(violation("debounce must be >= 0"))
	}

	// Display
	if c.Display.Enabled && (c.Display.Columns < 20 || c.Display.Rows < 4) {
		ae.Add(violation("display must have at least 20x4 characters, got %dx%d", c.Display.Columns, c.Display.Rows))
	}

	if c.ADC.ReferenceMillivolts <= 0 || c.ADC.ReferenceMillivolts > 4096 {
		ae.Add(violation("adc reference_millivolts must be in [1..4096], got %d", c.ADC.ReferenceMillivolts))
	}

	// Digipot
	if c.Digipot.Enabled {
		if c.Digipot.CodeMin < 0 || c.Digipot.CodeMax > 255 {
			ae.Add(violation("digipot codes must be in [0..255]"))
		}
		if c.Digipot.SpeedHz <= 0 {
			ae.Add(violation("digipot speed_hz must be > 0"))
		}
	}
	if ae.IsEmpty() {
		return nil
	}
	return errors.Wrap(ValidationError, ae.Error())
}

// Warnings returns configuration issues that are not fatal but
// must be surfaced to the operator.
func (c Config) Warnings() []string {
	var result []string
	for _, ch := range c.Channels {
		if ch.PotLow == ch.PotHigh {
			result = append(result, "calibration bounds of channel '"+ch.Name+"' have zero range; intensity is constant")
		}
	}
	if c.FPS.PotLow == c.FPS.PotHigh {
		result = append(result, "calibration bounds of fps potentiometer have zero range; fps is constant")
	}
	if c.Digipot.Enabled && c.Digipot.CodeMin == c.Digipot.CodeMax {
		result = append(result, "digipot code range is empty; proportional output is constant")
	}
	return result
}
