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

// Package calibration maps raw potentiometer samples onto bounded
// intensity, frame rate and digital potentiometer values.
package calibration

import (
	"github.com/samber/lo"
)

// Map clamps raw into the range spanned by low and high (in either order)
// and linearly maps it such that low yields outMin and high yields outMax.
// Fractions are truncated. A zero range (low == high) yields outMin.
func Map(raw, low, high, outMin, outMax int) int {
	if low == high {
		return outMin
	}
	clamped := lo.Clamp(raw, min(low, high), max(low, high))
	// (clamped-low) and (high-low) always have the same sign.
	return outMin + (clamped-low)*(outMax-outMin)/(high-low)
}

// SampleToIntensity maps a raw sample onto an intensity in [0, maxIntensity].
func SampleToIntensity(raw, low, high, maxIntensity int) int {
	return Map(raw, low, high, 0, maxIntensity)
}

// SampleToFPS maps a raw sample onto a frame rate in [minFPS, maxFPS].
func SampleToFPS(raw, low, high, minFPS, maxFPS int) int {
	return Map(raw, low, high, minFPS, maxFPS)
}

// SampleToCode maps a raw sample onto a digital potentiometer code in [codeMin, codeMax].
func SampleToCode(raw, low, high, codeMin, codeMax int) int {
	return Map(raw, low, high, codeMin, codeMax)
}
