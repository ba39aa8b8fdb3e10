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

package controller

import (
	"context"

	"github.com/ewoutp/npm-illuminator/pkg/model"
)

// Sampler reads raw analog values from potentiometer inputs.
type Sampler interface {
	// ReadRaw returns the raw 10-bit sample of the given input (1 based).
	ReadRaw(ctx context.Context, input int) (int, error)
}

// Output drives camera and LED lines.
type Output interface {
	SetLevel(id model.OutputID, on bool) error
}

// ProportionalOutput drives an analog (digipot) value per channel.
type ProportionalOutput interface {
	SetProportional(id model.OutputID, value int) error
}

// Display shows text on a character display.
type Display interface {
	Show(row, col int, text string) error
}

// Buttons reports the state of the operator controls.
type Buttons interface {
	// ModeEdge returns true once per press of the mode button.
	ModeEdge() bool
	// StartLevel returns true while the start switch is on.
	StartLevel() bool
	// StartEdge returns true once per press of the start button.
	StartEdge() bool
}

type nopDisplay struct{}

func (nopDisplay) Show(int, int, string) error { return nil }
