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
	"github.com/ewoutp/npm-illuminator/pkg/metrics"
)

const (
	subSystem = "controller"
)

var (
	// Total number of control loop iterations
	iterationsTotal = metrics.MustRegisterCounter(subSystem,
		"iterations_total",
		"Total number of control loop iterations")
	// Running state (1 running, 0 stopped)
	runningGauge = metrics.MustRegisterGauge(subSystem,
		"running",
		"Running state (1 running, 0 stopped)")
	// Total number of mode changes per entered mode
	modeChangesTotal = metrics.MustRegisterCounterVec(subSystem,
		"mode_changes_total",
		"Total number of mode changes per entered mode",
		"mode")
	// Current intensity per channel
	intensityGauge = metrics.MustRegisterGaugeVec(subSystem,
		"intensity",
		"Current intensity per channel",
		"channel")
	// Current frame rate
	fpsGauge = metrics.MustRegisterGauge(subSystem,
		"fps",
		"Current frame rate")
	// Total number of failed sampler reads per input
	samplerErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"sampler_errors_total",
		"Total number of failed sampler reads per input",
		"input")
	// Total number of failed display updates
	displayErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"display_errors_total",
		"Total number of failed display updates")
)
