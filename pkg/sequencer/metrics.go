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

package sequencer

import (
	"github.com/ewoutp/npm-illuminator/pkg/metrics"
)

const (
	subSystem = "sequencer"
)

var (
	// Total number of completed trigger cycles
	cyclesTotal = metrics.MustRegisterCounter(subSystem,
		"cycles_total",
		"Total number of completed trigger cycles")
	// Total number of failed output writes per output ID
	outputWriteErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"output_write_errors_total",
		"Total number of failed output writes per ID",
		"id")
	// Duration of trigger cycles
	cycleDurationSeconds = metrics.MustRegisterHistogram(subSystem,
		"cycle_duration_seconds",
		"Duration of trigger cycles",
		[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.2, 0.25})
	// Exposure of the last cycle in time units
	exposureUnits = metrics.MustRegisterGauge(subSystem,
		"exposure_units",
		"Exposure of the last cycle in time units")
)
