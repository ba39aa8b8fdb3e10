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
	"github.com/ewoutp/npm-illuminator/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	// Number of devices created
	devicesCreatedTotal = metrics.MustRegisterGauge(subSystem,
		"created_total",
		"Number of devices created")
	// Number of devices configured
	devicesConfiguredTotal = metrics.MustRegisterGauge(subSystem,
		"configured_total",
		"Number of devices configured")
	// Total number of output writes per output ID
	outputWritesTotal = metrics.MustRegisterCounterVec(subSystem,
		"output_writes_total",
		"Total number of output writes per ID",
		"id")
	// Total number of digipot writes per potentiometer
	digipotWritesTotal = metrics.MustRegisterCounterVec(subSystem,
		"digipot_writes_total",
		"Total number of digipot writes per potentiometer",
		"pot")
	// Total number of failed button reads per button
	buttonReadErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"button_read_errors_total",
		"Total number of failed button reads per button",
		"button")
	// Total number of failed display writes
	displayWriteErrorsTotal = metrics.MustRegisterCounter(subSystem,
		"display_write_errors_total",
		"Total number of failed display writes")
)
