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

package bridge

import (
	"github.com/ewoutp/npm-illuminator/pkg/metrics"
)

const (
	subSystem = "bridge"
)

var (
	// Total number of times I2CBus.Execute is called
	i2cExecuteCounters = metrics.MustRegisterCounterVec(subSystem,
		"execute_total",
		"Total number of times I2CBus.Execute is called",
		"address")
	// Total number of times I2CBus.Execute failed
	i2cExecuteErrorCounters = metrics.MustRegisterCounterVec(subSystem,
		"execute_error_total",
		"Total number of times I2CBus.Execute failed",
		"address")
	// Total number of I2C operations retried after closing all devices
	i2cRetriesTotal = metrics.MustRegisterCounter(subSystem,
		"i2c_retries_total",
		"Total number of I2C operations retried after closing all devices")
	// Total number of SPI transactions
	spiTxCounters = metrics.MustRegisterCounterVec(subSystem,
		"spi_tx_total",
		"Total number of SPI transactions",
		"port")
	// Total number of failed SPI transactions
	spiTxErrorCounters = metrics.MustRegisterCounterVec(subSystem,
		"spi_tx_error_total",
		"Total number of failed SPI transactions",
		"port")
	// Total number of virtual pin changes
	virtualPinChangesTotal = metrics.MustRegisterCounter(subSystem,
		"virtual_pin_changes_total",
		"Total number of virtual pin changes")
)
