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
	"fmt"
)

const (
	// Column of the value of each reading
	valueColumn = 10
	// Width of a value field
	valueWidth = 5
	// Position of the mode label
	modeRow, modeColumn = 0, 16
	// Position of the run status
	statusRow, statusColumn = 3, 17
	// Row of the frame rate
	fpsRow = 3
)

// showLayout writes the static parts of the display.
func (c *Controller) showLayout() {
	for _, ch := range c.cfg.Channels {
		c.show(ch.Row, 0, fmt.Sprintf("%s: ", ch.Name))
	}
	c.show(fpsRow, 0, "FPS:    ")
	c.showMode()
	c.showStatus()
}

// showValue writes a reading in the value field of the given row.
func (c *Controller) showValue(row, value int) {
	c.show(row, valueColumn, fmt.Sprintf("%-*d", valueWidth, value))
}

func (c *Controller) showMode() {
	c.show(modeRow, modeColumn, c.machine.Mode().Label())
}

func (c *Controller) showStatus() {
	if c.state.Running {
		c.show(statusRow, statusColumn, "ON ")
	} else {
		c.show(statusRow, statusColumn, "OFF")
	}
}

func (c *Controller) show(row, col int, text string) {
	if err := c.Display.Show(row, col, text); err != nil {
		displayErrorsTotal.Inc()
		c.Log.Debug().Err(err).Int("row", row).Int("col", col).Msg("Failed to update display")
	}
}
