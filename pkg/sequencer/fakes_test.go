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
	"fmt"
	"time"

	"github.com/ewoutp/npm-illuminator/pkg/model"
)

// fakeClock advances virtual time on every sleep.
type fakeClock struct {
	now    time.Duration
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	c.sleeps = append(c.sleeps, d)
	if d > 0 {
		c.now += d
	}
}

func (c *fakeClock) Resolution() time.Duration { return time.Nanosecond }

type levelWrite struct {
	ID model.OutputID
	On bool
	At time.Duration
}

// recordingOutput records all level writes.
type recordingOutput struct {
	clock  *fakeClock
	writes []levelWrite
	fail   map[model.OutputID]bool
}

func (o *recordingOutput) SetLevel(id model.OutputID, on bool) error {
	if o.fail[id] {
		return fmt.Errorf("output %s failed", id)
	}
	var at time.Duration
	if o.clock != nil {
		at = o.clock.now
	}
	o.writes = append(o.writes, levelWrite{ID: id, On: on, At: at})
	return nil
}

func (o *recordingOutput) writesOf(id model.OutputID) []levelWrite {
	var result []levelWrite
	for _, w := range o.writes {
		if w.ID == id {
			result = append(result, w)
		}
	}
	return result
}
