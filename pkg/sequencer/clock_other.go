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

//go:build !linux

package sequencer

import (
	"time"
)

type monotonicClock struct {
	epoch time.Time
	spin  time.Duration
}

// NewMonotonicClock returns a clock based on the monotonic reading of the
// Go runtime.
// Waits sleep until spinThreshold before the deadline and busy-wait the remainder.
func NewMonotonicClock(spinThreshold time.Duration) (Clock, error) {
	return &monotonicClock{
		epoch: time.Now(),
		spin:  max(spinThreshold, 0),
	}, nil
}

func (c *monotonicClock) Now() time.Duration {
	return time.Since(c.epoch)
}

func (c *monotonicClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := c.Now() + d
	if d > c.spin {
		time.Sleep(d - c.spin)
	}
	spinUntil(c.Now, deadline)
}

func (c *monotonicClock) Resolution() time.Duration {
	return time.Microsecond
}
