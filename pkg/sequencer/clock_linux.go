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

//go:build linux

package sequencer

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

type monotonicClock struct {
	spin       time.Duration
	resolution time.Duration
}

// NewMonotonicClock returns a clock based on CLOCK_MONOTONIC.
// Waits sleep in the kernel until spinThreshold before the deadline
// and busy-wait the remainder.
func NewMonotonicClock(spinThreshold time.Duration) (Clock, error) {
	var res unix.Timespec
	if err := unix.ClockGetres(unix.CLOCK_MONOTONIC, &res); err != nil {
		return nil, errors.Wrap(err, "failed to get monotonic clock resolution")
	}
	return &monotonicClock{
		spin:       max(spinThreshold, 0),
		resolution: time.Duration(res.Nano()),
	}, nil
}

// Now returns the current CLOCK_MONOTONIC reading.
func (c *monotonicClock) Now() time.Duration {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is always supported on linux.
		panic(err)
	}
	return time.Duration(ts.Nano())
}

// Sleep blocks until d has elapsed.
func (c *monotonicClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := c.Now() + d
	if d > c.spin {
		wakeup := unix.NsecToTimespec(int64(deadline - c.spin))
		for {
			err := unix.ClockNanosleep(unix.CLOCK_MONOTONIC, unix.TIMER_ABSTIME, &wakeup, nil)
			if err != unix.EINTR {
				break
			}
		}
	}
	spinUntil(c.Now, deadline)
}

// Resolution returns the resolution reported by the kernel.
func (c *monotonicClock) Resolution() time.Duration {
	return c.resolution
}
