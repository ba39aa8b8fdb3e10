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
	"fmt"
	"strings"
	"time"

	"github.com/ewoutp/npm-illuminator/pkg/model"
)

type fakeClock struct {
	now time.Duration
}

func (c *fakeClock) Now() time.Duration { return c.now }

func (c *fakeClock) Sleep(d time.Duration) {
	if d > 0 {
		c.now += d
	}
}

func (c *fakeClock) Resolution() time.Duration { return time.Nanosecond }

type fakeSampler struct {
	raw   map[int]int
	fail  map[int]bool
	reads map[int]int
}

func (s *fakeSampler) ReadRaw(ctx context.Context, input int) (int, error) {
	if s.reads == nil {
		s.reads = make(map[int]int)
	}
	s.reads[input]++
	if s.fail[input] {
		return 0, fmt.Errorf("input %d unavailable", input)
	}
	return s.raw[input], nil
}

type fakeOutput struct {
	levels map[model.OutputID]bool
	writes map[model.OutputID]int
	codes  map[model.OutputID]int
}

func newFakeOutput() *fakeOutput {
	return &fakeOutput{
		levels: make(map[model.OutputID]bool),
		writes: make(map[model.OutputID]int),
		codes:  make(map[model.OutputID]int),
	}
}

func (o *fakeOutput) SetLevel(id model.OutputID, on bool) error {
	o.levels[id] = on
	o.writes[id]++
	return nil
}

func (o *fakeOutput) SetProportional(id model.OutputID, value int) error {
	o.codes[id] = value
	return nil
}

type fakeButtons struct {
	modePresses  int
	startPresses int
	start        bool
}

func (b *fakeButtons) ModeEdge() bool {
	if b.modePresses > 0 {
		b.modePresses--
		return true
	}
	return false
}

func (b *fakeButtons) StartLevel() bool { return b.start }

func (b *fakeButtons) StartEdge() bool {
	if b.startPresses > 0 {
		b.startPresses--
		return true
	}
	return false
}

type fakeDisplay struct {
	rows [4][]byte
}

func newFakeDisplay() *fakeDisplay {
	d := &fakeDisplay{}
	for i := range d.rows {
		d.rows[i] = []byte(strings.Repeat(" ", 20))
	}
	return d
}

func (d *fakeDisplay) Show(row, col int, text string) error {
	if row < 0 || row >= len(d.rows) || col < 0 || col+len(text) > 20 {
		return fmt.Errorf("text %q at %d,%d out of bounds", text, row, col)
	}
	copy(d.rows[row][col:], text)
	return nil
}

func (d *fakeDisplay) text(row, col, length int) string {
	return string(d.rows[row][col : col+length])
}
