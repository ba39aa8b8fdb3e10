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

package logging

import (
	"strings"
)

const (
	defaultQueueSize = 512
)

// QueueWriter buffers log lines for a consumer that reads at its own pace.
// When the queue is full, the oldest lines are dropped; writes never block.
type QueueWriter struct {
	queue chan string
}

// NewQueueWriter creates a queue writer holding up to size lines.
func NewQueueWriter(size int) *QueueWriter {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &QueueWriter{
		queue: make(chan string, size),
	}
}

// Lines returns the channel the buffered lines are delivered on.
func (l *QueueWriter) Lines() <-chan string {
	return l.queue
}

// Write queues p as a single line.
func (l *QueueWriter) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	line := strings.TrimRight(string(p), "\n")
	for attempt := 0; attempt < 10; attempt++ {
		select {
		case l.queue <- line:
			return len(p), nil
		default:
			// Queue full; Take 1 out and try again
			select {
			case <-l.queue:
			default:
			}
		}
	}
	// Dropped
	return len(p), nil
}
