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
	"io"
	"sync"
)

// MultiWriter writes logs to a set of outputs that can change on the fly.
type MultiWriter struct {
	mutex   sync.Mutex
	writers []io.Writer
}

// NewMultiWriter creates a new output for logs and can add outputs
// on the fly.
func NewMultiWriter(writers ...io.Writer) *MultiWriter {
	return &MultiWriter{
		writers: writers,
	}
}

// Add an output. The returned function removes it again.
func (l *MultiWriter) Add(w io.Writer) func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.writers = append(l.writers, w)
	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		for i, x := range l.writers {
			if x == w {
				l.writers = append(l.writers[:i:i], l.writers[i+1:]...)
				return
			}
		}
	}
}

// Replace all outputs by the given output.
// The returned function restores the previous outputs.
func (l *MultiWriter) Replace(w io.Writer) func() {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	previous := l.writers
	l.writers = []io.Writer{w}
	return func() {
		l.mutex.Lock()
		defer l.mutex.Unlock()
		l.writers = previous
	}
}

// Write p to all outputs. The first error is returned.
func (l *MultiWriter) Write(p []byte) (int, error) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	var firstErr error
	for _, w := range l.writers {
		if _, err := w.Write(p); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return len(p), firstErr
}
