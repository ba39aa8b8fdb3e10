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
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewJSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "info", Format: "auto"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug().Msg("hidden")
	log.Info().Str("mode", "constant").Msg("visible")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("Expected 1 line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("Expected JSON output: %v", err)
	}
	if entry["mode"] != "constant" || entry["message"] != "visible" {
		t.Errorf("Unexpected entry %v", entry)
	}
}

func TestNewConsole(t *testing.T) {
	var buf bytes.Buffer
	log, err := New(Config{Level: "debug", Format: "console"}, &buf)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug().Msg("hello")
	if strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), "hello") {
		t.Errorf("Expected console output, got %q", buf.String())
	}
}

func TestNewInvalid(t *testing.T) {
	if _, err := New(Config{Level: "loud"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for invalid level")
	}
	if _, err := New(Config{Level: "info", Format: "xml"}, &bytes.Buffer{}); err == nil {
		t.Error("Expected error for invalid format")
	}
}

func TestMultiWriter(t *testing.T) {
	var a, b bytes.Buffer
	m := NewMultiWriter(&a)
	remove := m.Add(&b)
	m.Write([]byte("x"))
	remove()
	m.Write([]byte("y"))
	if a.String() != "xy" || b.String() != "x" {
		t.Errorf("Unexpected outputs %q, %q", a.String(), b.String())
	}
	restore := m.Replace(&b)
	m.Write([]byte("z"))
	restore()
	m.Write([]byte("w"))
	if a.String() != "xyw" || b.String() != "xz" {
		t.Errorf("Unexpected outputs %q, %q", a.String(), b.String())
	}
}

func TestQueueWriterDropsOldest(t *testing.T) {
	q := NewQueueWriter(2)
	q.Write([]byte("one\n"))
	q.Write([]byte("two\n"))
	q.Write([]byte("three\n"))
	if got := <-q.Lines(); got != "two" {
		t.Errorf("Expected two, got %q", got)
	}
	if got := <-q.Lines(); got != "three" {
		t.Errorf("Expected three, got %q", got)
	}
}
