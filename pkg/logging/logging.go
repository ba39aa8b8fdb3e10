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

// Package logging configures the zerolog loggers of the illuminator.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// FormatAuto uses the console format on a terminal and JSON otherwise.
	FormatAuto = "auto"
	// FormatConsole writes human readable lines.
	FormatConsole = "console"
	// FormatJSON writes a JSON object per line.
	FormatJSON = "json"
)

// Config of the root logger.
type Config struct {
	Level  string
	Format string
}

// New creates a root logger writing to the given output.
func New(cfg Config, out io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return zerolog.Nop(), errors.Wrapf(err, "invalid log level '%s'", cfg.Level)
	}
	format := strings.ToLower(cfg.Format)
	switch format {
	case "", FormatAuto:
		format = FormatJSON
		if IsTerminal(out) {
			format = FormatConsole
		}
	case FormatConsole, FormatJSON:
	default:
		return zerolog.Nop(), errors.Errorf("invalid log format '%s'", cfg.Format)
	}
	if format == FormatConsole {
		out = zerolog.ConsoleWriter{Out: out}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger(), nil
}

// IsTerminal returns true when w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
