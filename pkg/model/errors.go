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

package model

import (
	"github.com/pkg/errors"
)

var (
	// ValidationError is the cause of every configuration violation.
	ValidationError = errors.New("validation failed")
	maskAny         = errors.WithStack
)

// IsValidation returns true when the cause of the given error is a
// configuration validation failure.
func IsValidation(err error) bool {
	return errors.Cause(err) == ValidationError
}

// violation describes a single configuration violation.
func violation(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// invalid creates a validation error with given message.
func invalid(format string, args ...interface{}) error {
	return errors.Wrapf(ValidationError, format, args...)
}
