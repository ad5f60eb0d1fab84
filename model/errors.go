// Copyright 2024 Hatworks Authors
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

package model

import (
	"github.com/pkg/errors"
)

var (
	// StateErr is the cause of errors returned by operations that
	// require the subsystem to be in another lifecycle state.
	StateErr = errors.New("invalid state")
	// IsStateError returns true if the given error is caused by a StateErr.
	IsStateError = isErrorFunc(StateErr)
	// InvalidArgumentErr is the cause of errors returned on invalid input.
	InvalidArgumentErr = errors.New("invalid argument")
	// IsInvalidArgument returns true if the given error is caused by a InvalidArgumentErr.
	IsInvalidArgument = isErrorFunc(InvalidArgumentErr)

	maskAny = errors.WithStack
)

// StateError creates an error caused by StateErr with given formatted message.
func StateError(format string, args ...interface{}) error {
	return errors.Wrapf(StateErr, format, args...)
}

// InvalidArgument creates an error caused by InvalidArgumentErr with given formatted message.
func InvalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(InvalidArgumentErr, format, args...)
}

func isErrorFunc(typeOfError error) func(err error) bool {
	return func(err error) bool {
		return err == typeOfError || errors.Cause(err) == typeOfError
	}
}
