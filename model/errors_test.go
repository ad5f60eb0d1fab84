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
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestStateError(t *testing.T) {
	err := StateError("not enabled")
	assert.True(t, IsStateError(err))
	assert.False(t, IsInvalidArgument(err))
	assert.Contains(t, err.Error(), "not enabled")

	// Predicate must look through wrapping
	wrapped := errors.Wrap(err, "enable failed")
	assert.True(t, IsStateError(wrapped))

	assert.True(t, IsStateError(StateErr))
	assert.False(t, IsStateError(nil))
	assert.False(t, IsStateError(errors.New("other")))
}

func TestInvalidArgument(t *testing.T) {
	err := InvalidArgument("Invalid channel: %d. Must be 0-3.", 4)
	assert.True(t, IsInvalidArgument(err))
	assert.False(t, IsStateError(err))
	assert.Equal(t, "Invalid channel: 4. Must be 0-3.: invalid argument", err.Error())

	wrapped := errors.Wrap(err, "read failed")
	assert.True(t, IsInvalidArgument(wrapped))
}
