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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBoardConfigIsValid(t *testing.T) {
	require.NoError(t, DefaultBoardConfig().Validate())
}

func TestBoardConfigValidation(t *testing.T) {
	board := DefaultBoardConfig()
	board.RelayPins = board.RelayPins[:2]
	err := board.Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))

	board = DefaultBoardConfig()
	delete(board.LightPins, LightAnalog2)
	err = board.Validate()
	require.Error(t, err)
	assert.True(t, IsInvalidArgument(err))
}

func TestAnalogLights(t *testing.T) {
	// Only the first 3 channels have an indicator light
	assert.Equal(t, []LightName{LightAnalog1, LightAnalog2, LightAnalog3}, AnalogLights())
}

func TestObjectLightNames(t *testing.T) {
	assert.Equal(t, LightRelay2, RelayLight(1))
	assert.Equal(t, LightInput1, InputLight(0))
	assert.Equal(t, LightOutput3, OutputLight(2))
}
