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

package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexFromTopic(t *testing.T) {
	index, err := indexFromTopic("iohat/relay/1/command")
	require.NoError(t, err)
	assert.Equal(t, 0, index)

	index, err = indexFromTopic("some/prefix/output/3/command")
	require.NoError(t, err)
	assert.Equal(t, 2, index)

	_, err = indexFromTopic("iohat/relay/x/command")
	require.Error(t, err)
	_, err = indexFromTopic("command")
	require.Error(t, err)
}

func TestParseBool(t *testing.T) {
	for _, str := range []string{"1", "t", "true", "TRUE", "on", "ON", "yes"} {
		value, err := parseBool(str)
		require.NoError(t, err, str)
		assert.True(t, value, str)
	}
	for _, str := range []string{"0", "f", "false", "off", "OFF", "no"} {
		value, err := parseBool(str)
		require.NoError(t, err, str)
		assert.False(t, value, str)
	}
	_, err := parseBool("maybe")
	require.Error(t, err)
}
