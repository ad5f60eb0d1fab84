// Copyright 2023 Hatworks Authors
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

package ui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatworks/iohat/model"
)

func TestViewClampsToWindowWidth(t *testing.T) {
	const width = 24
	root := NewRoot(nil, "test", width, 10)

	updated, _ := root.Update(statusMsg(model.BoardStatus{
		ProgramVersion: "test",
		HostID:         "a-rather-long-host-identifier",
		AnalogEnabled:  true,
		Analog: []model.AnalogReading{
			{Channel: 0, Raw: 2047, Voltage: 53.248, Percent: 100, Time: time.Now()},
		},
		Relays:  []bool{true, false, false},
		Inputs:  []bool{false, false, false},
		Outputs: []bool{false, false, false},
	}))
	root, ok := updated.(Root)
	require.True(t, ok)

	for _, line := range strings.Split(root.View(), "\n") {
		assert.LessOrEqual(t, lipgloss.Width(line), width, "line %q", line)
	}
}

func TestWindowResizeIsApplied(t *testing.T) {
	root := NewRoot(nil, "test", 80, 24)
	updated, _ := root.Update(tea.WindowSizeMsg{Width: 30, Height: 12})
	root, ok := updated.(Root)
	require.True(t, ok)

	assert.Equal(t, 30, root.width)
	assert.Equal(t, 12, root.height)
	assert.Equal(t, 30, root.channelTable.Width())
}

func TestChannelRows(t *testing.T) {
	rows := channelRows([]model.AnalogReading{
		{Channel: 0, Raw: 512, Voltage: 13.312, Percent: 25.012},
		{Channel: 1},
	})
	require.Len(t, rows, 2)
	assert.Equal(t, "512", rows[0][1])
	assert.Equal(t, "13.31 V", rows[0][2])
	assert.Equal(t, "25.0 %", rows[0][3])
	// A channel that never converted shows no timestamp
	assert.Equal(t, "never", rows[1][4])
}
