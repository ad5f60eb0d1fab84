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

package devices

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalogChannelIndex(t *testing.T) {
	adc, _, _ := newTestADC(t)
	for index, ch := range adc.Channels() {
		assert.Equal(t, index, ch.Index())
	}
}

func TestAnalogChannelInitialState(t *testing.T) {
	adc, _, _ := newTestADC(t)
	ch, err := adc.Channel(0)
	require.NoError(t, err)

	assert.Zero(t, ch.Raw())
	assert.Zero(t, ch.Voltage())
	assert.Zero(t, ch.Percent())
}

func TestAnalogChannelDerivedValues(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))
	dev := opener.bus.dev

	ch, err := adc.Channel(0)
	require.NoError(t, err)

	for _, raw := range []int{0, 1, 100, 512, 1024, 2000, 2047} {
		dev.scriptConversion(uint16(raw) << 4)
		got, err := ch.Read(ctx)
		require.NoError(t, err)
		require.Equal(t, raw, got)

		expectedVoltage := (float64(raw) / 2047.0) * 4.096 * 13.0
		expectedPercent := (float64(raw) / 2047.0) * 100.0
		assert.Equal(t, expectedVoltage, ch.Voltage(), "voltage for raw %d", raw)
		assert.Equal(t, expectedPercent, ch.Percent(), "percent for raw %d", raw)
	}
}

func TestAnalogChannelFullScale(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))
	dev := opener.bus.dev

	ch, err := adc.Channel(3)
	require.NoError(t, err)

	dev.scriptConversion(0x7FF0)
	_, err = ch.Read(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2047, ch.Raw())
	assert.InDelta(t, 53.248, ch.Voltage(), 0.0001)
	assert.Equal(t, 100.0, ch.Percent())
}
