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
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service/bridge"
	"github.com/hatworks/iohat/pkg/service/lights"
)

type fakeLight struct {
	on bool
}

func (l *fakeLight) On()        { l.on = true }
func (l *fakeLight) Off()       { l.on = false }
func (l *fakeLight) IsOn() bool { return l.on }

type fakeLights struct {
	lights    map[model.LightName]*fakeLight
	updates   int
	updateErr error
}

func newFakeLights() *fakeLights {
	return &fakeLights{lights: make(map[model.LightName]*fakeLight)}
}

func (s *fakeLights) Light(name model.LightName) (lights.Light, error) {
	l, found := s.lights[name]
	if !found {
		l = &fakeLight{}
		s.lights[name] = l
	}
	return l, nil
}

func (s *fakeLights) Update(ctx context.Context) error {
	s.updates++
	return s.updateErr
}

func (s *fakeLights) Close(ctx context.Context) error {
	return nil
}

// fakeDevice records all writes and answers reads from a scripted queue.
type fakeDevice struct {
	writes [][]byte
	reads  [][]byte
}

func (d *fakeDevice) ReadByteReg(reg uint8) (uint8, error) {
	return 0, fmt.Errorf("not supported")
}

func (d *fakeDevice) WriteByteReg(reg uint8, val uint8) error {
	return fmt.Errorf("not supported")
}

func (d *fakeDevice) WriteDevice(data []byte) error {
	d.writes = append(d.writes, append([]byte(nil), data...))
	return nil
}

func (d *fakeDevice) ReadDevice(data []byte) error {
	if len(d.reads) == 0 {
		return fmt.Errorf("no scripted read available")
	}
	copy(data, d.reads[0])
	d.reads = d.reads[1:]
	return nil
}

// scriptConversion queues a conversion register response.
func (d *fakeDevice) scriptConversion(word uint16) {
	d.reads = append(d.reads, []byte{uint8(word >> 8), uint8(word & 0xFF)})
}

type fakeBus struct {
	dev       *fakeDevice
	addresses []uint8
	closes    int
	closeErr  error
	execErr   error
}

func (b *fakeBus) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev bridge.I2CDevice) error) error {
	b.addresses = append(b.addresses, address)
	if b.execErr != nil {
		return b.execErr
	}
	return op(ctx, b.dev)
}

func (b *fakeBus) DetectSlaveAddresses() []byte {
	return []byte{ads1015Address}
}

func (b *fakeBus) Close() error {
	b.closes++
	return b.closeErr
}

type fakeBusOpener struct {
	bus     *fakeBus
	opens   int
	openErr error
}

func (o *fakeBusOpener) I2CBus() (bridge.I2CBus, error) {
	o.opens++
	if o.openErr != nil {
		return nil, o.openErr
	}
	return o.bus, nil
}

func newTestADC(t *testing.T) (ADC, *fakeBusOpener, *fakeLights) {
	t.Helper()
	opener := &fakeBusOpener{bus: &fakeBus{dev: &fakeDevice{}}}
	lightSvc := newFakeLights()
	adc, err := NewADS1015(zerolog.Nop(), opener, lightSvc)
	require.NoError(t, err)
	return adc, opener, lightSvc
}

func TestADCReadRequiresEnable(t *testing.T) {
	ctx := context.Background()
	adc, _, _ := newTestADC(t)

	err := adc.Read(ctx)
	require.Error(t, err)
	assert.True(t, model.IsStateError(err))

	_, err = adc.ReadChannel(ctx, 0)
	require.Error(t, err)
	assert.True(t, model.IsStateError(err))
}

func TestADCEnableIdempotent(t *testing.T) {
	ctx := context.Background()
	adc, opener, lightSvc := newTestADC(t)

	require.NoError(t, adc.Enable(ctx))
	require.NoError(t, adc.Enable(ctx))

	assert.Equal(t, 1, opener.opens, "second Enable must not open another bus")
	assert.Equal(t, 1, lightSvc.updates, "second Enable must not flush lights again")
	assert.True(t, adc.Enabled())
	for _, name := range model.AnalogLights() {
		l, err := lightSvc.Light(name)
		require.NoError(t, err)
		assert.True(t, l.IsOn(), "light %s should be on", name)
	}
}

func TestADCDisableIdempotent(t *testing.T) {
	ctx := context.Background()
	adc, opener, lightSvc := newTestADC(t)

	require.NoError(t, adc.Enable(ctx))
	require.NoError(t, adc.Disable(ctx))
	require.NoError(t, adc.Disable(ctx))

	assert.Equal(t, 1, opener.bus.closes, "second Disable must not close the bus again")
	assert.False(t, adc.Enabled())
	for _, name := range model.AnalogLights() {
		l, err := lightSvc.Light(name)
		require.NoError(t, err)
		assert.False(t, l.IsOn(), "light %s should be off", name)
	}
}

func TestADCDisableSuppressesErrors(t *testing.T) {
	ctx := context.Background()
	adc, opener, lightSvc := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))

	// Disable must complete even when both the bus close
	// and the light update fail.
	opener.bus.closeErr = fmt.Errorf("bus wedged")
	lightSvc.updateErr = fmt.Errorf("pin gone")
	require.NoError(t, adc.Disable(ctx))
	assert.False(t, adc.Enabled())
	assert.Equal(t, 1, opener.bus.closes)
	for _, name := range model.AnalogLights() {
		l, err := lightSvc.Light(name)
		require.NoError(t, err)
		assert.False(t, l.IsOn(), "light %s should be off", name)
	}

	// A later Enable must open a fresh bus
	opener.bus.closeErr = nil
	lightSvc.updateErr = nil
	require.NoError(t, adc.Enable(ctx))
	assert.Equal(t, 2, opener.opens)
	assert.True(t, adc.Enabled())
}

func TestADCDisableWithoutEnable(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)

	require.NoError(t, adc.Disable(ctx))
	assert.Zero(t, opener.bus.closes)
	assert.False(t, adc.Enabled())
}

func TestADCEnableBusOpenFailure(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	opener.openErr = fmt.Errorf("no such bus")

	err := adc.Enable(ctx)
	require.Error(t, err)
	assert.False(t, adc.Enabled())

	// A later Enable with a healthy bus must succeed
	opener.openErr = nil
	require.NoError(t, adc.Enable(ctx))
	assert.True(t, adc.Enabled())
}

func TestADCEnableLightFailure(t *testing.T) {
	ctx := context.Background()
	adc, opener, lightSvc := newTestADC(t)
	lightSvc.updateErr = fmt.Errorf("pin gone")

	err := adc.Enable(ctx)
	require.Error(t, err)
	assert.False(t, adc.Enabled(), "failed Enable must leave no partial state")
	assert.Equal(t, 1, opener.bus.closes, "failed Enable must release the bus")

	lightSvc.updateErr = nil
	require.NoError(t, adc.Enable(ctx))
	assert.Equal(t, 2, opener.opens)
	assert.True(t, adc.Enabled())
}

func TestADCInvalidChannel(t *testing.T) {
	ctx := context.Background()
	adc, _, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))

	for _, channel := range []int{-1, 4, 99} {
		_, err := adc.ReadChannel(ctx, channel)
		require.Error(t, err)
		assert.True(t, model.IsInvalidArgument(err))
	}
	_, err := adc.ReadChannel(ctx, 4)
	assert.ErrorContains(t, err, "Invalid channel: 4. Must be 0-3.")

	_, err = adc.Channel(4)
	require.Error(t, err)
	assert.True(t, model.IsInvalidArgument(err))
}

func TestADCChannelConfigWords(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))
	dev := opener.bus.dev

	expectedConfig := []uint16{0xC383, 0xD383, 0xE383, 0xF383}
	for channel := 0; channel < 4; channel++ {
		dev.writes = nil
		dev.scriptConversion(0x0000)
		_, err := adc.ReadChannel(ctx, channel)
		require.NoError(t, err)

		// One write selecting channel & starting the conversion,
		// one write selecting the conversion register.
		require.Len(t, dev.writes, 2)
		assert.Equal(t, []byte{
			ads1015RegConfig,
			uint8(expectedConfig[channel] >> 8),
			uint8(expectedConfig[channel] & 0xFF),
		}, dev.writes[0], "config word for channel %d", channel)
		assert.Equal(t, []byte{ads1015RegConversion}, dev.writes[1])
	}
}

func TestADCDecodeConversion(t *testing.T) {
	tests := []struct {
		word     uint16
		expected int
	}{
		{0x0000, 0},
		{0x0010, 1},
		{0x2000, 512},
		{0x4000, 1024},
		{0x7FF0, 2047},
		{0xFFF0, -1},
	}
	for _, test := range tests {
		assert.Equal(t, test.expected, decodeConversion(test.word), "word 0x%04X", test.word)
	}
}

func TestADCReadChannelResult(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))
	dev := opener.bus.dev

	dev.scriptConversion(0x4000)
	raw, err := adc.ReadChannel(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 1024, raw)

	// ReadChannel must not touch the channel cache
	ch, err := adc.Channel(2)
	require.NoError(t, err)
	assert.Zero(t, ch.Raw())
}

func TestADCReadAllChannels(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))
	dev := opener.bus.dev

	for _, word := range []uint16{0x1000, 0x2000, 0x4000, 0x7FF0} {
		dev.scriptConversion(word)
	}
	require.NoError(t, adc.Read(ctx))

	expected := []int{256, 512, 1024, 2047}
	for index, ch := range adc.Channels() {
		assert.Equal(t, expected[index], ch.Raw(), "channel %d", index)
	}
}

func TestADCChannelCacheKeptOnFailure(t *testing.T) {
	ctx := context.Background()
	adc, opener, _ := newTestADC(t)
	require.NoError(t, adc.Enable(ctx))
	dev := opener.bus.dev

	ch, err := adc.Channel(1)
	require.NoError(t, err)

	dev.scriptConversion(0x2000)
	raw, err := ch.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, 512, raw)

	opener.bus.execErr = fmt.Errorf("bus stuck")
	_, err = ch.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, 512, ch.Raw(), "failed read must keep the previous value")
}
