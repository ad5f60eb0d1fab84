//    Copyright 2024 Hatworks Authors
//
//    Licensed under the Apache License, Version 2.0 (the "License");
//    you may not use this file except in compliance with the License.
//    You may obtain a copy of the License at
//
//        http://www.apache.org/licenses/LICENSE-2.0
//
//    Unless required by applicable law or agreed to in writing, software
//    distributed under the License is distributed on an "AS IS" BASIS,
//    WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//    See the License for the specific language governing permissions and
//    limitations under the License.

package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVirtualPins(t *testing.T) {
	br, err := NewVirtualBridge()
	require.NoError(t, err)

	out, err := br.Output(5, false, true)
	require.NoError(t, err)
	// Input on the same pin number observes the output value
	in, err := br.Input(5, false)
	require.NoError(t, err)

	value, err := in.Read()
	require.NoError(t, err)
	assert.True(t, value)

	require.NoError(t, out.Write(false))
	value, err = in.Read()
	require.NoError(t, err)
	assert.False(t, value)
}

func TestVirtualBusDetect(t *testing.T) {
	br, err := NewVirtualBridge()
	require.NoError(t, err)
	bus, err := br.I2CBus()
	require.NoError(t, err)
	defer bus.Close()

	assert.Equal(t, []byte{virtualADCAddress}, bus.DetectSlaveAddresses())
}

func TestVirtualBusUnknownAddress(t *testing.T) {
	ctx := context.Background()
	br, err := NewVirtualBridge()
	require.NoError(t, err)
	bus, err := br.I2CBus()
	require.NoError(t, err)
	defer bus.Close()

	err = bus.Execute(ctx, 0x20, func(ctx context.Context, dev I2CDevice) error {
		return nil
	})
	require.Error(t, err)
}

func TestVirtualADCConversion(t *testing.T) {
	ctx := context.Background()
	br, err := NewVirtualBridge()
	require.NoError(t, err)
	bus, err := br.I2CBus()
	require.NoError(t, err)
	defer bus.Close()

	for channel, expected := range virtualADCRaws {
		configWord := uint16(0x8383) | uint16(0x4000+channel*0x1000)
		err := bus.Execute(ctx, virtualADCAddress, func(ctx context.Context, dev I2CDevice) error {
			return dev.WriteDevice([]byte{0x01, uint8(configWord >> 8), uint8(configWord & 0xFF)})
		})
		require.NoError(t, err)

		var word uint16
		err = bus.Execute(ctx, virtualADCAddress, func(ctx context.Context, dev I2CDevice) error {
			if err := dev.WriteDevice([]byte{0x00}); err != nil {
				return err
			}
			var buf [2]byte
			if err := dev.ReadDevice(buf[:]); err != nil {
				return err
			}
			word = uint16(buf[0])<<8 | uint16(buf[1])
			return nil
		})
		require.NoError(t, err)
		// The converter left-aligns its 12-bit result
		assert.Equal(t, expected<<4, word, "channel %d", channel)
	}
}

func TestVirtualADCConfigReadsReady(t *testing.T) {
	ctx := context.Background()
	br, err := NewVirtualBridge()
	require.NoError(t, err)
	bus, err := br.I2CBus()
	require.NoError(t, err)
	defer bus.Close()

	err = bus.Execute(ctx, virtualADCAddress, func(ctx context.Context, dev I2CDevice) error {
		if err := dev.WriteDevice([]byte{0x01, 0xC3, 0x83}); err != nil {
			return err
		}
		if err := dev.WriteDevice([]byte{0x01}); err != nil {
			return err
		}
		var buf [2]byte
		if err := dev.ReadDevice(buf[:]); err != nil {
			return err
		}
		word := uint16(buf[0])<<8 | uint16(buf[1])
		// The conversion-busy flag reads as completed
		assert.Equal(t, uint16(0xC383), word)
		return nil
	})
	require.NoError(t, err)
}
