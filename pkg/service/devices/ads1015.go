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
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service/bridge"
	"github.com/hatworks/iohat/pkg/service/lights"
)

const (
	// Fixed 7-bit address of the ADC on the board
	ads1015Address = 0x48

	// Registry addresses
	ads1015RegConversion = 0x00
	ads1015RegConfig     = 0x01
)

const (
	// Config mode flags
	ADS1X15_REG_CONFIG_OS_SINGLE = (0x8000) ///< Write: Set to start a single-conversion

	ADS1X15_REG_CONFIG_MUX_SINGLE_0 = (0x4000) ///< Single-ended AIN0
	ADS1X15_REG_CONFIG_MUX_SINGLE_1 = (0x5000) ///< Single-ended AIN1
	ADS1X15_REG_CONFIG_MUX_SINGLE_2 = (0x6000) ///< Single-ended AIN2
	ADS1X15_REG_CONFIG_MUX_SINGLE_3 = (0x7000) ///< Single-ended AIN3

	ADS1X15_REG_CONFIG_PGA_4_096V = (0x0200) ///< +/-4.096V range = Gain 1

	ADS1X15_REG_CONFIG_MODE_SINGLE = (0x0100) ///< Power-down single-shot mode (default)

	ADS1X15_REG_CONFIG_CMODE_TRAD   = (0x0000) ///< Traditional comparator with hysteresis (default)
	ADS1X15_REG_CONFIG_CPOL_ACTVLOW = (0x0000) ///< ALERT/RDY pin is low when active (default)
	ADS1X15_REG_CONFIG_CLAT_NONLAT  = (0x0000) ///< Non-latching comparator (default)
	ADS1X15_REG_CONFIG_CQUE_NONE    = (0x0003) ///< Disable the comparator and put ALERT/RDY in high state (default)
)

const (
	// Data rates
	RATE_ADS1015_128SPS  = (0x0000) ///< 128 samples per second
	RATE_ADS1015_250SPS  = (0x0020) ///< 250 samples per second
	RATE_ADS1015_490SPS  = (0x0040) ///< 490 samples per second
	RATE_ADS1015_920SPS  = (0x0060) ///< 920 samples per second
	RATE_ADS1015_1600SPS = (0x0080) ///< 1600 samples per second (default)
	RATE_ADS1015_2400SPS = (0x00A0) ///< 2400 samples per second
	RATE_ADS1015_3300SPS = (0x00C0) ///< 3300 samples per second
)

var MUX_BY_CHANNEL = []uint16{
	ADS1X15_REG_CONFIG_MUX_SINGLE_0, ///< Single-ended AIN0
	ADS1X15_REG_CONFIG_MUX_SINGLE_1, ///< Single-ended AIN1
	ADS1X15_REG_CONFIG_MUX_SINGLE_2, ///< Single-ended AIN2
	ADS1X15_REG_CONFIG_MUX_SINGLE_3, ///< Single-ended AIN3
} ///< MUX config by channel

// Minimum time between starting a single-shot conversion and reading
// its result. The converter needs ~0.625ms at 1600SPS; 2ms leaves margin.
const ads1015ConversionDelay = time.Millisecond * 2

type ads1015 struct {
	mutex     sync.Mutex
	log       zerolog.Logger
	busOpener I2CBusOpener
	lights    lights.Service

	// bus is non-nil iff enabled
	bus     bridge.I2CBus
	enabled bool
	address byte

	channels     []*AnalogChannel
	analogLights []lights.Light
}

// NewADS1015 creates the driver for the ADC on the board.
// The 4 channel objects are created here and live as long as the driver;
// Enable & Disable only acquire and release the bus.
func NewADS1015(log zerolog.Logger, busOpener I2CBusOpener, lightSvc lights.Service) (ADC, error) {
	d := &ads1015{
		log:       log.With().Str("component", "ads1015").Logger(),
		busOpener: busOpener,
		lights:    lightSvc,
		address:   ads1015Address,
	}
	for index := 0; index < 4; index++ {
		d.channels = append(d.channels, &AnalogChannel{index: index, adc: d})
	}
	for _, name := range model.AnalogLights() {
		l, err := lightSvc.Light(name)
		if err != nil {
			return nil, err
		}
		d.analogLights = append(d.analogLights, l)
	}
	return d, nil
}

// Enable opens the bus and turns the analog indicator lights on.
func (d *ads1015) Enable(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.enabled {
		return nil
	}
	bus, err := d.busOpener.I2CBus()
	if err != nil {
		return err
	}
	d.bus = bus
	d.enabled = true
	for _, l := range d.analogLights {
		l.On()
	}
	if err := d.lights.Update(ctx); err != nil {
		// Leave no partial state behind
		if closeErr := bus.Close(); closeErr != nil {
			d.log.Warn().Err(closeErr).Msg("Failed to close bus after light failure")
		}
		d.bus = nil
		d.enabled = false
		return err
	}
	adcEnabledGauge.Set(1)
	d.log.Debug().Msg("ADC enabled")
	return nil
}

// Disable closes the bus and turns the analog indicator lights off.
// Failures are logged, never returned, so Disable is safe on teardown paths.
func (d *ads1015) Disable(ctx context.Context) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.enabled {
		return nil
	}
	if err := d.bus.Close(); err != nil {
		d.log.Warn().Err(err).Msg("Failed to close bus")
	}
	d.bus = nil
	d.enabled = false
	for _, l := range d.analogLights {
		l.Off()
	}
	if err := d.lights.Update(ctx); err != nil {
		d.log.Warn().Err(err).Msg("Failed to update lights")
	}
	adcEnabledGauge.Set(0)
	d.log.Debug().Msg("ADC disabled")
	return nil
}

// Enabled returns true when the driver owns an open bus.
func (d *ads1015) Enabled() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return d.enabled
}

// Read performs a conversion on all channels, in channel order.
func (d *ads1015) Read(ctx context.Context) error {
	if !d.Enabled() {
		return model.StateError("not enabled")
	}
	for _, ch := range d.channels {
		if _, err := ch.Read(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ReadChannel performs a single conversion on the given channel (0-3)
// and returns the 12-bit result.
func (d *ads1015) ReadChannel(ctx context.Context, channel int) (int, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if !d.enabled || d.bus == nil {
		return 0, model.StateError("not enabled")
	}
	if channel < 0 || channel > 3 {
		return 0, model.InvalidArgument("Invalid channel: %d. Must be 0-3.", channel)
	}

	// Select channel and start a single conversion
	configBits := singleShotConfigBits(channel)
	if err := d.writeWordReg(ctx, ads1015RegConfig, configBits); err != nil {
		conversionErrorsTotal.WithLabelValues(strconv.Itoa(channel)).Inc()
		return 0, err
	}

	// The conversion register holds stale data until the converter is done
	time.Sleep(ads1015ConversionDelay)

	// Read conversion result
	result, err := d.readWordReg(ctx, ads1015RegConversion)
	if err != nil {
		conversionErrorsTotal.WithLabelValues(strconv.Itoa(channel)).Inc()
		return 0, err
	}
	conversionsTotal.WithLabelValues(strconv.Itoa(channel)).Inc()
	return decodeConversion(result), nil
}

// Channel returns the channel object with the given index (0-3).
func (d *ads1015) Channel(index int) (*AnalogChannel, error) {
	if index < 0 || index > 3 {
		return nil, model.InvalidArgument("Invalid channel: %d. Must be 0-3.", index)
	}
	return d.channels[index], nil
}

// Channels returns all channel objects, in channel order.
func (d *ads1015) Channels() []*AnalogChannel {
	return d.channels
}

// singleShotConfigBits creates the bits for the Config registry for a
// single-shot conversion on the given channel (0-3).
func singleShotConfigBits(channel int) uint16 {
	return ADS1X15_REG_CONFIG_CQUE_NONE |
		ADS1X15_REG_CONFIG_CLAT_NONLAT |
		ADS1X15_REG_CONFIG_CPOL_ACTVLOW |
		ADS1X15_REG_CONFIG_CMODE_TRAD |
		RATE_ADS1015_1600SPS |
		ADS1X15_REG_CONFIG_MODE_SINGLE |
		ADS1X15_REG_CONFIG_PGA_4_096V |
		ADS1X15_REG_CONFIG_OS_SINGLE |
		MUX_BY_CHANNEL[channel]
}

// decodeConversion turns a 16-bit conversion register value into the
// 12-bit result. The converter left-aligns its result, so we shift out
// the 4 reserved bits; the shift is arithmetic to preserve the sign bit.
func decodeConversion(word uint16) int {
	return int(int16(word) >> 4)
}

// read a 16-bit register
func (d *ads1015) readWordReg(ctx context.Context, reg uint8) (uint16, error) {
	var result uint16
	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		var buf [3]uint8
		buf[0] = reg
		if err := dev.WriteDevice(buf[:1]); err != nil {
			return err
		}

		if err := dev.ReadDevice(buf[1:]); err != nil {
			return err
		}
		// The converter transfers MSB first, then LSB
		result = (uint16(buf[1]) << 8) | uint16(buf[2])
		return nil
	}); err != nil {
		return 0, err
	}
	return result, nil
}

// write a 16-bit register value
func (d *ads1015) writeWordReg(ctx context.Context, reg uint8, value uint16) error {
	var buf [3]uint8
	// The converter transfers MSB first, then LSB
	buf[0] = reg
	buf[1] = uint8((value >> 8) & 0xFF)
	buf[2] = uint8(value & 0xFF)

	if err := d.bus.Execute(ctx, d.address, func(ctx context.Context, dev bridge.I2CDevice) error {
		return dev.WriteDevice(buf[:])
	}); err != nil {
		return err
	}
	return nil
}
