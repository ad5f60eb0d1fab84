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
	"sync"
)

const (
	// Full-scale raw value of the converter in single-ended use.
	// The result is 12 bits, but the top bit is a sign indicator,
	// so positive full scale is 2047.
	analogFullScaleRaw = 2047.0
	// Full-scale reference voltage for the configured gain range
	analogFullScaleVoltage = 4.096
	// The analog terminals sit behind a 120k over 10k divider,
	// so the terminal voltage is (120+10)/10 times the converter input.
	analogDividerRatio = 13.0
)

// AnalogChannel represents one of the 4 physical analog input lines.
// It caches the raw value of its last conversion; the derived quantities
// are computed from that cache, not from hardware.
type AnalogChannel struct {
	mutex   sync.Mutex
	index   int
	adc     *ads1015 // non-owning, only for bus delegation
	lastRaw int
}

// Index returns the channel index (0-3).
func (c *AnalogChannel) Index() int {
	return c.index
}

// Read performs a conversion on this channel, caches the raw result
// and returns it. On failure the previous cached value is kept.
func (c *AnalogChannel) Read(ctx context.Context) (int, error) {
	raw, err := c.adc.ReadChannel(ctx, c.index)
	if err != nil {
		return 0, err
	}
	c.mutex.Lock()
	c.lastRaw = raw
	c.mutex.Unlock()
	return raw, nil
}

// Raw returns the cached raw value of the last conversion (0 before any read).
func (c *AnalogChannel) Raw() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.lastRaw
}

// Voltage returns the voltage at the board terminal, derived from the
// cached raw value and corrected for the input divider.
func (c *AnalogChannel) Voltage() float64 {
	return (float64(c.Raw()) / analogFullScaleRaw) * analogFullScaleVoltage * analogDividerRatio
}

// Percent returns the cached raw value as percentage of full scale.
// The result is not clamped; noise above full scale yields > 100.
func (c *AnalogChannel) Percent() float64 {
	return (float64(c.Raw()) / analogFullScaleRaw) * 100.0
}
