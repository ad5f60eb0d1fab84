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

package devices

import (
	"context"

	"github.com/hatworks/iohat/pkg/service/bridge"
)

// Device contains the API that is supported by all types of devices on the board.
type Device interface {
	// Enable acquires the hardware resources of the device.
	// Enabling an enabled device is a no-op.
	Enable(ctx context.Context) error
	// Disable releases the hardware resources and brings the device
	// back to a safe state. Disabling a disabled device is a no-op.
	Disable(ctx context.Context) error
	// Enabled returns true when the device holds its hardware resources.
	Enabled() bool
}

// ADC is the API of the analog to digital converter on the board.
type ADC interface {
	Device

	// Read performs a conversion on all channels, in channel order.
	// The first failing channel aborts the read.
	Read(ctx context.Context) error
	// ReadChannel performs a single conversion on the given channel (0-3)
	// and returns the 12-bit result. The cached channel state is not touched.
	ReadChannel(ctx context.Context, channel int) (int, error)
	// Channel returns the channel object with the given index (0-3).
	Channel(index int) (*AnalogChannel, error)
	// Channels returns all channel objects, in channel order.
	Channels() []*AnalogChannel
}

// I2CBusOpener provides access to the I2C bus of the board.
// It is implemented by bridge.API.
type I2CBusOpener interface {
	I2CBus() (bridge.I2CBus, error)
}
