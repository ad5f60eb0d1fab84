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

package bridge

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestI2CBusCloseReleasesProcessor(t *testing.T) {
	// Opening a bus starts its queue processor; cycling open/close
	// many times must not accumulate goroutines.
	baseline := runtime.NumGoroutine()

	for i := 0; i < 20; i++ {
		bus, err := NewI2CBus("/dev/i2c-test")
		require.NoError(t, err)
		require.NoError(t, bus.Close())
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= baseline+2
	}, time.Second, time.Millisecond*10, "queue processors must exit on Close")
}

func TestI2CBusExecuteAfterClose(t *testing.T) {
	ctx := context.Background()
	bus, err := NewI2CBus("/dev/i2c-test")
	require.NoError(t, err)
	require.NoError(t, bus.Close())

	err = bus.Execute(ctx, 0x48, func(ctx context.Context, dev I2CDevice) error {
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestI2CBusCloseIdempotent(t *testing.T) {
	bus, err := NewI2CBus("/dev/i2c-test")
	require.NoError(t, err)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())
}
