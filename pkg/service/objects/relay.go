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

package objects

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service/bridge"
	"github.com/hatworks/iohat/pkg/service/lights"
)

var _ Relay = &relay{}

type relay struct {
	mutex   sync.Mutex
	log     zerolog.Logger
	index   int
	pin     bridge.OutputPin
	light   lights.Light
	lights  lights.Service
	publish func(model.ObjectActual)
	on      bool
}

// newRelay creates a relay object on the given pin with its indicator light.
func newRelay(log zerolog.Logger, index int, pin bridge.OutputPin, lightSvc lights.Service, publish func(model.ObjectActual)) (Relay, error) {
	light, err := lightSvc.Light(model.RelayLight(index))
	if err != nil {
		return nil, err
	}
	return &relay{
		log:     log,
		index:   index,
		pin:     pin,
		light:   light,
		lights:  lightSvc,
		publish: publish,
	}, nil
}

// Name returns the name of the object.
func (o *relay) Name() string {
	return fmt.Sprintf("relay-%d", o.index+1)
}

// Configure releases the coil and darkens the light.
func (o *relay) Configure(ctx context.Context) error {
	return o.Set(ctx, false)
}

// Close releases the coil.
func (o *relay) Close(ctx context.Context) error {
	return o.Set(ctx, false)
}

// Set energizes (true) or releases (false) the relay coil.
func (o *relay) Set(ctx context.Context, on bool) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if err := o.pin.Write(on); err != nil {
		return maskAny(err)
	}
	if on {
		o.light.On()
	} else {
		o.light.Off()
	}
	if err := o.lights.Update(ctx); err != nil {
		o.log.Warn().Err(err).Msg("Failed to update relay light")
	}
	changed := o.on != on
	o.on = on
	relaySwitchesTotal.WithLabelValues(o.Name()).Inc()
	if changed {
		o.publish(model.ObjectActual{
			Kind:  model.ObjectKindRelay,
			Index: o.index,
			Value: on,
			Time:  time.Now(),
		})
	}
	return nil
}

// IsOn returns the last commanded state.
func (o *relay) IsOn() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.on
}
