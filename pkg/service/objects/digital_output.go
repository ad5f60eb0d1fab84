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

var _ DigitalOutput = &digitalOutput{}

type digitalOutput struct {
	mutex   sync.Mutex
	log     zerolog.Logger
	index   int
	pin     bridge.OutputPin
	light   lights.Light
	lights  lights.Service
	publish func(model.ObjectActual)
	on      bool
}

// newDigitalOutput creates a sinking output object on the given pin
// with its indicator light.
func newDigitalOutput(log zerolog.Logger, index int, pin bridge.OutputPin, lightSvc lights.Service, publish func(model.ObjectActual)) (DigitalOutput, error) {
	light, err := lightSvc.Light(model.OutputLight(index))
	if err != nil {
		return nil, err
	}
	return &digitalOutput{
		log:     log,
		index:   index,
		pin:     pin,
		light:   light,
		lights:  lightSvc,
		publish: publish,
	}, nil
}

// Name returns the name of the object.
func (o *digitalOutput) Name() string {
	return fmt.Sprintf("output-%d", o.index+1)
}

// Configure turns the output off.
func (o *digitalOutput) Configure(ctx context.Context) error {
	return o.Set(ctx, false)
}

// Close turns the output off.
func (o *digitalOutput) Close(ctx context.Context) error {
	return o.Set(ctx, false)
}

// Set turns the output on or off.
func (o *digitalOutput) Set(ctx context.Context, on bool) error {
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
		o.log.Warn().Err(err).Msg("Failed to update output light")
	}
	changed := o.on != on
	o.on = on
	outputSwitchesTotal.WithLabelValues(o.Name()).Inc()
	if changed {
		o.publish(model.ObjectActual{
			Kind:  model.ObjectKindOutput,
			Index: o.index,
			Value: on,
			Time:  time.Now(),
		})
	}
	return nil
}

// IsOn returns the last commanded state.
func (o *digitalOutput) IsOn() bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	return o.on
}
