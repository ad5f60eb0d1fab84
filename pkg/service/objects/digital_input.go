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

var _ DigitalInput = &digitalInput{}

type digitalInput struct {
	mutex   sync.Mutex
	log     zerolog.Logger
	index   int
	pin     bridge.InputPin
	light   lights.Light
	lights  lights.Service
	publish func(model.ObjectActual)
	last    bool
	read    bool
}

// newDigitalInput creates a buffered input object on the given pin
// with its indicator light.
func newDigitalInput(log zerolog.Logger, index int, pin bridge.InputPin, lightSvc lights.Service, publish func(model.ObjectActual)) (DigitalInput, error) {
	light, err := lightSvc.Light(model.InputLight(index))
	if err != nil {
		return nil, err
	}
	return &digitalInput{
		log:     log,
		index:   index,
		pin:     pin,
		light:   light,
		lights:  lightSvc,
		publish: publish,
	}, nil
}

// Name returns the name of the object.
func (o *digitalInput) Name() string {
	return fmt.Sprintf("input-%d", o.index+1)
}

// Configure darkens the indicator light.
func (o *digitalInput) Configure(ctx context.Context) error {
	o.light.Off()
	return o.lights.Update(ctx)
}

// Close darkens the indicator light.
func (o *digitalInput) Close(ctx context.Context) error {
	o.light.Off()
	return o.lights.Update(ctx)
}

// Get reads the current state of the input, mirrors it on the
// indicator light and publishes an actual on every edge.
func (o *digitalInput) Get(ctx context.Context) (bool, error) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	value, err := o.pin.Read()
	if err != nil {
		return false, maskAny(err)
	}
	if value {
		o.light.On()
	} else {
		o.light.Off()
	}
	if err := o.lights.Update(ctx); err != nil {
		o.log.Warn().Err(err).Msg("Failed to update input light")
	}
	inputReadsTotal.WithLabelValues(o.Name()).Inc()
	if !o.read || o.last != value {
		o.publish(model.ObjectActual{
			Kind:  model.ObjectKindInput,
			Index: o.index,
			Value: value,
			Time:  time.Now(),
		})
	}
	o.last = value
	o.read = true
	return value, nil
}
