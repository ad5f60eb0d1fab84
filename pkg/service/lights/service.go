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

package lights

import (
	"context"
	"sync"

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service/bridge"
)

var maskAny = errors.WithStack

// Service drives the indicator lights on the board.
type Service interface {
	// Light returns the light with the given name.
	Light(name model.LightName) (Light, error)
	// Update flushes buffered light states to the hardware in one pass.
	Update(ctx context.Context) error
	// Close turns all lights off and flushes.
	Close(ctx context.Context) error
}

// Light is a single buffered indicator light.
// On & Off only record the desired state; Update on the service
// writes it to the pin.
type Light interface {
	On()
	Off()
	IsOn() bool
}

type Config struct {
	// GPIO pin per light name
	Pins map[model.LightName]int
}

type Dependencies struct {
	Log    zerolog.Logger
	Bridge bridge.API
}

type service struct {
	Config
	Dependencies

	lights map[model.LightName]*light
}

// NewService creates a lights service for the given pin assignment.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Log = deps.Log.With().Str("component", "lights").Logger()
	s := &service{
		Config:       conf,
		Dependencies: deps,
		lights:       make(map[model.LightName]*light),
	}
	for name, pinNr := range conf.Pins {
		activeLow := false
		initialValue := false
		pin, err := deps.Bridge.Output(pinNr, activeLow, initialValue)
		if err != nil {
			return nil, maskAny(err)
		}
		s.lights[name] = &light{name: name, pin: pin}
	}
	return s, nil
}

// Light returns the light with the given name.
func (s *service) Light(name model.LightName) (Light, error) {
	l, found := s.lights[name]
	if !found {
		return nil, model.InvalidArgument("unknown light '%s'", name)
	}
	return l, nil
}

// Update flushes buffered light states to the hardware in one pass.
func (s *service) Update(ctx context.Context) error {
	var ae aerr.AggregateError
	for _, l := range s.lights {
		if err := l.flush(); err != nil {
			s.Log.Warn().Err(err).Str("light", string(l.name)).Msg("Light flush failed")
			ae.Add(err)
		}
	}
	lightUpdatesTotal.Inc()
	return ae.AsError()
}

// Close turns all lights off and flushes.
func (s *service) Close(ctx context.Context) error {
	for _, l := range s.lights {
		l.Off()
	}
	return s.Update(ctx)
}

type light struct {
	mutex   sync.Mutex
	name    model.LightName
	pin     bridge.OutputPin
	desired bool
	dirty   bool
}

// On records that the light should be lit at the next Update.
func (l *light) On() {
	l.set(true)
}

// Off records that the light should be dark at the next Update.
func (l *light) Off() {
	l.set(false)
}

// IsOn returns the desired state of the light.
func (l *light) IsOn() bool {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return l.desired
}

func (l *light) set(on bool) {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	if l.desired != on {
		l.desired = on
		l.dirty = true
	}
}

// flush writes the desired state to the pin when it changed.
func (l *light) flush() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if !l.dirty {
		return nil
	}
	if err := l.pin.Write(l.desired); err != nil {
		return maskAny(err)
	}
	l.dirty = false
	return nil
}
