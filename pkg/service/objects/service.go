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

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/mattn/go-pubsub"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service/bridge"
	"github.com/hatworks/iohat/pkg/service/lights"
)

var maskAny = errors.WithStack

// Service gives access to the logical functions on the board.
type Service interface {
	// Relay returns the relay with given index (0...).
	Relay(index int) (Relay, error)
	// Output returns the digital output with given index (0...).
	Output(index int) (DigitalOutput, error)
	// Input returns the digital input with given index (0...).
	Input(index int) (DigitalInput, error)
	// Relays returns all relays, in board order.
	Relays() []Relay
	// Outputs returns all digital outputs, in board order.
	Outputs() []DigitalOutput
	// Inputs returns all digital inputs, in board order.
	Inputs() []DigitalInput

	// Configure puts all objects in their initial state.
	Configure(ctx context.Context) error
	// Close brings all objects back to a safe state.
	Close(ctx context.Context) error

	// SubscribeActuals registers a callback that is invoked on every
	// actual state change of a digital board function.
	SubscribeActuals(cb func(model.ObjectActual)) error
}

type Config struct {
	Board model.BoardConfig
}

type Dependencies struct {
	Log    zerolog.Logger
	Bridge bridge.API
	Lights lights.Service
}

type service struct {
	Config
	Dependencies

	relays  []Relay
	outputs []DigitalOutput
	inputs  []DigitalInput
	actuals *pubsub.PubSub
}

// NewService creates the objects of the given board layout.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Log = deps.Log.With().Str("component", "objects").Logger()
	if err := conf.Board.Validate(); err != nil {
		return nil, err
	}
	s := &service{
		Config:       conf,
		Dependencies: deps,
		actuals:      pubsub.New(),
	}
	publish := s.publishActual
	for index, pinNr := range conf.Board.RelayPins {
		pin, err := deps.Bridge.Output(pinNr, false, false)
		if err != nil {
			return nil, maskAny(err)
		}
		relay, err := newRelay(deps.Log, index, pin, deps.Lights, publish)
		if err != nil {
			return nil, err
		}
		s.relays = append(s.relays, relay)
	}
	for index, pinNr := range conf.Board.OutputPins {
		pin, err := deps.Bridge.Output(pinNr, false, false)
		if err != nil {
			return nil, maskAny(err)
		}
		output, err := newDigitalOutput(deps.Log, index, pin, deps.Lights, publish)
		if err != nil {
			return nil, err
		}
		s.outputs = append(s.outputs, output)
	}
	for index, pinNr := range conf.Board.InputPins {
		pin, err := deps.Bridge.Input(pinNr, false)
		if err != nil {
			return nil, maskAny(err)
		}
		input, err := newDigitalInput(deps.Log, index, pin, deps.Lights, publish)
		if err != nil {
			return nil, err
		}
		s.inputs = append(s.inputs, input)
	}
	return s, nil
}

// Relay returns the relay with given index (0...).
func (s *service) Relay(index int) (Relay, error) {
	if index < 0 || index >= len(s.relays) {
		return nil, model.InvalidArgument("Invalid relay: %d. Must be 0-%d.", index, len(s.relays)-1)
	}
	return s.relays[index], nil
}

// Output returns the digital output with given index (0...).
func (s *service) Output(index int) (DigitalOutput, error) {
	if index < 0 || index >= len(s.outputs) {
		return nil, model.InvalidArgument("Invalid output: %d. Must be 0-%d.", index, len(s.outputs)-1)
	}
	return s.outputs[index], nil
}

// Input returns the digital input with given index (0...).
func (s *service) Input(index int) (DigitalInput, error) {
	if index < 0 || index >= len(s.inputs) {
		return nil, model.InvalidArgument("Invalid input: %d. Must be 0-%d.", index, len(s.inputs)-1)
	}
	return s.inputs[index], nil
}

// Relays returns all relays, in board order.
func (s *service) Relays() []Relay {
	return s.relays
}

// Outputs returns all digital outputs, in board order.
func (s *service) Outputs() []DigitalOutput {
	return s.outputs
}

// Inputs returns all digital inputs, in board order.
func (s *service) Inputs() []DigitalInput {
	return s.inputs
}

// Configure puts all objects in their initial state.
func (s *service) Configure(ctx context.Context) error {
	for _, o := range s.objects() {
		if err := o.Configure(ctx); err != nil {
			return errors.Wrapf(err, "Configure of %s failed", o.Name())
		}
	}
	return nil
}

// Close brings all objects back to a safe state.
func (s *service) Close(ctx context.Context) error {
	var ae aerr.AggregateError
	for _, o := range s.objects() {
		if err := o.Close(ctx); err != nil {
			s.Log.Warn().Err(err).Str("object", o.Name()).Msg("Close failed")
			ae.Add(err)
		}
	}
	return ae.AsError()
}

// SubscribeActuals registers a callback that is invoked on every
// actual state change of a digital board function.
func (s *service) SubscribeActuals(cb func(model.ObjectActual)) error {
	return s.actuals.Sub(cb)
}

func (s *service) publishActual(actual model.ObjectActual) {
	actualsPublishedTotal.WithLabelValues(string(actual.Kind)).Inc()
	s.actuals.Pub(actual)
}

func (s *service) objects() []Object {
	var result []Object
	for _, o := range s.relays {
		result = append(result, o)
	}
	for _, o := range s.outputs {
		result = append(result, o)
	}
	for _, o := range s.inputs {
		result = append(result, o)
	}
	return result
}
