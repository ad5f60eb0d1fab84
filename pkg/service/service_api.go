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

package service

import (
	"context"
	"time"

	"github.com/hatworks/iohat/model"
)

// API contains the operations exposed to the HTTP, MQTT and SSH surfaces.
type API interface {
	// BoardStatus returns a snapshot of the entire board.
	// Analog values are the cached results of the last conversions.
	BoardStatus(ctx context.Context) (model.BoardStatus, error)
	// ReadAnalogAll performs a conversion on all analog channels and
	// returns the readings, in channel order.
	ReadAnalogAll(ctx context.Context) ([]model.AnalogReading, error)
	// ReadAnalog performs a conversion on the given analog channel (0-3).
	ReadAnalog(ctx context.Context, channel int) (model.AnalogReading, error)
	// SetRelay energizes or releases the relay with given index.
	SetRelay(ctx context.Context, index int, on bool) error
	// SetOutput turns the digital output with given index on or off.
	SetOutput(ctx context.Context, index int, on bool) error
	// GetInput reads the digital input with given index.
	GetInput(ctx context.Context, index int) (bool, error)
	// SetPower enables or disables the analog subsystem.
	SetPower(ctx context.Context, enabled bool) error
	// SubscribeActuals registers a callback that is invoked on every
	// actual state change of a digital board function.
	SubscribeActuals(cb func(model.ObjectActual)) error
}

// BoardStatus returns a snapshot of the entire board.
func (s *service) BoardStatus(ctx context.Context) (model.BoardStatus, error) {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return model.BoardStatus{}, err
	}
	defer s.hwSem.Release(1)
	boardStatusTotal.Inc()

	status := model.BoardStatus{
		ProgramVersion: s.ProgramVersion,
		HostID:         s.hostID,
		StartedAt:      s.startedAt,
		AnalogEnabled:  s.adc.Enabled(),
	}
	for _, ch := range s.adc.Channels() {
		status.Analog = append(status.Analog, readingOf(ch.Index(), ch.Raw(), ch.Voltage(), ch.Percent()))
	}
	for _, r := range s.objects.Relays() {
		status.Relays = append(status.Relays, r.IsOn())
	}
	for _, in := range s.objects.Inputs() {
		value, err := in.Get(ctx)
		if err != nil {
			return model.BoardStatus{}, err
		}
		status.Inputs = append(status.Inputs, value)
	}
	for _, out := range s.objects.Outputs() {
		status.Outputs = append(status.Outputs, out.IsOn())
	}
	return status, nil
}

// ReadAnalogAll performs a conversion on all analog channels and
// returns the readings, in channel order.
func (s *service) ReadAnalogAll(ctx context.Context) ([]model.AnalogReading, error) {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer s.hwSem.Release(1)
	readAnalogTotal.Inc()

	if err := s.adc.Read(ctx); err != nil {
		return nil, err
	}
	var result []model.AnalogReading
	for _, ch := range s.adc.Channels() {
		result = append(result, readingOf(ch.Index(), ch.Raw(), ch.Voltage(), ch.Percent()))
	}
	return result, nil
}

// ReadAnalog performs a conversion on the given analog channel (0-3).
func (s *service) ReadAnalog(ctx context.Context, channel int) (model.AnalogReading, error) {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return model.AnalogReading{}, err
	}
	defer s.hwSem.Release(1)
	readAnalogTotal.Inc()

	ch, err := s.adc.Channel(channel)
	if err != nil {
		return model.AnalogReading{}, err
	}
	if _, err := ch.Read(ctx); err != nil {
		return model.AnalogReading{}, err
	}
	return readingOf(ch.Index(), ch.Raw(), ch.Voltage(), ch.Percent()), nil
}

// SetRelay energizes or releases the relay with given index.
func (s *service) SetRelay(ctx context.Context, index int, on bool) error {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hwSem.Release(1)
	setRelayTotal.Inc()

	relay, err := s.objects.Relay(index)
	if err != nil {
		return err
	}
	return relay.Set(ctx, on)
}

// SetOutput turns the digital output with given index on or off.
func (s *service) SetOutput(ctx context.Context, index int, on bool) error {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hwSem.Release(1)
	setOutputTotal.Inc()

	output, err := s.objects.Output(index)
	if err != nil {
		return err
	}
	return output.Set(ctx, on)
}

// GetInput reads the digital input with given index.
func (s *service) GetInput(ctx context.Context, index int) (bool, error) {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer s.hwSem.Release(1)
	getInputTotal.Inc()

	input, err := s.objects.Input(index)
	if err != nil {
		return false, err
	}
	return input.Get(ctx)
}

// SetPower enables or disables the analog subsystem.
func (s *service) SetPower(ctx context.Context, enabled bool) error {
	if err := s.hwSem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.hwSem.Release(1)
	setPowerTotal.Inc()

	if enabled {
		return s.adc.Enable(ctx)
	}
	return s.adc.Disable(ctx)
}

// SubscribeActuals registers a callback that is invoked on every
// actual state change of a digital board function.
func (s *service) SubscribeActuals(cb func(model.ObjectActual)) error {
	return s.objects.SubscribeActuals(cb)
}

func readingOf(channel, raw int, voltage, percent float64) model.AnalogReading {
	return model.AnalogReading{
		Channel: channel,
		Raw:     raw,
		Voltage: voltage,
		Percent: percent,
		Time:    time.Now(),
	}
}
