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

	aerr "github.com/ewoutp/go-aggregate-error"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/environment"
	"github.com/hatworks/iohat/pkg/service/bridge"
	"github.com/hatworks/iohat/pkg/service/devices"
	"github.com/hatworks/iohat/pkg/service/lights"
	"github.com/hatworks/iohat/pkg/service/objects"
)

// Service runs the board and exposes its functions.
type Service interface {
	// Run the board until the given context is canceled.
	Run(ctx context.Context) error
	API
}

type Config struct {
	ProgramVersion string
	// HostID overrides the machine derived host ID when not empty.
	HostID string
	Board  model.BoardConfig
}

type Dependencies struct {
	Logger zerolog.Logger
	Bridge bridge.API
}

type service struct {
	Config
	Dependencies

	hostID    string
	startedAt time.Time
	lights    lights.Service
	adc       devices.ADC
	objects   objects.Service
	// hwSem serializes all hardware access from the HTTP, MQTT and
	// SSH surfaces; the board layer itself is single threaded.
	hwSem *semaphore.Weighted
}

// NewService creates a Service instance and returns it.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "service").Logger()
	hostID := conf.HostID
	if hostID == "" {
		var err error
		hostID, err = environment.CreateHostID()
		if err != nil {
			return nil, errors.Wrap(err, "Failed to create host ID")
		}
	}
	deps.Logger = deps.Logger.With().Str("host-id", hostID).Logger()

	lightSvc, err := lights.NewService(lights.Config{
		Pins: conf.Board.LightPins,
	}, lights.Dependencies{
		Log:    deps.Logger,
		Bridge: deps.Bridge,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to initialize lights")
	}
	adc, err := devices.NewADS1015(deps.Logger, deps.Bridge, lightSvc)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to initialize ADC")
	}
	objSvc, err := objects.NewService(objects.Config{
		Board: conf.Board,
	}, objects.Dependencies{
		Log:    deps.Logger,
		Bridge: deps.Bridge,
		Lights: lightSvc,
	})
	if err != nil {
		return nil, errors.Wrap(err, "Failed to initialize objects")
	}

	return &service{
		Config:       conf,
		Dependencies: deps,
		hostID:       hostID,
		startedAt:    time.Now(),
		lights:       lightSvc,
		adc:          adc,
		objects:      objSvc,
		hwSem:        semaphore.NewWeighted(1),
	}, nil
}

// Run brings the board up, then waits for the given context to be
// canceled and tears the board down again.
func (s *service) Run(ctx context.Context) error {
	log := s.Logger

	// Bring up
	s.Bridge.BlinkGreenLED(time.Millisecond * 250)
	s.Bridge.SetRedLED(false)

	if light, err := s.lights.Light(model.LightPower); err == nil {
		light.On()
	}
	if err := s.lights.Update(ctx); err != nil {
		log.Warn().Err(err).Msg("Failed to light power light")
	}
	if err := s.adc.Enable(ctx); err != nil {
		s.Bridge.SetRedLED(true)
		return errors.Wrap(err, "Failed to enable ADC")
	}
	if err := s.objects.Configure(ctx); err != nil {
		s.Bridge.SetRedLED(true)
		return errors.Wrap(err, "Failed to configure objects")
	}
	s.Bridge.SetGreenLED(true)
	log.Info().Str("version", s.ProgramVersion).Msg("Board is ready")

	<-ctx.Done()

	// Tear down. Collect errors; teardown always runs to the end.
	log.Info().Msg("Closing board")
	teardownCtx := context.Background()
	var ae aerr.AggregateError
	s.adc.Disable(teardownCtx)
	if err := s.objects.Close(teardownCtx); err != nil {
		ae.Add(err)
	}
	if err := s.lights.Close(teardownCtx); err != nil {
		ae.Add(err)
	}
	if err := s.Bridge.Close(); err != nil {
		ae.Add(err)
	}
	if err := ae.AsError(); err != nil {
		log.Warn().Err(err).Msg("Board teardown finished with errors")
	}
	return nil
}
