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

package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	mqttapi "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service"
	"github.com/hatworks/iohat/pkg/service/util"
)

var maskAny = errors.WithStack

const (
	publishTimeout = time.Millisecond * 200
	commandTimeout = time.Second * 5
)

// Service bridges the board API onto an MQTT broker.
type Service interface {
	// Run the service until the given context is canceled.
	Run(ctx context.Context) error
}

type Config struct {
	// Host of the MQTT broker. Empty disables the service.
	Host        string
	Port        int
	UserName    string
	Password    string
	ClientID    string
	TopicPrefix string
}

type Dependencies struct {
	Logger zerolog.Logger
	API    service.API
}

type mqttService struct {
	Config
	Dependencies

	mutex  sync.Mutex
	client mqttapi.Client
}

// NewService creates an MQTT service for the given broker configuration.
func NewService(conf Config, deps Dependencies) (Service, error) {
	deps.Logger = deps.Logger.With().Str("component", "mqtt").Logger()
	conf.TopicPrefix = strings.TrimSuffix(conf.TopicPrefix, "/")
	if conf.TopicPrefix == "" {
		conf.TopicPrefix = "iohat"
	}
	s := &mqttService{
		Config:       conf,
		Dependencies: deps,
	}
	// Forward actual state changes to the broker whenever connected
	if err := deps.API.SubscribeActuals(s.onActual); err != nil {
		return nil, maskAny(err)
	}
	return s, nil
}

// Run the service until the given context is canceled.
func (s *mqttService) Run(ctx context.Context) error {
	log := s.Logger
	if s.Host == "" {
		log.Info().Msg("No MQTT broker configured; MQTT disabled")
		<-ctx.Done()
		return nil
	}
	return util.UntilCanceled(ctx, log, "mqtt session", func() error {
		return s.runSession(ctx)
	})
}

// runSession connects to the broker and serves commands until the
// connection is lost or the given context is canceled.
func (s *mqttService) runSession(ctx context.Context) error {
	log := s.Logger
	brokerAddress := net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
	connLost := make(chan error, 1)

	// Prepare MQTT client options
	opts := mqttapi.NewClientOptions().
		AddBroker("tcp://" + brokerAddress).
		SetClientID(s.ClientID)
	if s.UserName != "" {
		opts.SetUsername(s.UserName)
		opts.SetPassword(s.Password)
	}
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetOrderMatters(false)
	opts.SetConnectionLostHandler(func(c mqttapi.Client, err error) {
		select {
		case connLost <- err:
		default:
		}
	})
	opts.SetDefaultPublishHandler(func(c mqttapi.Client, m mqttapi.Message) {
		// Ignore messages when no subscription match
	})

	// Connect client
	client := mqttapi.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to mqtt: %w", token.Error())
	}
	defer client.Disconnect(250)
	s.setClient(client)
	defer s.setClient(nil)

	subscriptions := map[string]mqttapi.MessageHandler{
		s.TopicPrefix + "/relay/+/command":  s.onSwitchCommand(model.ObjectKindRelay),
		s.TopicPrefix + "/output/+/command": s.onSwitchCommand(model.ObjectKindOutput),
		s.TopicPrefix + "/power/command":    s.onPowerCommand,
		s.TopicPrefix + "/analog/read":      s.onAnalogReadRequest,
	}
	for topic, handler := range subscriptions {
		if token := client.Subscribe(topic, 0, handler); token.Wait() && token.Error() != nil {
			return fmt.Errorf("failed to subscribe to '%s': %w", topic, token.Error())
		}
	}
	log.Info().Str("broker", brokerAddress).Msg("Connected to MQTT broker")

	select {
	case <-ctx.Done():
		return nil
	case err := <-connLost:
		return fmt.Errorf("connection to mqtt lost: %w", err)
	}
}

// onSwitchCommand returns a handler that switches the relay or output
// addressed by the topic.
func (s *mqttService) onSwitchCommand(kind model.ObjectKind) mqttapi.MessageHandler {
	return func(client mqttapi.Client, msg mqttapi.Message) {
		log := s.Logger.With().Str("topic", msg.Topic()).Logger()
		commandsTotal.WithLabelValues(string(kind)).Inc()
		index, err := indexFromTopic(msg.Topic())
		if err != nil {
			log.Warn().Err(err).Msg("Invalid command topic")
			return
		}
		value, err := parseBool(string(msg.Payload()))
		if err != nil {
			log.Warn().Err(err).Msg("Invalid command payload")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		switch kind {
		case model.ObjectKindRelay:
			err = s.API.SetRelay(ctx, index, value)
		case model.ObjectKindOutput:
			err = s.API.SetOutput(ctx, index, value)
		}
		if err != nil {
			log.Warn().Err(err).Msg("Command failed")
		}
	}
}

// onPowerCommand enables or disables the analog subsystem.
func (s *mqttService) onPowerCommand(client mqttapi.Client, msg mqttapi.Message) {
	log := s.Logger
	commandsTotal.WithLabelValues("power").Inc()
	value, err := parseBool(string(msg.Payload()))
	if err != nil {
		log.Warn().Err(err).Msg("Invalid power payload")
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := s.API.SetPower(ctx, value); err != nil {
		log.Warn().Err(err).Msg("SetPower failed")
	}
}

// onAnalogReadRequest performs a conversion on all channels and
// publishes the readings.
func (s *mqttService) onAnalogReadRequest(client mqttapi.Client, msg mqttapi.Message) {
	log := s.Logger
	commandsTotal.WithLabelValues("analog").Inc()
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	readings, err := s.API.ReadAnalogAll(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("ReadAnalogAll failed")
		return
	}
	for _, reading := range readings {
		topic := fmt.Sprintf("%s/analog/%d/state", s.TopicPrefix, reading.Channel)
		s.publishJSON(topic, reading)
	}
}

// onActual publishes the actual state of a digital board function.
func (s *mqttService) onActual(actual model.ObjectActual) {
	topic := fmt.Sprintf("%s/%s/%d/state", s.TopicPrefix, actual.Kind, actual.Index+1)
	s.publishJSON(topic, actual)
}

func (s *mqttService) publishJSON(topic string, msg interface{}) {
	client := s.getClient()
	if client == nil {
		// Not connected
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.Logger.Error().Err(err).Str("topic", topic).Msg("Failed to encode message")
		return
	}
	token := client.Publish(topic, 0, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		s.Logger.Error().Err(token.Error()).
			Str("topic", topic).
			Msg("failed to deliver MQTT message in time")
		return
	}
	publishedTotal.WithLabelValues(topic).Inc()
}

func (s *mqttService) setClient(client mqttapi.Client) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.client = client
}

func (s *mqttService) getClient() mqttapi.Client {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.client
}

// indexFromTopic parses the 1-based object number from a command topic
// like "iohat/relay/2/command" into a 0-based index.
func indexFromTopic(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return 0, fmt.Errorf("invalid topic '%s'", topic)
	}
	nr, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil {
		return 0, fmt.Errorf("invalid object number in topic '%s'", topic)
	}
	return nr - 1, nil
}

// parseBool parses a command payload into a bool.
func parseBool(str string) (bool, error) {
	switch strings.ToLower(str) {
	case "1", "t", "true", "on", "yes":
		return true, nil
	case "0", "f", "false", "off", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid bool value '%s'", str)
}
