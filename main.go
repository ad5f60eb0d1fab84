//    Copyright 2023 Hatworks Authors
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

package main

import (
	"context"
	"fmt"
	"os"

	terminate "github.com/pulcy/go-terminate"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/environment"
	"github.com/hatworks/iohat/pkg/logging"
	"github.com/hatworks/iohat/pkg/server"
	"github.com/hatworks/iohat/pkg/service"
	"github.com/hatworks/iohat/pkg/service/bridge"
	"github.com/hatworks/iohat/pkg/service/mqtt"
	"github.com/hatworks/iohat/pkg/ui"
)

const (
	projectName     = "IO Hat Worker"
	defaultHTTPPort = 7180
	defaultSSHPort  = 7182
)

var (
	projectVersion = "dev"
	projectBuild   = "dev"
)

func main() {
	var levelFlag string
	var bridgeType string
	var serverHost string
	var httpPort int
	var sshPort int
	var logFile string
	var mqttConfig mqtt.Config

	pflag.StringVarP(&levelFlag, "level", "l", "debug", "Set log level")
	pflag.StringVarP(&bridgeType, "bridge", "b", "auto", "Type of bridge to use (auto|rpi|virtual)")
	pflag.StringVar(&serverHost, "host", "0.0.0.0", "Host address the servers will listen on")
	pflag.IntVar(&httpPort, "http-port", defaultHTTPPort, "Port the HTTP server will listen on")
	pflag.IntVar(&sshPort, "ssh-port", defaultSSHPort, "Port the SSH server will listen on")
	pflag.StringVar(&logFile, "log-file", "", "File to also write logs to")
	pflag.StringVar(&mqttConfig.Host, "mqtt-host", "", "Host of the MQTT broker (empty disables MQTT)")
	pflag.IntVar(&mqttConfig.Port, "mqtt-port", 1883, "Port of the MQTT broker")
	pflag.StringVar(&mqttConfig.UserName, "mqtt-username", "", "Username for the MQTT broker")
	pflag.StringVar(&mqttConfig.Password, "mqtt-password", "", "Password for the MQTT broker")
	pflag.StringVar(&mqttConfig.ClientID, "mqtt-client-id", "iohat", "Client ID used to connect to the MQTT broker")
	pflag.StringVar(&mqttConfig.TopicPrefix, "mqtt-topic-prefix", "iohat", "Prefix for all MQTT topics")
	pflag.Parse()

	logLevel, err := zerolog.ParseLevel(levelFlag)
	if err != nil {
		Exitf("Invalid log level '%s': %v\n", levelFlag, err)
	}
	logWriter := logging.NewMultiWriter(zerolog.ConsoleWriter{Out: os.Stderr})
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			Exitf("Failed to open log file '%s': %v\n", logFile, err)
		}
		defer f.Close()
		logWriter = logging.NewMultiWriter(zerolog.ConsoleWriter{Out: os.Stderr}, f)
	}
	logger := zerolog.New(logWriter).Level(logLevel).With().Timestamp().Logger()

	if bridgeType == "auto" {
		bridgeType = environment.AutoDetectBridgeType(logger)
	}
	var br bridge.API
	switch bridgeType {
	case "rpi":
		br, err = bridge.NewRaspberryPiBridge()
		if err != nil {
			Exitf("Failed to initialize Raspberry Pi Bridge: %v\n", err)
		}
	case "virtual":
		br, err = bridge.NewVirtualBridge()
		if err != nil {
			Exitf("Failed to initialize Virtual Bridge: %v\n", err)
		}
	default:
		Exitf("Unknown bridge type '%s' (auto|rpi|virtual)\n", bridgeType)
	}

	svc, err := service.NewService(service.Config{
		ProgramVersion: projectVersion,
		Board:          model.DefaultBoardConfig(),
	}, service.Dependencies{
		Logger: logger,
		Bridge: br,
	})
	if err != nil {
		Exitf("Failed to initialize Service: %v\n", err)
	}

	mqttSvc, err := mqtt.NewService(mqttConfig, mqtt.Dependencies{
		Logger: logger,
		API:    svc,
	})
	if err != nil {
		Exitf("Failed to initialize MQTT Service: %v\n", err)
	}

	httpServer, err := server.New(server.Config{
		Host:     serverHost,
		HTTPPort: httpPort,
		SSHPort:  sshPort,
	}, logger, ui.NewFactory(svc, projectVersion), svc)
	if err != nil {
		Exitf("Failed to initialize Server: %v\n", err)
	}

	// Prepare to shutdown in a controlled manor
	ctx, cancel := context.WithCancel(context.Background())
	t := terminate.NewTerminator(func(template string, args ...interface{}) {
		logger.Info().Msgf(template, args...)
	}, cancel)
	go t.ListenSignals()

	fmt.Printf("Starting %s (version %s build %s)\n", projectName, projectVersion, projectBuild)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return svc.Run(ctx) })
	g.Go(func() error { return mqttSvc.Run(ctx) })
	g.Go(func() error { return httpServer.Run(ctx) })
	if err := g.Wait(); err != nil {
		Exitf("Service run failed: %#v", err)
	}
}

// Print the given error message and exit with code 1
func Exitf(message string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, message, args...)
	os.Exit(1)
}
