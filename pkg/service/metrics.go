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
	"github.com/hatworks/iohat/pkg/metrics"
)

const (
	subSystem = "service"
)

var (
	// Total number of BoardStatus calls
	boardStatusTotal = metrics.MustRegisterCounter(subSystem,
		"api_board_status_total",
		"Total number of BoardStatus calls")
	// Total number of ReadAnalog & ReadAnalogAll calls
	readAnalogTotal = metrics.MustRegisterCounter(subSystem,
		"api_read_analog_total",
		"Total number of ReadAnalog & ReadAnalogAll calls")
	// Total number of SetRelay calls
	setRelayTotal = metrics.MustRegisterCounter(subSystem,
		"api_set_relay_total",
		"Total number of SetRelay calls")
	// Total number of SetOutput calls
	setOutputTotal = metrics.MustRegisterCounter(subSystem,
		"api_set_output_total",
		"Total number of SetOutput calls")
	// Total number of GetInput calls
	getInputTotal = metrics.MustRegisterCounter(subSystem,
		"api_get_input_total",
		"Total number of GetInput calls")
	// Total number of SetPower calls
	setPowerTotal = metrics.MustRegisterCounter(subSystem,
		"api_set_power_total",
		"Total number of SetPower calls")
)
