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

package devices

import (
	"github.com/hatworks/iohat/pkg/metrics"
)

const (
	subSystem = "devices"
)

var (
	// Total number of successful conversions per channel
	conversionsTotal = metrics.MustRegisterCounterVec(subSystem,
		"adc_conversions_total",
		"Total number of successful conversions per channel",
		"channel")
	// Total number of failed conversions per channel
	conversionErrorsTotal = metrics.MustRegisterCounterVec(subSystem,
		"adc_conversion_errors_total",
		"Total number of failed conversions per channel",
		"channel")
	// 1 when the ADC owns an open bus, 0 otherwise
	adcEnabledGauge = metrics.MustRegisterGauge(subSystem,
		"adc_enabled",
		"1 when the ADC owns an open bus, 0 otherwise")
)
