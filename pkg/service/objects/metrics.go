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
	"github.com/hatworks/iohat/pkg/metrics"
)

const (
	subSystem = "objects"
)

var (
	// Total number of relay switch commands per relay
	relaySwitchesTotal = metrics.MustRegisterCounterVec(subSystem,
		"relay_switches_total",
		"Total number of relay switch commands per relay",
		"name")
	// Total number of output switch commands per output
	outputSwitchesTotal = metrics.MustRegisterCounterVec(subSystem,
		"output_switches_total",
		"Total number of output switch commands per output",
		"name")
	// Total number of input reads per input
	inputReadsTotal = metrics.MustRegisterCounterVec(subSystem,
		"input_reads_total",
		"Total number of input reads per input",
		"name")
	// Total number of actual state changes published per kind
	actualsPublishedTotal = metrics.MustRegisterCounterVec(subSystem,
		"actuals_published_total",
		"Total number of actual state changes published per kind",
		"kind")
)
