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
	"github.com/hatworks/iohat/pkg/metrics"
)

const (
	subSystem = "mqtt"
)

var (
	commandsTotal = metrics.MustRegisterCounterVec(subSystem,
		"commands_total",
		"number of commands received from the broker",
		"kind")
	publishedTotal = metrics.MustRegisterCounterVec(subSystem,
		"published_total",
		"number of messages published to the broker",
		"topic")
)
