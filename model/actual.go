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

package model

import "time"

// AnalogReading is the result of a single conversion on one analog channel.
type AnalogReading struct {
	// Channel index (0-3)
	Channel int `json:"channel"`
	// Raw 12-bit conversion result
	Raw int `json:"raw"`
	// Voltage at the board terminal, corrected for the input divider
	Voltage float64 `json:"voltage"`
	// Raw value as percentage of full scale (not clamped)
	Percent float64 `json:"percent"`
	// Time the conversion was made
	Time time.Time `json:"time"`
}

// ObjectKind identifies a type of digital board function.
type ObjectKind string

const (
	ObjectKindRelay  ObjectKind = "relay"
	ObjectKindInput  ObjectKind = "input"
	ObjectKindOutput ObjectKind = "output"
)

// ObjectActual is the actual state of a digital board function.
type ObjectActual struct {
	Kind  ObjectKind `json:"kind"`
	Index int        `json:"index"`
	Value bool       `json:"value"`
	Time  time.Time  `json:"time"`
}

// BoardStatus is a snapshot of the entire board.
type BoardStatus struct {
	ProgramVersion string    `json:"program-version"`
	HostID         string    `json:"host-id"`
	StartedAt      time.Time `json:"started-at"`
	// True when the analog subsystem owns an open bus
	AnalogEnabled bool `json:"analog-enabled"`
	// Last cached reading per analog channel (no hardware access)
	Analog []AnalogReading `json:"analog"`
	// Relay states in relay order
	Relays []bool `json:"relays"`
	// Digital input states in input order
	Inputs []bool `json:"inputs"`
	// Digital output states in output order
	Outputs []bool `json:"outputs"`
}
