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

// LightName identifies one of the indicator lights on the board.
type LightName string

const (
	LightPower   LightName = "power"
	LightComms   LightName = "comms"
	LightAnalog1 LightName = "analog-1"
	LightAnalog2 LightName = "analog-2"
	LightAnalog3 LightName = "analog-3"
	LightInput1  LightName = "input-1"
	LightInput2  LightName = "input-2"
	LightInput3  LightName = "input-3"
	LightOutput1 LightName = "output-1"
	LightOutput2 LightName = "output-2"
	LightOutput3 LightName = "output-3"
	LightRelay1  LightName = "relay-1"
	LightRelay2  LightName = "relay-2"
	LightRelay3  LightName = "relay-3"
)

// AnalogLights returns the "analog active" light group.
// Analog channel 4 has no indicator light on the board.
func AnalogLights() []LightName {
	return []LightName{LightAnalog1, LightAnalog2, LightAnalog3}
}

// InputLight returns the indicator light of the digital input with given index (0...).
func InputLight(index int) LightName {
	return []LightName{LightInput1, LightInput2, LightInput3}[index]
}

// OutputLight returns the indicator light of the digital output with given index (0...).
func OutputLight(index int) LightName {
	return []LightName{LightOutput1, LightOutput2, LightOutput3}[index]
}

// RelayLight returns the indicator light of the relay with given index (0...).
func RelayLight(index int) LightName {
	return []LightName{LightRelay1, LightRelay2, LightRelay3}[index]
}

// BoardConfig describes how the functions of the board map onto GPIO pins.
type BoardConfig struct {
	// GPIO pins driving the relay coils (in relay order)
	RelayPins []int `json:"relay-pins"`
	// GPIO pins connected to the buffered digital inputs
	InputPins []int `json:"input-pins"`
	// GPIO pins driving the sinking digital outputs
	OutputPins []int `json:"output-pins"`
	// GPIO pin per indicator light
	LightPins map[LightName]int `json:"light-pins"`
}

// Validate the configuration, returning an error on failure.
func (c BoardConfig) Validate() error {
	if len(c.RelayPins) != 3 {
		return InvalidArgument("expected 3 relay pins, got %d", len(c.RelayPins))
	}
	if len(c.InputPins) != 3 {
		return InvalidArgument("expected 3 input pins, got %d", len(c.InputPins))
	}
	if len(c.OutputPins) != 3 {
		return InvalidArgument("expected 3 output pins, got %d", len(c.OutputPins))
	}
	for _, name := range []LightName{
		LightPower, LightComms,
		LightAnalog1, LightAnalog2, LightAnalog3,
		LightInput1, LightInput2, LightInput3,
		LightOutput1, LightOutput2, LightOutput3,
		LightRelay1, LightRelay2, LightRelay3,
	} {
		if _, found := c.LightPins[name]; !found {
			return InvalidArgument("no pin configured for light '%s'", name)
		}
	}
	return nil
}

// DefaultBoardConfig returns the pin layout of the production board.
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		RelayPins:  []int{13, 19, 16},
		InputPins:  []int{26, 20, 21},
		OutputPins: []int{5, 6, 12},
		LightPins: map[LightName]int{
			LightPower:   17,
			LightComms:   27,
			LightAnalog1: 18,
			LightAnalog2: 22,
			LightAnalog3: 25,
			LightInput1:  7,
			LightInput2:  8,
			LightInput3:  9,
			LightOutput1: 10,
			LightOutput2: 11,
			LightOutput3: 14,
			LightRelay1:  4,
			LightRelay2:  15,
			LightRelay3:  0,
		},
	}
}
