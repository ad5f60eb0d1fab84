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

package bridge

import (
	"time"
)

// API of the bridge, the hardware used to connect the SBC GPIO header
// to the functions of the I/O board.
type API interface {
	// Turn Green status led on/off
	SetGreenLED(on bool) error
	// Turn Red status led on/off
	SetRedLED(on bool) error
	// Blink Green status led with given duration between on/off
	BlinkGreenLED(delay time.Duration) error
	// Blink Red status led with given duration between on/off
	BlinkRedLED(delay time.Duration) error

	// I2CBus opens the I2C bus of the board.
	// Every call opens a fresh bus; the caller owns it and must Close it.
	I2CBus() (I2CBus, error)

	// Access to local GPIO

	// Input initializes a GPIO input pin with the given pin number.
	Input(pinNumber int, activeLow bool) (InputPin, error)
	// Output initializes a GPIO output pin with the given pin number
	// and initial logical value.
	Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error)

	Close() error
}

// InputPin is the interface satisfied by GPIO input pins.
type InputPin interface {
	Read() (bool, error)
}

// OutputPin is the interface satisfied by GPIO output pins.
type OutputPin interface {
	Write(bool) error
}
