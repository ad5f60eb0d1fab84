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
	"context"
)

// Object is the API supported by all logical functions on the board.
type Object interface {
	// Name returns the name of the object.
	Name() string
	// Configure is called once to put the object in the desired state.
	Configure(ctx context.Context) error
	// Close brings the object back to a safe state.
	Close(ctx context.Context) error
}

// Relay is a single relay on the board.
type Relay interface {
	Object
	// Set energizes (true) or releases (false) the relay coil.
	Set(ctx context.Context, on bool) error
	// IsOn returns the last commanded state.
	IsOn() bool
}

// DigitalOutput is a single sinking output on the board.
type DigitalOutput interface {
	Object
	// Set turns the output on or off.
	Set(ctx context.Context, on bool) error
	// IsOn returns the last commanded state.
	IsOn() bool
}

// DigitalInput is a single buffered input on the board.
type DigitalInput interface {
	Object
	// Get reads the current state of the input.
	Get(ctx context.Context) (bool, error)
}
