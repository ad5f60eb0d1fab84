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

package bridge

import (
	"context"
	"fmt"
	"sync"
	"time"
)

const virtualADCAddress = 0x48

type virtualBridge struct {
	mutex sync.Mutex
	pins  map[int]*virtualPin
	adc   *virtualADC
}

// NewVirtualBridge implements the bridge for a development machine
// without board hardware. GPIO pins are held in memory and the ADC
// at its usual address yields a fixed ramp per channel.
func NewVirtualBridge() (API, error) {
	return &virtualBridge{
		pins: make(map[int]*virtualPin),
		adc:  &virtualADC{},
	}, nil
}

// Input initializes a GPIO input pin with the given pin number.
func (p *virtualBridge) Input(pinNumber int, activeLow bool) (InputPin, error) {
	return p.pin(pinNumber), nil
}

// Output initializes a GPIO output pin with the given pin number
// and initial logical value.
func (p *virtualBridge) Output(pinNumber int, activeLow bool, initialValue bool) (OutputPin, error) {
	pin := p.pin(pinNumber)
	pin.Write(initialValue)
	return pin, nil
}

func (p *virtualBridge) pin(pinNumber int) *virtualPin {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	pin, found := p.pins[pinNumber]
	if !found {
		pin = &virtualPin{}
		p.pins[pinNumber] = pin
	}
	return pin
}

// Turn Green status led on/off
func (p *virtualBridge) SetGreenLED(on bool) error {
	return nil
}

// Turn Red status led on/off
func (p *virtualBridge) SetRedLED(on bool) error {
	return nil
}

// Blink Green status led with given duration between on/off
func (p *virtualBridge) BlinkGreenLED(delay time.Duration) error {
	return nil
}

// Blink Red status led with given duration between on/off
func (p *virtualBridge) BlinkRedLED(delay time.Duration) error {
	return nil
}

// I2CBus opens the (virtual) I2C bus of the board.
func (p *virtualBridge) I2CBus() (I2CBus, error) {
	i2cBusOpensTotal.Inc()
	return &virtualI2CBus{adc: p.adc}, nil
}

func (p *virtualBridge) Close() error {
	return nil
}

type virtualPin struct {
	mutex sync.Mutex
	value bool
}

func (p *virtualPin) Read() (bool, error) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.value, nil
}

func (p *virtualPin) Write(value bool) error {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	p.value = value
	return nil
}

type virtualI2CBus struct {
	adc *virtualADC
}

// Execute an operation on the bus.
func (b *virtualI2CBus) Execute(ctx context.Context, address uint8, op func(ctx context.Context, dev I2CDevice) error) error {
	if address != virtualADCAddress {
		return fmt.Errorf("device %0x not found", address)
	}
	return op(ctx, b.adc)
}

// DetectSlaveAddresses probes the bus to detect available addresses.
func (b *virtualI2CBus) DetectSlaveAddresses() []byte {
	return []byte{virtualADCAddress}
}

// Close the bus and all devices on it
func (b *virtualI2CBus) Close() error {
	return nil
}

// virtualADC mimics the register interface of the ADS1015 on the board.
// Every channel converts to a fixed raw value so readings are
// recognizable during development.
type virtualADC struct {
	mutex   sync.Mutex
	pointer uint8
	config  uint16
}

var virtualADCRaws = []uint16{512, 1024, 1536, 2047}

func (d *virtualADC) ReadByteReg(reg uint8) (uint8, error) {
	return 0, fmt.Errorf("byte registers not supported")
}

func (d *virtualADC) WriteByteReg(reg uint8, val uint8) error {
	return fmt.Errorf("byte registers not supported")
}

func (d *virtualADC) WriteDevice(data []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(data) == 0 {
		return fmt.Errorf("empty write")
	}
	d.pointer = data[0]
	if d.pointer == 0x01 && len(data) == 3 {
		d.config = uint16(data[1])<<8 | uint16(data[2])
	}
	return nil
}

func (d *virtualADC) ReadDevice(data []byte) error {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(data) != 2 {
		return fmt.Errorf("expected 2 byte read, got %d", len(data))
	}
	var word uint16
	switch d.pointer {
	case 0x00:
		// Conversion result for the channel selected in the mux bits
		channel := int((d.config>>12)&0x7) - 4
		if channel < 0 {
			channel = 0
		}
		word = virtualADCRaws[channel] << 4
	case 0x01:
		// Conversion always completed
		word = d.config | 0x8000
	default:
		return fmt.Errorf("unsupported register 0x%0x", d.pointer)
	}
	data[0] = uint8(word >> 8)
	data[1] = uint8(word & 0xFF)
	return nil
}
