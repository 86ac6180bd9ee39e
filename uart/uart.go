// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package uart implements a tick driven asynchronous serial codec: one start
// bit (low), 8 data bits sent LSB first and 2 stop bits (high).
//
// Time is expressed in abstract ticks supplied by the caller. Every bit
// interval spans the same number of ticks on both ends of the line.
//
package uart

import (
	"strconv"

	"periph.io/x/conn/v3/gpio"
)

// Frame layout.
const (
	DataBits  = 8
	StopBits  = 2
	FrameBits = 1 + DataBits + StopBits

	// GuardBits is the number of bit intervals, counted from the start bit,
	// that a Receiver waits before delivering a byte and looking for the next
	// start bit.
	GuardBits = 10

	DefaultTicksPerBit = 16
)

// A ProtocolViolation is reported by a Receiver when the line is not high at
// the end of the stop bit guard window.
//
type ProtocolViolation struct {
	Tick  uint64 // tick at which the stop bit was checked
	Value byte   // byte value decoded so far
}

func (e *ProtocolViolation) Error() string {
	return "uart: stop bit low at tick " + strconv.FormatUint(e.Tick, 10) +
		" (data 0x" + strconv.FormatUint(uint64(e.Value), 16) + ")"
}

func level(bit bool) gpio.Level {
	if bit {
		return gpio.High
	}
	return gpio.Low
}
