// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package uart

import (
	"periph.io/x/conn/v3/gpio"
)

// State is the state of a Receiver. It is one of AwaitStart, InData or
// AwaitStop.
//
type State interface {
	rxState()
}

// AwaitStart is the idle state: the receiver waits for the line to go low.
type AwaitStart struct{}

// InData is the state of a receiver collecting data bits.
//
type InData struct {
	Bit   int    // number of data bits received
	Value byte   // data bits received so far, shifted in from the top
	Start uint64 // tick at which the start bit was detected
}

// AwaitStop is the state of a receiver waiting for the end of the stop bits.
//
type AwaitStop struct {
	Value byte
	Start uint64
}

func (AwaitStart) rxState() {}
func (InData) rxState()     {}
func (AwaitStop) rxState()  {}

// Receiver recovers bytes from a sampled serial line.
//
type Receiver struct {
	tpb uint64
	s   State
}

// NewReceiver returns a new Receiver for the given number of ticks per bit.
// A value of 0 selects DefaultTicksPerBit.
//
func NewReceiver(ticksPerBit uint64) *Receiver {
	if ticksPerBit == 0 {
		ticksPerBit = DefaultTicksPerBit
	}
	return &Receiver{tpb: ticksPerBit, s: AwaitStart{}}
}

// TicksPerBit returns the bit interval of r.
func (r *Receiver) TicksPerBit() uint64 { return r.tpb }

// State returns the current state of r.
func (r *Receiver) State() State { return r.s }

// Reset drops any partially received byte.
func (r *Receiver) Reset() { r.s = AwaitStart{} }

// Resume advances the receiver to tick now with the given line sample. It must
// be called on every tick with a monotonically increasing tick value.
//
// A byte is returned, with ok set to true, only on the tick the stop bit guard
// window expires. If the line is low at that point, the byte is still
// returned along with a *ProtocolViolation and the receiver goes back to
// waiting for a start bit.
//
func (r *Receiver) Resume(now uint64, line gpio.Level) (b byte, ok bool, err error) {
	switch s := r.s.(type) {
	case AwaitStart:
		if line == gpio.Low {
			r.s = InData{Start: now}
		}
	case InData:
		if now < s.Start+uint64(s.Bit+1)*r.tpb {
			return 0, false, nil
		}
		s.Value >>= 1
		if line == gpio.High {
			s.Value |= 0x80
		}
		s.Bit++
		if s.Bit >= DataBits {
			r.s = AwaitStop{Value: s.Value, Start: s.Start}
		} else {
			r.s = s
		}
	case AwaitStop:
		if now < s.Start+GuardBits*r.tpb {
			return 0, false, nil
		}
		r.s = AwaitStart{}
		if line != gpio.High {
			return s.Value, true, &ProtocolViolation{Tick: now, Value: s.Value}
		}
		return s.Value, true, nil
	}
	return 0, false, nil
}
