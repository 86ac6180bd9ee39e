// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package device provides harness.Device implementations built on top of
// hwsim circuits.
//
// Every model is packaged as a TOP chip with an 8 bits input bus ui_in and an
// output bus uo_out:
//
//	ui_in[0]   serial input (rx)
//	ui_in[6]   loop: when high, uo_out[0] follows ui_in[0]
//	ui_in[7]   reset, active high
//	uo_out[0]  serial output (tx)
//	uo_out[1]  busy (accelerator only)
//
package device

import (
	"strconv"

	"github.com/db47h/uartsha/harness"
	"github.com/db47h/uartsha/hwlib"
	"github.com/db47h/uartsha/hwsim"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// Input bus bits.
const (
	BitRx    = 0
	BitLoop  = 6
	BitReset = 7
)

// Output bus bits.
const (
	BitTx   = 0
	BitBusy = 1
)

// Power-on sequence, in clock cycles.
const (
	PowerOnReset = 10
	PowerOnIdle  = 20
)

// DefaultStepsPerCycle is the number of simulation steps per clock cycle. It
// leaves enough steps in a half cycle for the output logic to settle.
const DefaultStepsPerCycle = 16

// Options configures the simulation of a device model.
//
type Options struct {
	// Workers is the number of simulation goroutines. <= 0 means GOMAXPROCS.
	Workers int
	// StepsPerCycle is the number of simulation steps per clock cycle. Zero
	// means DefaultStepsPerCycle.
	StepsPerCycle uint
}

// Sim is a device model running in a hwsim.Circuit. It implements
// harness.Device.
//
// A Sim must be closed once no longer needed in order to stop the simulation
// goroutines.
//
type Sim struct {
	name string
	c    *hwsim.Circuit
	ui   int64
	out  int64
}

func newSim(name string, top hwsim.NewPartFn, outBits int, opts *Options) (*Sim, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	if o.StepsPerCycle == 0 {
		o.StepsPerCycle = DefaultStepsPerCycle
	}
	s := &Sim{name: name}
	r := "[0.." + strconv.Itoa(outBits-1) + "]"
	c, err := hwsim.NewCircuit(o.Workers, o.StepsPerCycle,
		hwlib.InputN(8, func() int64 { return s.ui })("out[0..7]=ui_in[0..7]"),
		top("ui_in[0..7]=ui_in[0..7], uo_out"+r+"=uo_out"+r),
		hwlib.OutputN(outBits, func(v int64) { s.out = v })("in"+r+"=uo_out"+r),
	)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	s.c = c
	glog.V(1).Infof("%s: %d components, %d steps per cycle", name, c.Size(), c.SPC())

	s.set(BitRx, true)
	s.Reset(PowerOnReset)
	s.Cycles(PowerOnIdle)
	return s, nil
}

func (s *Sim) set(bit uint, v bool) {
	if v {
		s.ui |= 1 << bit
	} else {
		s.ui &^= 1 << bit
	}
}

// Name returns the name of the device model.
func (s *Sim) Name() string { return s.name }

// Circuit returns the underlying circuit.
func (s *Sim) Circuit() *hwsim.Circuit { return s.c }

// SetInput sets the serial input line. The new level is seen by the device on
// the next raising clock edge.
//
func (s *Sim) SetInput(l gpio.Level) { s.set(BitRx, bool(l)) }

// SetLoop enables or disables the loop bypass.
func (s *Sim) SetLoop(on bool) { s.set(BitLoop, on) }

// AdvanceHalfCycle runs the circuit up to the next clock edge and returns the
// state of the output bus. It panics if the Sim has been closed.
//
func (s *Sim) AdvanceHalfCycle() harness.LineSample {
	if s.c == nil {
		panic(errors.New(s.name + ": use of closed device"))
	}
	if s.c.Clk() {
		s.c.Tick()
	} else {
		s.c.Tock()
	}
	return harness.LineSample(s.out)
}

// Cycles runs n full clock cycles.
func (s *Sim) Cycles(n int) {
	for i := 0; i < n; i++ {
		s.AdvanceHalfCycle()
		s.AdvanceHalfCycle()
	}
}

// Reset holds the reset input high for the given number of clock cycles.
//
func (s *Sim) Reset(cycles int) {
	s.set(BitReset, true)
	s.Cycles(cycles)
	s.set(BitReset, false)
}

// Out returns the serial output level as of the last half cycle.
func (s *Sim) Out() gpio.Level { return harness.LineSample(s.out).Out() }

// Busy returns the state of the busy output.
func (s *Sim) Busy() bool { return s.out&(1<<BitBusy) != 0 }

// Close stops the simulation. The Sim must not be advanced afterwards.
//
func (s *Sim) Close() error {
	if s.c == nil {
		return errors.New(s.name + ": already closed")
	}
	s.c.Dispose()
	s.c = nil
	return nil
}
