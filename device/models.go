// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package device

import (
	"strconv"

	"github.com/db47h/uartsha/hwlib"
	"github.com/db47h/uartsha/hwsim"
)

// NewAccelerator returns a simulated UART SHA-1 accelerator.
//
// The serial output goes through an Or gate that holds it high while reset is
// asserted, then through the loop bypass multiplexer.
//
func NewAccelerator(cfg hwlib.CoreConfig, opts *Options) (*Sim, error) {
	top, err := hwsim.Chip("TOP", "ui_in[8]", "uo_out[2]",
		hwlib.UARTCore(cfg)("rx=ui_in[0], rst=ui_in[7], tx=core_tx, busy=uo_out[1]"),
		hwlib.Or("a=core_tx, b=ui_in[7], out=line"),
		hwlib.Mux("a=line, b=ui_in[0], sel=ui_in[6], out=uo_out[0]"),
	)
	if err != nil {
		return nil, err
	}
	return newSim("accelerator", top, 2, opts)
}

// NewLoopback returns a device that sends its serial input back after the
// given number of clock cycles.
//
func NewLoopback(latency int, opts *Options) (*Sim, error) {
	if latency < 0 {
		latency = 0
	}
	var parts hwsim.Parts
	if latency == 0 {
		parts = append(parts, hwlib.And("a=ui_in[0], b=true, out=line"))
	} else {
		w := "ui_in[0]"
		for i := 0; i < latency; i++ {
			o := "d" + strconv.Itoa(i)
			if i == latency-1 {
				o = "line"
			}
			parts = append(parts, hwlib.DFF("in="+w+", out="+o))
			w = o
		}
	}
	parts = append(parts, hwlib.Mux("a=line, b=ui_in[0], sel=ui_in[6], out=uo_out[0]"))
	top, err := hwsim.Chip("TOP", "ui_in[8]", "uo_out[1]", parts...)
	if err != nil {
		return nil, err
	}
	return newSim("loopback"+strconv.Itoa(latency), top, 1, opts)
}
