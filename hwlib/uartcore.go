// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import (
	"github.com/db47h/uartsha/hwsim"
	"github.com/db47h/uartsha/sha1"
	"github.com/db47h/uartsha/uart"
	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
)

// CoreConfig configures a UARTCore.
//
type CoreConfig struct {
	// Ticks per bit of the serial line, in clock cycles.
	TicksPerBit uint64
	// If true, the core expects a length byte followed by the raw message and
	// pads it itself. Otherwise it expects a single pre-padded 64 bytes block.
	LengthPrefixed bool
	// Clock cycles between the last received byte and the start of the
	// response.
	Latency uint64
	// Fault, if not nil, is called for every digest byte before it is sent. It
	// may alter the byte or drop it by returning false.
	Fault func(index int, b byte) (byte, bool)
}

type uartCore struct {
	cfg   CoreConfig
	rx    *uart.Receiver
	tx    *uart.Transmitter
	now   uint64
	msg   []byte
	want  int // message length, -1 if waiting for a length byte
	due   uint64
	out   []byte
	line  bool
	reset bool
}

func newUARTCore(cfg CoreConfig) *uartCore {
	c := &uartCore{
		cfg: cfg,
		rx:  uart.NewReceiver(cfg.TicksPerBit),
		tx:  uart.NewTransmitter(cfg.TicksPerBit),
	}
	c.clear()
	return c
}

func (u *uartCore) clear() {
	u.rx.Reset()
	u.tx.Reset()
	u.msg = u.msg[:0]
	u.out = nil
	u.want = sha1.BlockSize
	if u.cfg.LengthPrefixed {
		u.want = -1
	}
	u.line = true
}

func (u *uartCore) busy() bool {
	_, idle := u.rx.State().(uart.AwaitStart)
	return !idle || u.out != nil || u.tx.Busy()
}

// clock runs one clock cycle.
func (u *uartCore) clock(rst, rx bool) {
	u.now++
	if rst {
		if !u.reset {
			u.clear()
		}
		u.reset = true
		return
	}
	u.reset = false

	l := gpio.Low
	if rx {
		l = gpio.High
	}
	if b, ok, err := u.rx.Resume(u.now, l); ok {
		if err != nil {
			glog.Warningf("uart core: %v", err)
		}
		u.recv(b)
	}

	if u.out != nil && u.now >= u.due {
		for i, b := range u.out {
			keep := true
			if u.cfg.Fault != nil {
				b, keep = u.cfg.Fault(i, b)
			}
			if keep {
				u.tx.Queue(b)
			}
		}
		u.out = nil
	}
	u.line = bool(u.tx.Line(u.now))
}

func (u *uartCore) recv(b byte) {
	if u.want < 0 {
		u.want = int(b)
		if u.want == 0 {
			u.respond()
		}
		return
	}
	u.msg = append(u.msg, b)
	if len(u.msg) < u.want {
		return
	}
	u.respond()
}

func (u *uartCore) respond() {
	var d [sha1.Size]byte
	if u.cfg.LengthPrefixed {
		d = sha1.Sum(u.msg)
		u.want = -1
	} else {
		h := sha1.New()
		h.Update(u.msg)
		// the block is already padded: read the accumulator as is.
		d = h.Words()
		u.want = sha1.BlockSize
	}
	u.msg = u.msg[:0]
	u.out = d[:]
	u.due = u.now + u.cfg.Latency
}

// corePins binds a uartCore to its pins.
type corePins struct {
	Rx   int `hw:"in"`
	Rst  int `hw:"in"`
	Tx   int `hw:"out"`
	Busy int `hw:"out"`
	u    *uartCore
}

func (p *corePins) Update(c *hwsim.Circuit) {
	if c.AtTick() {
		p.u.clock(c.Get(p.Rst), c.Get(p.Rx))
	}
	c.Set(p.Tx, p.u.line)
	c.Set(p.Busy, p.u.busy())
}

// UARTCore returns a behavioral model of the serial SHA-1 accelerator core.
//
// Inputs are sampled and the serial output is updated on the raising edge of
// the clock. While rst is high, the core is held in reset and tx is high.
//
//	Inputs: rx, rst
//	Outputs: tx, busy
//	Function: receives a message on rx, sends its SHA-1 digest on tx.
//
func UARTCore(cfg CoreConfig) hwsim.NewPartFn {
	sp := hwsim.MakePart(func() hwsim.Updater {
		return &corePins{u: newUARTCore(cfg)}
	})
	sp.Name = "UARTCore"
	return sp.NewPart
}
