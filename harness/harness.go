// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package harness drives test vectors through a serial SHA-1 accelerator and
// checks its answers against the sha1 package.
//
// The harness owns the tick counter. Every tick it sets the device input from
// a uart.Transmitter, advances the device by a full clock cycle (two half
// cycles) and feeds the sampled output to a uart.Receiver. Nothing runs in the
// background: waiting is just more ticks.
//
package harness

import (
	"context"

	"github.com/db47h/uartsha/sha1"
	"github.com/db47h/uartsha/uart"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

// LineSample is the state of the device output pins after a half clock cycle.
// Bit 0 is the serial output.
//
type LineSample uint8

// Out returns the serial output level.
func (s LineSample) Out() gpio.Level { return s&1 != 0 }

// Device is the device under test.
//
type Device interface {
	// AdvanceHalfCycle runs the device for half a clock period and returns
	// the state of its outputs.
	AdvanceHalfCycle() LineSample
	// SetInput sets the serial input line.
	SetInput(l gpio.Level)
}

// Config configures a Harness.
//
type Config struct {
	// TicksPerBit is the duration of a bit interval in ticks (clock cycles).
	TicksPerBit uint64
	// Framing selects the message framing.
	Framing Framing
	// Timeout is the number of ticks without a new byte after which a test
	// case gives up. Zero means twice the duration of a frame.
	Timeout uint64
	// SettleTicks is the number of idle ticks run after each test case.
	// Bytes received during that time are reported as extra bytes.
	SettleTicks uint64
}

// DefaultConfig returns the reference configuration: 16 ticks per bit and hash
// padded framing. The timeout is left to New, which derives it from
// TicksPerBit (320 ticks at 16 ticks per bit).
//
func DefaultConfig() Config {
	return Config{
		TicksPerBit: uart.DefaultTicksPerBit,
		Framing:     HashPadded,
	}
}

// Harness runs test vectors against a Device. A Harness is not safe for
// concurrent use.
//
type Harness struct {
	dev Device
	cfg Config
	tx  *uart.Transmitter
	rx  *uart.Receiver
	now uint64
	// line is the serial output sampled on the last tick.
	line gpio.Level
	// dirty is set when a case was abandoned with the line possibly busy.
	dirty bool
}

// New returns a new Harness for the given device.
//
func New(dev Device, cfg Config) (*Harness, error) {
	if dev == nil {
		return nil, errors.New("nil device")
	}
	if cfg.TicksPerBit == 0 {
		return nil, errors.New("ticks per bit must be > 0")
	}
	if cfg.Framing != HashPadded && cfg.Framing != LengthPrefixed {
		return nil, errors.Errorf("unsupported framing %v", cfg.Framing)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 2 * uart.GuardBits * cfg.TicksPerBit
	}
	return &Harness{
		dev:  dev,
		cfg:  cfg,
		tx:   uart.NewTransmitter(cfg.TicksPerBit),
		rx:   uart.NewReceiver(cfg.TicksPerBit),
		line: gpio.High,
	}, nil
}

// Config returns the harness configuration, with defaults applied.
func (h *Harness) Config() Config { return h.cfg }

// Now returns the current tick.
func (h *Harness) Now() uint64 { return h.now }

// tick runs a single tick and returns the byte completed by the receiver on
// that tick, if any, along with the tick number.
func (h *Harness) tick() (b byte, ok bool, at uint64, err error) {
	at = h.now
	h.dev.SetInput(h.tx.Line(at))
	h.dev.AdvanceHalfCycle()
	s := h.dev.AdvanceHalfCycle()
	h.line = s.Out()
	b, ok, err = h.rx.Resume(at, h.line)
	h.now++
	return b, ok, at, err
}

// Idle runs n ticks with the line held high. It returns the bytes received in
// the meantime.
//
func (h *Harness) Idle(ctx context.Context, n uint64) ([]byte, error) {
	var out []byte
	for i := uint64(0); i < n; i++ {
		if err := ctx.Err(); err != nil {
			return out, errors.Wrap(err, "idle")
		}
		b, ok, _, err := h.tick()
		if err != nil {
			glog.Warningf("idle: %v", err)
		}
		if ok {
			out = append(out, b)
		}
	}
	return out, nil
}

// quiet reports whether nothing is left over from a previous case: nothing
// to send, no frame being received.
func (h *Harness) quiet() bool {
	if h.dirty || h.tx.Busy() {
		return false
	}
	_, idle := h.rx.State().(uart.AwaitStart)
	return idle
}

// abandon drops whatever the current case still had to send.
func (h *Harness) abandon() {
	h.tx.Reset()
	h.dirty = true
}

// flush drops pending output, then idles until the device line has been high
// for a whole frame, and resets the receiver. Bytes received in the meantime
// belong to no case and are discarded. It gives up after a frame plus the
// receive timeout.
//
func (h *Harness) flush(ctx context.Context) error {
	h.tx.Reset()
	frame := uart.FrameBits * h.cfg.TicksPerBit
	limit := frame + h.cfg.Timeout
	var high uint64
	for i := uint64(0); high < frame; i++ {
		if i >= limit {
			glog.Warningf("flush: device line still active after %d ticks", i)
			break
		}
		if err := ctx.Err(); err != nil {
			return errors.Wrap(err, "flush")
		}
		b, ok, _, _ := h.tick()
		if ok {
			glog.V(1).Infof("flush: dropped 0x%02X", b)
		}
		if h.line {
			high++
		} else {
			high = 0
		}
	}
	h.rx.Reset()
	h.dirty = false
	return nil
}

// Run runs a single test case.
//
// A payload longer than MaxPayload is rejected with a *FramingError before
// anything is sent; the returned Result is then marked as failed. A non-nil
// error is also returned if ctx is done, in which case the Result holds what
// was received so far and the rest of the case is dropped.
//
// Each case starts from an idle line: leftovers from a previous case that
// ended early (because of a cancellation or after 20 bytes came back while
// bytes were still queued) are flushed first.
//
func (h *Harness) Run(ctx context.Context, v Vector) (*Result, error) {
	r := &Result{
		Vector:   v,
		Framing:  h.cfg.Framing,
		Expected: sha1.Sum(v.Payload),
	}
	wire, err := Frame(h.cfg.Framing, v.Payload)
	if err != nil {
		r.Err = err
		return r, err
	}
	if err := ctx.Err(); err != nil {
		r.compare()
		return r, errors.Wrap(err, v.Name)
	}
	if !h.quiet() {
		glog.V(1).Infof("%s: flushing previous case at tick %d", v.Name, h.now)
		if err := h.flush(ctx); err != nil {
			r.compare()
			return r, errors.Wrap(err, v.Name)
		}
	}

	glog.V(2).Infof("%s: sending %d bytes at tick %d", v.Name, len(wire), h.now)
	if glog.V(4) {
		for i, b := range wire {
			glog.Infof("%s: tx[%d] = 0x%02X", v.Name, i, b)
		}
	}
	h.tx.Queue(wire...)
	r.Start = h.now

	last := h.now
	for len(r.Received) < sha1.Size {
		if err := ctx.Err(); err != nil {
			h.abandon()
			r.End = h.now
			r.compare()
			return r, errors.Wrap(err, v.Name)
		}
		b, ok, at, err := h.tick()
		if err != nil {
			glog.Warningf("%s: %v", v.Name, err)
			r.Violations = append(r.Violations, err)
		}
		if h.tx.Busy() {
			last = at
		}
		if ok {
			glog.V(2).Infof("%s: data 0x%02X at tick %d", v.Name, b, at)
			r.Received = append(r.Received, Byte{Value: b, Tick: at})
			last = at
			continue
		}
		if at-last > h.cfg.Timeout {
			glog.V(1).Infof("%s: timeout at tick %d", v.Name, at)
			r.TimedOut = true
			break
		}
	}
	r.End = h.now

	if h.cfg.SettleTicks > 0 {
		extra, err := h.Idle(ctx, h.cfg.SettleTicks)
		r.Extra = extra
		if err != nil {
			h.abandon()
			r.compare()
			return r, err
		}
	}
	r.compare()
	return r, nil
}

// RunAll runs all test cases in order and returns their results. A failing
// case does not stop the run; only a done context does.
//
func (h *Harness) RunAll(ctx context.Context, vs []Vector) ([]*Result, error) {
	rs := make([]*Result, 0, len(vs))
	for _, v := range vs {
		r, err := h.Run(ctx, v)
		rs = append(rs, r)
		if err != nil {
			if _, ok := errors.Cause(err).(*FramingError); ok {
				glog.Warningf("%s: %v", v.Name, err)
				continue
			}
			return rs, err
		}
	}
	return rs, nil
}
