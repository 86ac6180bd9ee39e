// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package uart

import (
	"periph.io/x/conn/v3/gpio"
)

// An Interval is a line level held from Offset ticks after the beginning of a
// frame until the next Interval.
//
type Interval struct {
	Offset uint64
	Line   gpio.Level
}

// Frame is a lazy sequence of the intervals encoding a single byte.
//
type Frame struct {
	b   byte
	tpb uint64
	i   uint64
}

// Encode returns the frame for byte b.
//
func Encode(b byte, ticksPerBit uint64) *Frame {
	if ticksPerBit == 0 {
		ticksPerBit = DefaultTicksPerBit
	}
	return &Frame{b: b, tpb: ticksPerBit}
}

// Duration returns the length of the frame in ticks.
func (f *Frame) Duration() uint64 { return FrameBits * f.tpb }

// Next returns the next interval. It returns false once the last stop bit has
// been returned.
//
func (f *Frame) Next() (Interval, bool) {
	var l gpio.Level
	switch {
	case f.i == 0:
		l = gpio.Low
	case f.i <= DataBits:
		l = level(f.b&(1<<(f.i-1)) != 0)
	case f.i < FrameBits:
		l = gpio.High
	default:
		return Interval{}, false
	}
	iv := Interval{Offset: f.i * f.tpb, Line: l}
	f.i++
	return iv, true
}

// Transmitter drives a serial line one tick at a time from a queue of bytes.
// Frames are sent back to back; the line idles high.
//
type Transmitter struct {
	tpb   uint64
	q     []byte
	cur   *Frame
	start uint64
	next  Interval
	more  bool
	line  gpio.Level
}

// NewTransmitter returns a new idle Transmitter.
//
func NewTransmitter(ticksPerBit uint64) *Transmitter {
	if ticksPerBit == 0 {
		ticksPerBit = DefaultTicksPerBit
	}
	return &Transmitter{tpb: ticksPerBit, line: gpio.High}
}

// Queue appends bytes to the transmit queue.
//
func (t *Transmitter) Queue(p ...byte) {
	t.q = append(t.q, p...)
}

// Busy returns true if a frame is in progress or bytes are queued.
//
func (t *Transmitter) Busy() bool {
	return t.cur != nil || len(t.q) > 0
}

// Pending returns the number of queued bytes, not counting the frame in
// progress.
func (t *Transmitter) Pending() int { return len(t.q) }

// Reset drops the queue and the frame in progress.
//
func (t *Transmitter) Reset() {
	t.q = t.q[:0]
	t.cur = nil
	t.line = gpio.High
}

// Line returns the line level at tick now. It must be called on every tick
// with a monotonically increasing tick value.
//
func (t *Transmitter) Line(now uint64) gpio.Level {
	if t.cur != nil && now >= t.start+t.cur.Duration() {
		t.cur = nil
	}
	if t.cur == nil {
		if len(t.q) == 0 {
			t.line = gpio.High
			return t.line
		}
		t.cur = Encode(t.q[0], t.tpb)
		t.q = t.q[1:]
		t.start = now
		t.next, t.more = t.cur.Next()
	}
	for t.more && now >= t.start+t.next.Offset {
		t.line = t.next.Line
		t.next, t.more = t.cur.Next()
	}
	return t.line
}
