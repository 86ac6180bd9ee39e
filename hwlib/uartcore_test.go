package hwlib_test

import (
	"testing"

	hw "github.com/db47h/uartsha/hwsim"
	hl "github.com/db47h/uartsha/hwlib"
	"github.com/db47h/uartsha/sha1"
	"github.com/db47h/uartsha/uart"
	"periph.io/x/conn/v3/gpio"
)

type coreBench struct {
	c       *hw.Circuit
	rx, rst bool
	tx      bool
	now     uint64
	txr     *uart.Transmitter
	rxr     *uart.Receiver
	got     []byte
}

func newCoreBench(t *testing.T, tpb uint64, cfg hl.CoreConfig) *coreBench {
	t.Helper()
	b := &coreBench{rx: true, tx: true, txr: uart.NewTransmitter(tpb), rxr: uart.NewReceiver(tpb)}
	c, err := hw.NewCircuit(0, testTPC,
		hl.Input(func() bool { return b.rx })("out=rx"),
		hl.Input(func() bool { return b.rst })("out=rst"),
		hl.UARTCore(cfg)("rx=rx, rst=rst, tx=tx"),
		hl.Output(func(v bool) { b.tx = v })("in=tx"),
	)
	if err != nil {
		t.Fatal(err)
	}
	b.c = c
	// pins are all low on power up: hold the core in reset until the line
	// idles high.
	b.rst = true
	b.run(t, 4)
	b.rst = false
	return b
}

func (b *coreBench) run(t *testing.T, cycles int) {
	t.Helper()
	for i := 0; i < cycles; i++ {
		b.rx = bool(b.txr.Line(b.now))
		b.c.TickTock()
		v, ok, err := b.rxr.Resume(b.now, gpio.Level(b.tx))
		if err != nil {
			t.Fatal(err)
		}
		if ok {
			b.got = append(b.got, v)
		}
		b.now++
	}
}

func TestUARTCore(t *testing.T) {
	const tpb = 4
	frame := tpb * uart.FrameBits
	msg := []byte("abc")

	t.Run("length_prefixed", func(t *testing.T) {
		b := newCoreBench(t, tpb, hl.CoreConfig{TicksPerBit: tpb, LengthPrefixed: true, Latency: 3})
		defer b.c.Dispose()
		b.txr.Queue(byte(len(msg)))
		b.txr.Queue(msg...)
		b.run(t, (len(msg)+1+sha1.Size+2)*frame)
		want := sha1.Sum(msg)
		if string(b.got) != string(want[:]) {
			t.Fatalf("got %x, expected %x", b.got, want)
		}
	})

	t.Run("hash_padded", func(t *testing.T) {
		b := newCoreBench(t, tpb, hl.CoreConfig{TicksPerBit: tpb})
		defer b.c.Dispose()
		b.txr.Queue(msg...)
		b.txr.Queue(sha1.Pad(uint64(len(msg)))...)
		b.run(t, (sha1.BlockSize+sha1.Size+2)*frame)
		want := sha1.Sum(msg)
		if string(b.got) != string(want[:]) {
			t.Fatalf("got %x, expected %x", b.got, want)
		}
	})

	t.Run("fault", func(t *testing.T) {
		b := newCoreBench(t, tpb, hl.CoreConfig{
			TicksPerBit:    tpb,
			LengthPrefixed: true,
			Fault: func(i int, v byte) (byte, bool) {
				return ^v, i != 0
			},
		})
		defer b.c.Dispose()
		b.txr.Queue(0)
		b.run(t, (1+sha1.Size+2)*frame)
		want := sha1.Sum(nil)
		if len(b.got) != sha1.Size-1 {
			t.Fatalf("got %d bytes, expected %d", len(b.got), sha1.Size-1)
		}
		for i, v := range b.got {
			if v != ^want[i+1] {
				t.Fatalf("byte %d: got %02x, expected %02x", i, v, ^want[i+1])
			}
		}
	})

	t.Run("reset", func(t *testing.T) {
		b := newCoreBench(t, tpb, hl.CoreConfig{TicksPerBit: tpb, LengthPrefixed: true})
		defer b.c.Dispose()
		b.rst = true
		b.txr.Queue(0)
		b.run(t, (1+sha1.Size+2)*frame)
		if len(b.got) != 0 {
			t.Fatalf("core answered while held in reset: %x", b.got)
		}
		if !b.tx {
			t.Fatal("tx low during reset")
		}
	})
}
