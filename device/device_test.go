package device_test

import (
	"context"
	"encoding/hex"
	"math/rand"
	"testing"

	"github.com/db47h/uartsha/device"
	"github.com/db47h/uartsha/harness"
	"github.com/db47h/uartsha/hwlib"
	"github.com/db47h/uartsha/hwtest"
	"github.com/db47h/uartsha/uart"
	"github.com/stretchr/testify/require"
)

// a short bit interval keeps the simulations fast
const tpb = 4

var opts = &device.Options{Workers: 1}

func newAccelerator(t *testing.T, cfg hwlib.CoreConfig) *device.Sim {
	t.Helper()
	d, err := device.NewAccelerator(cfg, opts)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func harnessConfig(tpb uint64, f harness.Framing) harness.Config {
	cfg := harness.DefaultConfig()
	cfg.TicksPerBit = tpb
	cfg.Framing = f
	return cfg
}

func TestAccelerator_abc(t *testing.T) {
	d := newAccelerator(t, hwlib.CoreConfig{TicksPerBit: uart.DefaultTicksPerBit})
	h, err := harness.New(d, harness.DefaultConfig())
	require.NoError(t, err)
	r, err := h.Run(context.Background(), harness.Vector{Name: "abc", Payload: []byte("abc")})
	require.NoError(t, err)
	require.True(t, r.Pass(), r.String())
	require.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", hex.EncodeToString(r.Digest()))
}

func TestAccelerator_directed(t *testing.T) {
	for _, f := range []harness.Framing{harness.HashPadded, harness.LengthPrefixed} {
		t.Run(f.String(), func(t *testing.T) {
			d := newAccelerator(t, hwlib.CoreConfig{TicksPerBit: tpb, LengthPrefixed: f == harness.LengthPrefixed})
			hwtest.RunVectors(t, d, harnessConfig(tpb, f), harness.DirectedVectors())
		})
	}
}

func TestAccelerator_random(t *testing.T) {
	d := newAccelerator(t, hwlib.CoreConfig{TicksPerBit: tpb, LengthPrefixed: true, Latency: 7})
	vs := harness.RandomVectors(rand.New(rand.NewSource(1)), 8)
	rs := hwtest.RunVectors(t, d, harnessConfig(tpb, harness.LengthPrefixed), vs)
	require.Len(t, rs, 8)
}

func TestAccelerator_fault(t *testing.T) {
	d := newAccelerator(t, hwlib.CoreConfig{
		TicksPerBit: tpb,
		Fault: func(i int, b byte) (byte, bool) {
			if i == 3 {
				return b ^ 1, true
			}
			return b, i < 18
		},
	})
	h, err := harness.New(d, harnessConfig(tpb, harness.HashPadded))
	require.NoError(t, err)
	r, err := h.Run(context.Background(), harness.Vector{Name: "abc", Payload: []byte("abc")})
	require.NoError(t, err)
	require.False(t, r.Pass())
	require.True(t, r.TimedOut)
	require.Len(t, r.Received, 18)
	require.Len(t, r.Mismatches, 3)
	require.Equal(t, harness.Mismatch{
		Kind:  harness.MismatchValue,
		Index: 3,
		Got:   r.Expected[3] ^ 1,
		Want:  r.Expected[3],
		Tick:  r.Received[3].Tick,
	}, r.Mismatches[0])
	require.Equal(t, harness.MismatchMissing, r.Mismatches[1].Kind)
	require.Equal(t, 19, r.Mismatches[2].Index)
}

func TestAccelerator_reset(t *testing.T) {
	d := newAccelerator(t, hwlib.CoreConfig{TicksPerBit: tpb, LengthPrefixed: true})
	require.False(t, d.Busy())
	h, err := harness.New(d, harnessConfig(tpb, harness.LengthPrefixed))
	require.NoError(t, err)

	// start a message, then reset the device half way through.
	d.SetInput(false)
	d.Cycles(tpb)
	require.True(t, d.Busy())
	d.SetInput(true)
	d.Reset(device.PowerOnReset)
	require.False(t, d.Busy())
	require.True(t, bool(d.Out()))

	r, err := h.Run(context.Background(), harness.Vector{Name: "fox", Payload: []byte("The quick brown fox jumps over the lazy dog")})
	require.NoError(t, err)
	require.True(t, r.Pass(), r.String())
}

func TestAccelerator_loop(t *testing.T) {
	d := newAccelerator(t, hwlib.CoreConfig{TicksPerBit: tpb})
	d.SetLoop(true)
	h, err := harness.New(d, harnessConfig(tpb, harness.LengthPrefixed))
	require.NoError(t, err)
	r, err := h.Run(context.Background(), harness.Vector{Name: "empty"})
	require.NoError(t, err)
	require.Equal(t, []byte{0}, r.Digest())
	require.True(t, r.TimedOut)
}

func TestLoopback(t *testing.T) {
	for _, latency := range []int{0, 1, 5} {
		d, err := device.NewLoopback(latency, opts)
		require.NoError(t, err)
		tx, rx := uart.NewTransmitter(tpb), uart.NewReceiver(tpb)
		for i := 0; i < 256; i++ {
			tx.Queue(byte(i))
		}
		var got []byte
		for now := uint64(0); len(got) < 256 && now < 300*uart.FrameBits*tpb; now++ {
			d.SetInput(tx.Line(now))
			d.AdvanceHalfCycle()
			d.AdvanceHalfCycle()
			b, ok, err := rx.Resume(now, d.Out())
			require.NoError(t, err)
			if ok {
				got = append(got, b)
			}
		}
		require.Len(t, got, 256, "latency %d", latency)
		for i, b := range got {
			require.Equal(t, byte(i), b, "latency %d", latency)
		}
		require.NoError(t, d.Close())
	}
}

func TestSim_Close(t *testing.T) {
	d, err := device.NewLoopback(1, nil)
	require.NoError(t, err)
	require.Equal(t, "loopback1", d.Name())
	require.EqualValues(t, device.DefaultStepsPerCycle, d.Circuit().SPC())
	require.NoError(t, d.Close())
	require.Error(t, d.Close())
	require.PanicsWithError(t, "loopback1: use of closed device", func() { d.AdvanceHalfCycle() })
	require.Panics(t, func() { d.Cycles(1) })
}
