// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/db47h/uartsha/device"
	"github.com/db47h/uartsha/harness"
	"github.com/db47h/uartsha/hwlib"
	"github.com/golang/glog"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/pkg/errors"
)

// errFailed is returned when at least one test case failed.
var errFailed = errors.New("test cases failed")

type runConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	device     string
	latency    uint64
	workers    int
	random     int
	seed       int64
	suite      string
	timeout    uint64
	settle     uint64
	quiet      bool
}

func (c *runConfig) newDevice(tpb uint64) (*device.Sim, error) {
	opts := &device.Options{Workers: c.workers}
	switch c.device {
	case "accel", "accelerator":
		return device.NewAccelerator(hwlib.CoreConfig{
			TicksPerBit:    tpb,
			LengthPrefixed: c.rootConfig.framing == harness.LengthPrefixed,
			Latency:        c.latency,
		}, opts)
	case "loopback":
		return device.NewLoopback(int(c.latency), opts)
	}
	return nil, errors.Errorf("unknown device %q", c.device)
}

func (c *runConfig) vectors() ([]harness.Vector, error) {
	vs := harness.DirectedVectors()
	if c.random > 0 {
		seed := c.seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		glog.Infof("random seed %d", seed)
		vs = append(vs, harness.RandomVectors(rand.New(rand.NewSource(seed)), c.random)...)
	}
	if c.suite != "" {
		s, err := harness.LoadSuite(c.suite)
		if err != nil {
			return nil, err
		}
		vs = append(vs, s...)
	}
	return vs, nil
}

func (c *runConfig) Exec(ctx context.Context, _ []string) error {
	cfg, err := c.rootConfig.harnessConfig()
	if err != nil {
		return err
	}
	cfg.Timeout = c.timeout
	cfg.SettleTicks = c.settle

	vs, err := c.vectors()
	if err != nil {
		return err
	}

	d, err := c.newDevice(cfg.TicksPerBit)
	if err != nil {
		return err
	}
	defer d.Close()

	h, err := harness.New(d, cfg)
	if err != nil {
		return err
	}
	glog.Infof("%s: %d vectors, %d ticks per bit, %v framing", d.Name(), len(vs), cfg.TicksPerBit, cfg.Framing)

	start := time.Now()
	rs, err := h.RunAll(ctx, vs)
	for _, r := range rs {
		if c.quiet && r.Pass() {
			continue
		}
		if err := r.Format(c.out); err != nil {
			return err
		}
	}
	if err != nil {
		return err
	}
	s := harness.Summarize(rs)
	fmt.Fprintf(c.out, "%v (%d ticks in %v)\n", s, h.Now(), time.Since(start).Round(time.Millisecond))
	if !s.OK() {
		return errFailed
	}
	return nil
}

func newRunCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := runConfig{
		rootConfig: rootConfig,
		out:        out,
	}

	fs := flag.NewFlagSet("uartsha run", flag.ExitOnError)
	fs.StringVar(&cfg.device, "device", "accel", "device model: accel or loopback")
	fs.Uint64Var(&cfg.latency, "latency", 0, "device response latency, in clock cycles")
	fs.IntVar(&cfg.workers, "workers", 1, "simulation goroutines, 0 for GOMAXPROCS")
	fs.IntVar(&cfg.random, "random", 0, "number of random vectors to add")
	fs.Int64Var(&cfg.seed, "seed", 0, "random seed, 0 for a time based seed")
	fs.StringVar(&cfg.suite, "suite", "", "TOML vector suite to add")
	fs.Uint64Var(&cfg.timeout, "timeout", 0, "receive timeout in ticks, 0 for two frames")
	fs.Uint64Var(&cfg.settle, "settle", 0, "idle ticks after each case, to catch extra bytes")
	fs.BoolVar(&cfg.quiet, "q", false, "only report failed cases")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "run",
		ShortUsage: "uartsha run [flags]",
		ShortHelp:  "Run test vectors against a simulated device.",
		LongHelp: `Run the directed vectors, plus optional random and TOML suite vectors,
against a simulated device and report every case. Exits with status 1 if any
case failed.

A suite file lists vectors as text or hex payloads:

  [[vector]]
  name = "abc"
  text = "abc"

  [[vector]]
  name = "zeros"
  hex = "00000000"`,
		FlagSet: fs,
		Options: []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:    cfg.Exec,
	}
}
