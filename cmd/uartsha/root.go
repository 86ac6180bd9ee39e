// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"flag"

	"github.com/db47h/uartsha/harness"
	"github.com/db47h/uartsha/uart"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/physic"
)

const envPrefix = "UARTSHA"

type rootConfig struct {
	tpb     uint64
	clock   physic.Frequency
	baud    physic.Frequency
	framing harness.Framing
}

func (c *rootConfig) registerFlags(fs *flag.FlagSet) {
	fs.Uint64Var(&c.tpb, "tpb", uart.DefaultTicksPerBit, "clock cycles per bit")
	fs.Var(&c.clock, "clock", "device clock frequency, e.g. 48MHz (overrides -tpb, requires -baud)")
	fs.Var(&c.baud, "baud", "serial line rate, e.g. 3MHz")
	fs.Var(&c.framing, "framing", "message framing: padded or length")
	// glog registers its flags on the default set.
	flag.CommandLine.VisitAll(func(f *flag.Flag) {
		if fs.Lookup(f.Name) == nil {
			fs.Var(f.Value, f.Name, f.Usage)
		}
	})
}

// ticksPerBit returns the bit interval, in clock cycles.
func (c *rootConfig) ticksPerBit() (uint64, error) {
	if c.clock == 0 && c.baud == 0 {
		if c.tpb == 0 {
			return 0, errors.New("ticks per bit must be > 0")
		}
		return c.tpb, nil
	}
	if c.clock <= 0 || c.baud <= 0 {
		return 0, errors.New("-clock and -baud must be set together")
	}
	tpb := c.clock / c.baud
	if tpb < 1 {
		return 0, errors.Errorf("baud rate %v too high for a %v clock", c.baud, c.clock)
	}
	if c.clock%c.baud != 0 {
		return 0, errors.Errorf("clock %v is not a multiple of the baud rate %v", c.clock, c.baud)
	}
	return uint64(tpb), nil
}

func (c *rootConfig) harnessConfig() (harness.Config, error) {
	tpb, err := c.ticksPerBit()
	if err != nil {
		return harness.Config{}, err
	}
	cfg := harness.DefaultConfig()
	cfg.TicksPerBit = tpb
	cfg.Framing = c.framing
	return cfg, nil
}

func (c *rootConfig) Exec(context.Context, []string) error {
	return flag.ErrHelp
}

func newRootCmd() (*ffcli.Command, *rootConfig) {
	var cfg rootConfig

	fs := flag.NewFlagSet("uartsha", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "uartsha",
		ShortUsage: "uartsha [flags] <subcommand>",
		ShortHelp:  "Verification tools for the UART SHA-1 accelerator.",
		LongHelp: `Verification tools for the UART SHA-1 accelerator.

Flags can also be set from the environment, prefixed with ` + envPrefix + `_,
e.g. ` + envPrefix + `_TPB=8.`,
		FlagSet: fs,
		Options: []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:    cfg.Exec,
	}, &cfg
}
