// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/db47h/uartsha/harness"
	"github.com/db47h/uartsha/sha1"
	"github.com/db47h/uartsha/uart"
	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/pkg/errors"
)

type hashConfig struct {
	in  io.Reader
	out io.Writer
}

func (c *hashConfig) Exec(_ context.Context, args []string) error {
	if len(args) == 0 {
		d := sha1.New()
		if _, err := io.Copy(d, c.in); err != nil {
			return errors.Wrap(err, "read stdin")
		}
		s := d.Final()
		_, err := fmt.Fprintf(c.out, "%x  -\n", s)
		return err
	}
	for _, a := range args {
		if _, err := fmt.Fprintf(c.out, "%x  %q\n", sha1.Sum([]byte(a)), a); err != nil {
			return err
		}
	}
	return nil
}

func newHashCmd(in io.Reader, out io.Writer) *ffcli.Command {
	cfg := hashConfig{in: in, out: out}
	return &ffcli.Command{
		Name:       "hash",
		ShortUsage: "uartsha hash [text ...]",
		ShortHelp:  "Print the SHA-1 digest of each argument, or of stdin.",
		FlagSet:    flag.NewFlagSet("uartsha hash", flag.ExitOnError),
		Exec:       cfg.Exec,
	}
}

type frameConfig struct {
	rootConfig *rootConfig
	out        io.Writer
	hex        bool
	bits       bool
}

func (c *frameConfig) Exec(_ context.Context, args []string) error {
	p := []byte(strings.Join(args, " "))
	if c.hex {
		var err error
		if p, err = hex.DecodeString(strings.Join(args, "")); err != nil {
			return errors.Wrap(err, "decode payload")
		}
	}
	wire, err := harness.Frame(c.rootConfig.framing, p)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%v framing, %d bytes:\n%s", c.rootConfig.framing, len(wire), hex.Dump(wire))
	if !c.bits {
		return nil
	}
	tpb, err := c.rootConfig.ticksPerBit()
	if err != nil {
		return err
	}
	for i, b := range wire {
		f := uart.Encode(b, tpb)
		var sb strings.Builder
		for iv, ok := f.Next(); ok; iv, ok = f.Next() {
			if iv.Line {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		fmt.Fprintf(c.out, "%3d  0x%02X  %s\n", i, b, sb.String())
	}
	return nil
}

func newFrameCmd(rootConfig *rootConfig, out io.Writer) *ffcli.Command {
	cfg := frameConfig{rootConfig: rootConfig, out: out}

	fs := flag.NewFlagSet("uartsha frame", flag.ExitOnError)
	fs.BoolVar(&cfg.hex, "x", false, "arguments are hex encoded")
	fs.BoolVar(&cfg.bits, "bits", false, "also print the line level of every bit interval, start bit first")
	rootConfig.registerFlags(fs)

	return &ffcli.Command{
		Name:       "frame",
		ShortUsage: "uartsha frame [flags] text ...",
		ShortHelp:  "Print the wire bytes of a framed message.",
		FlagSet:    fs,
		Options:    []ff.Option{ff.WithEnvVarPrefix(envPrefix)},
		Exec:       cfg.Exec,
	}
}
