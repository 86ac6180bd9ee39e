// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
uartsha runs SHA-1 test vectors against simulated UART SHA-1 accelerators.

Usage:

	uartsha run -framing length -random 100
	uartsha hash abc
	uartsha frame -bits abc
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/golang/glog"
	"github.com/peterbourgon/ff/v3/ffcli"
	"github.com/pkg/errors"
)

func newCommand(in io.Reader, out io.Writer) *ffcli.Command {
	rootCmd, cfg := newRootCmd()
	rootCmd.Subcommands = []*ffcli.Command{
		newRunCmd(cfg, out),
		newHashCmd(in, out),
		newFrameCmd(cfg, out),
	}
	return rootCmd
}

func main() {
	rootCmd := newCommand(os.Stdin, os.Stdout)
	// glog flags are set through the subcommand flag sets. Mark the default
	// set as parsed so that glog does not complain.
	_ = flag.CommandLine.Parse(nil)

	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		cancel()
	}()

	err := rootCmd.ParseAndRun(ctx, os.Args[1:])
	glog.Flush()
	switch {
	case err == nil:
	case err == errFailed:
		os.Exit(1)
	case err == flag.ErrHelp:
		fmt.Fprintln(os.Stderr, ffcli.DefaultUsageFunc(rootCmd))
		os.Exit(2)
	case errors.Cause(err) == context.Canceled:
		fmt.Fprintf(os.Stderr, "%s: cancelled\n", rootCmd.Name)
		os.Exit(1)
	default:
		fmt.Fprintf(os.Stderr, "%s: %v\n", rootCmd.Name, err)
		os.Exit(1)
	}
}
