// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits and device
// models.
//
package hwtest

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/db47h/uartsha/hwlib"
	"github.com/db47h/uartsha/hwsim"
)

// identity connections: "a=a, b=b, ..."
func connString(pins ...[]string) string {
	var b strings.Builder
	for _, ps := range pins {
		for _, n := range ps {
			if b.Len() > 0 {
				b.WriteString(", ")
			}
			b.WriteString(n + "=" + n)
		}
	}
	return b.String()
}

// pinList rebuilds an IO spec from a list of pin names, collapsing buses.
func pinList(in []string) string {
	size := make(map[string]int)
	var items []string
	for _, n := range in {
		b := strings.IndexByte(n, '[')
		if b < 0 {
			items = append(items, n)
			continue
		}
		name := n[:b]
		idx, err := strconv.Atoi(n[b+1 : len(n)-1])
		if err != nil {
			panic(err)
		}
		if _, ok := size[name]; !ok {
			items = append(items, name)
		}
		if idx+1 > size[name] {
			size[name] = idx + 1
		}
	}
	for i, n := range items {
		if sz, ok := size[n]; ok {
			items[i] = n + "[" + strconv.Itoa(sz) + "]"
		}
	}
	return strings.Join(items, ", ")
}

// ComparePart takes two parts and compares their outputs given the same
// inputs, over a single clock cycle per input combination. Both parts must
// have the same Input/Output interface.
//
func ComparePart(t *testing.T, spc uint, part1 hwsim.NewPartFn, part2 hwsim.NewPartFn) {
	t.Helper()

	ps1 := part1("")
	conns := connString(ps1.Inputs, ps1.Outputs)
	ps1, ps2 := part1(conns), part2(conns)

	if strings.Join(ps1.Inputs, ",") != strings.Join(ps2.Inputs, ",") {
		t.Fatalf("input mismatch: %v != %v", ps1.Inputs, ps2.Inputs)
	}
	if strings.Join(ps1.Outputs, ",") != strings.Join(ps2.Outputs, ",") {
		t.Fatalf("output mismatch: %v != %v", ps1.Outputs, ps2.Outputs)
	}

	inputs := make([]bool, len(ps1.Inputs))
	outputs := make([][2]bool, len(ps1.Outputs))

	// wrap each part in a chip with its own set of probes
	wrap := func(name string, p hwsim.Part, k int) hwsim.NewPartFn {
		parts := hwsim.Parts{p}
		for i, o := range p.Outputs {
			i := i
			parts = append(parts, hwlib.Output(func(b bool) { outputs[i][k] = b })("in="+o))
		}
		w, err := hwsim.Chip(name, pinList(p.Inputs), "", parts...)
		if err != nil {
			t.Fatal(err)
		}
		return w
	}
	w1, w2 := wrap("wrapper1", ps1, 0), wrap("wrapper2", ps2, 1)

	var parts hwsim.Parts
	for i, n := range ps1.Inputs {
		i := i
		parts = append(parts, hwlib.Input(func() bool { return inputs[i] })("out="+n))
	}
	cs := connString(ps1.Inputs)
	parts = append(parts, w1(cs), w2(cs))

	c, err := hwsim.NewCircuit(0, spc, parts...)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Dispose()

	check := func() {
		t.Helper()
		c.TickTock()
		for o, out := range outputs {
			if out[0] == out[1] {
				continue
			}
			var b strings.Builder
			for i, n := range ps1.Inputs {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(n + "=" + strconv.FormatBool(inputs[i]))
			}
			t.Fatalf("%s => %s: expected %v, got %v", b.String(), ps1.Outputs[o], out[0], out[1])
		}
	}

	start := time.Now()
	r := rand.New(rand.NewSource(start.UnixNano()))

	// settle, then all 0, all 1
	c.TickTock()
	check()
	for i := range inputs {
		inputs[i] = true
	}
	check()

	iter := len(inputs)
	if iter > 12 {
		iter = 12
	}
	for n := 1 << uint(iter); n > 0; n-- {
		for i := range inputs {
			inputs[i] = r.Int63()&1 != 0
		}
		check()
	}

	elapsed := time.Since(start)
	t.Logf("%d components. %d steps in %v. %d clock cycles => %.2f Hz", c.Size(), c.Steps(), elapsed, c.Cycles(),
		float64(c.Cycles())/elapsed.Seconds())
}
