// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package harness

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/db47h/uartsha/sha1"
)

// A Vector is a named test payload.
//
type Vector struct {
	Name    string
	Payload []byte
}

// Byte is a byte received from the device.
type Byte struct {
	Value byte
	Tick  uint64 // arrival tick
}

// MismatchKind tells a wrong byte from a missing one.
//
type MismatchKind int

// Mismatch kinds.
const (
	MismatchValue MismatchKind = iota
	MismatchMissing
)

func (k MismatchKind) String() string {
	if k == MismatchMissing {
		return "missing"
	}
	return "value"
}

// A Mismatch is a digest byte that was not received as expected.
//
type Mismatch struct {
	Kind  MismatchKind
	Index int
	Got   byte // zero if missing
	Want  byte
	Tick  uint64 // arrival tick, zero if missing
}

func (m Mismatch) String() string {
	if m.Kind == MismatchMissing {
		return fmt.Sprintf("byte %d: missing, expected 0x%02X", m.Index, m.Want)
	}
	return fmt.Sprintf("byte %d: got 0x%02X, expected 0x%02X at tick %d", m.Index, m.Got, m.Want, m.Tick)
}

// Result is the outcome of a test case.
//
type Result struct {
	Vector     Vector
	Framing    Framing
	Expected   [sha1.Size]byte
	Received   []Byte
	Mismatches []Mismatch
	Violations []error // protocol violations seen while receiving
	Extra      []byte  // bytes received after the digest
	TimedOut   bool
	Err        error // set if the case could not be run
	Start, End uint64
}

func (r *Result) compare() {
	r.Mismatches = r.Mismatches[:0]
	for i, want := range r.Expected {
		if i >= len(r.Received) {
			r.Mismatches = append(r.Mismatches, Mismatch{Kind: MismatchMissing, Index: i, Want: want})
			continue
		}
		if got := r.Received[i]; got.Value != want {
			r.Mismatches = append(r.Mismatches, Mismatch{
				Kind:  MismatchValue,
				Index: i,
				Got:   got.Value,
				Want:  want,
				Tick:  got.Tick,
			})
		}
	}
}

// Pass returns true if the full digest was received without error.
//
func (r *Result) Pass() bool {
	return r.Err == nil && len(r.Mismatches) == 0 && len(r.Received) == sha1.Size &&
		len(r.Violations) == 0 && len(r.Extra) == 0
}

// Digest returns the received bytes.
func (r *Result) Digest() []byte {
	out := make([]byte, len(r.Received))
	for i, b := range r.Received {
		out[i] = b.Value
	}
	return out
}

// Format writes a report of r to w.
//
func (r *Result) Format(w io.Writer) error {
	var b strings.Builder
	status := "PASS"
	if !r.Pass() {
		status = "FAIL"
	}
	fmt.Fprintf(&b, "=== %s %s (%d bytes, %v)\n", status, r.Vector.Name, len(r.Vector.Payload), r.Framing)
	if r.Err != nil {
		fmt.Fprintf(&b, "    error: %v\n", r.Err)
	}
	if len(r.Vector.Payload) > 0 {
		for _, l := range strings.SplitAfter(strings.TrimRight(hex.Dump(r.Vector.Payload), "\n"), "\n") {
			b.WriteString("    ")
			b.WriteString(l)
		}
		b.WriteByte('\n')
	}
	if r.Err == nil {
		fmt.Fprintf(&b, "    expected: %x\n", r.Expected)
		fmt.Fprintf(&b, "    received: %x\n", r.Digest())
		fmt.Fprintf(&b, "    ticks:    %d..%d\n", r.Start, r.End)
	}
	for _, m := range r.Mismatches {
		fmt.Fprintf(&b, "    %v\n", m)
	}
	for _, v := range r.Violations {
		fmt.Fprintf(&b, "    %v\n", v)
	}
	if len(r.Extra) > 0 {
		fmt.Fprintf(&b, "    %d extra bytes: %x\n", len(r.Extra), r.Extra)
	}
	if r.TimedOut {
		b.WriteString("    timed out\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Result) String() string {
	var b strings.Builder
	_ = r.Format(&b)
	return b.String()
}

// Summary tallies results.
//
type Summary struct {
	Passed, Failed int
	Failures       []string
}

// Summarize returns a Summary of rs.
//
func Summarize(rs []*Result) Summary {
	var s Summary
	for _, r := range rs {
		if r.Pass() {
			s.Passed++
			continue
		}
		s.Failed++
		s.Failures = append(s.Failures, r.Vector.Name)
	}
	return s
}

// OK returns true if no test case failed.
func (s Summary) OK() bool { return s.Failed == 0 }

func (s Summary) String() string {
	str := fmt.Sprintf("%d passed, %d failed", s.Passed, s.Failed)
	if len(s.Failures) > 0 {
		str += ": " + strings.Join(s.Failures, ", ")
	}
	return str
}
