// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// A Connection connects the pin PP of a part to the wire CP of its host chip.
//
type Connection struct {
	PP string
	CP string
}

// IO expands an input or output specification like "a, b, bus[2]" to
// individual pin names:
//
//	IO("in[2], sel") // returns []string{"in[0]", "in[1]", "sel"}
//
// It panics if spec is malformed.
//
func IO(spec string) []string {
	pins, err := ParseIOSpec(spec)
	if err != nil {
		panic(err)
	}
	return pins
}

// ParseIOSpec is like IO but returns an error instead of panicking.
//
func ParseIOSpec(spec string) ([]string, error) {
	var out []string
	for _, item := range splitList(spec) {
		name, size := item, -1
		if i := strings.IndexByte(item, '['); i >= 0 {
			if !strings.HasSuffix(item, "]") {
				return nil, parseError(spec, item, "missing close bracket")
			}
			n, err := strconv.Atoi(item[i+1 : len(item)-1])
			if err != nil || n <= 0 {
				return nil, parseError(spec, item, "invalid bus size")
			}
			name, size = item[:i], n
		}
		if !isIdent(name) {
			return nil, parseError(spec, item, "expected pin name")
		}
		if size < 0 {
			out = append(out, name)
			continue
		}
		for i := 0; i < size; i++ {
			out = append(out, BusPinName(name, i))
		}
	}
	return out, nil
}

// ParseConnections parses a connection configuration string of the form
// "partPin=chipWire, ...". Bus ranges are expanded:
//
//	"a[0..1]=x[2..3]"   // a[0]=x[2], a[1]=x[3]
//	"a[0..1]=true"      // a[0]=true, a[1]=true
//	"out=x[0..1]"       // fan-out: out=x[0], out=x[1]
//
func ParseConnections(c string) ([]Connection, error) {
	var out []Connection
	for _, item := range splitList(c) {
		i := strings.IndexByte(item, '=')
		if i < 0 {
			return nil, parseError(c, item, "expected '='")
		}
		k, v := strings.TrimSpace(item[:i]), strings.TrimSpace(item[i+1:])
		if k == "" || v == "" {
			return nil, parseError(c, item, "invalid pin mapping")
		}
		ks, err := expandRange(k)
		if err != nil {
			return nil, errors.Wrap(err, "expand key "+k)
		}
		vs, err := expandRange(v)
		if err != nil {
			return nil, errors.Wrap(err, "expand value "+v)
		}
		switch {
		case len(ks) == len(vs):
			for i := range ks {
				out = append(out, Connection{ks[i], vs[i]})
			}
		case len(ks) == 1:
			for _, v := range vs {
				out = append(out, Connection{ks[0], v})
			}
		case len(vs) == 1:
			for _, k := range ks {
				out = append(out, Connection{k, vs[0]})
			}
		default:
			return nil, parseError(c, item, "pin count mismatch in pin mapping")
		}
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

func expandRange(name string) ([]string, error) {
	i := strings.IndexRune(name, '[')
	if i < 0 {
		if !isIdent(name) {
			return nil, errors.New("invalid pin name " + name)
		}
		return []string{name}, nil
	}
	bus := name[:i]
	if bus == "" {
		return nil, errors.New("empty bus name")
	}
	n := name[i+1:]
	j := strings.IndexRune(n, ']')
	if j < 0 {
		return nil, errors.New("no terminating ] in bus range")
	}
	n = n[:j]
	i = strings.Index(n, "..")
	if i < 0 {
		idx, err := strconv.Atoi(n)
		if err != nil {
			return nil, errors.Wrap(err, "invalid bus index")
		}
		return []string{BusPinName(bus, idx)}, nil
	}
	start, err := strconv.Atoi(n[:i])
	if err != nil {
		return nil, errors.Wrap(err, "invalid range start")
	}
	end, err := strconv.Atoi(n[i+2:])
	if err != nil {
		return nil, errors.Wrap(err, "invalid range end")
	}
	if end < start {
		return nil, errors.Errorf("invalid range %d..%d", start, end)
	}
	r := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		r = append(r, BusPinName(bus, i))
	}
	return r, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

func parseError(in, item, msg string) error {
	return errors.Errorf("in %q at %q: %s", in, item, msg)
}
