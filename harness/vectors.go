// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package harness

import (
	"encoding/hex"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// DirectedVectors returns the fixed regression vectors: the empty message,
// the classic "abc" and alphabet vectors, and payloads at the block limit.
//
func DirectedVectors() []Vector {
	seq := make([]byte, MaxPayload)
	for i := range seq {
		seq[i] = byte(i)
	}
	return []Vector{
		{"empty", nil},
		{"abc", []byte("abc")},
		{"alphabet", []byte("abcdefghijklmnopqrstuvwxyz")},
		{"fox", []byte("The quick brown fox jumps over the lazy dog")},
		{"max_a", []byte(strings.Repeat("a", MaxPayload))},
		{"max_seq", seq},
		{"max_ff", []byte(strings.Repeat("\xff", MaxPayload))},
	}
}

// RandomVectors returns n vectors with random payloads of 0 to MaxPayload
// bytes.
//
func RandomVectors(r *rand.Rand, n int) []Vector {
	vs := make([]Vector, n)
	for i := range vs {
		p := make([]byte, r.Intn(MaxPayload+1))
		r.Read(p)
		vs[i] = Vector{Name: "random_" + strconv.Itoa(i), Payload: p}
	}
	return vs
}

type suiteFile struct {
	Vectors []suiteVector `toml:"vector"`
}

type suiteVector struct {
	Name string `toml:"name"`
	Text string `toml:"text"`
	Hex  string `toml:"hex"`
}

// LoadSuite reads a TOML vector suite:
//
//	[[vector]]
//	name = "abc"
//	text = "abc"
//
//	[[vector]]
//	name = "zeros"
//	hex = "00000000"
//
func LoadSuite(path string) ([]Vector, error) {
	var f suiteFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrap(err, "load suite")
	}
	vs, err := f.vectors()
	return vs, errors.Wrap(err, path)
}

// ReadSuite is like LoadSuite but reads the suite from r.
//
func ReadSuite(r io.Reader) ([]Vector, error) {
	var f suiteFile
	if _, err := toml.NewDecoder(r).Decode(&f); err != nil {
		return nil, errors.Wrap(err, "read suite")
	}
	return f.vectors()
}

func (f *suiteFile) vectors() ([]Vector, error) {
	vs := make([]Vector, 0, len(f.Vectors))
	for i, sv := range f.Vectors {
		name := strings.TrimSpace(sv.Name)
		if name == "" {
			name = "vector_" + strconv.Itoa(i)
		}
		var p []byte
		switch {
		case sv.Hex != "" && sv.Text != "":
			return nil, errors.Errorf("%s: both text and hex set", name)
		case sv.Hex != "":
			var err error
			if p, err = hex.DecodeString(strings.Join(strings.Fields(sv.Hex), "")); err != nil {
				return nil, errors.Wrap(err, name)
			}
		default:
			p = []byte(sv.Text)
		}
		if len(p) > MaxPayload {
			return nil, errors.Wrap(&FramingError{Len: len(p)}, name)
		}
		vs = append(vs, Vector{Name: name, Payload: p})
	}
	return vs, nil
}
