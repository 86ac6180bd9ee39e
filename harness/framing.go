// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package harness

import (
	"strconv"

	"github.com/db47h/uartsha/sha1"
	"github.com/pkg/errors"
)

// MaxPayload is the largest payload that fits in a single padded block.
const MaxPayload = sha1.BlockSize - 9

// Framing selects how a payload is sent on the wire.
//
type Framing int

// Supported framings.
const (
	// HashPadded sends the payload followed by the SHA-1 padding trailer, as a
	// single 64 bytes block.
	HashPadded Framing = iota
	// LengthPrefixed sends a length byte followed by the raw payload.
	LengthPrefixed
)

func (f Framing) String() string {
	switch f {
	case HashPadded:
		return "padded"
	case LengthPrefixed:
		return "length"
	}
	return "Framing(" + strconv.Itoa(int(f)) + ")"
}

// Set implements flag.Value.
//
func (f *Framing) Set(s string) error {
	switch s {
	case "padded", "hash-padded":
		*f = HashPadded
	case "length", "length-prefixed":
		*f = LengthPrefixed
	default:
		return errors.Errorf("unknown framing %q", s)
	}
	return nil
}

// A FramingError is returned for payloads that do not fit in a single block.
//
type FramingError struct {
	Len int
}

func (e *FramingError) Error() string {
	return "payload too long: " + strconv.Itoa(e.Len) + " bytes, max " + strconv.Itoa(MaxPayload)
}

// Frame returns the wire bytes for payload.
//
func Frame(f Framing, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, &FramingError{Len: len(payload)}
	}
	switch f {
	case HashPadded:
		out := make([]byte, 0, sha1.BlockSize)
		out = append(out, payload...)
		return append(out, sha1.Pad(uint64(len(payload)))...), nil
	case LengthPrefixed:
		out := make([]byte, 0, len(payload)+1)
		out = append(out, byte(len(payload)))
		return append(out, payload...), nil
	}
	return nil, errors.Errorf("unsupported framing %v", f)
}
