// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package sha1 implements the SHA-1 hash engine used as the reference oracle
// for the accelerator.
//
// Unlike crypto/sha1, Final is destructive: it returns the digest and resets
// the Digest to its initial state so that it can be reused right away. Sum
// implements the non-destructive hash.Hash contract.
//
package sha1

import (
	"encoding/binary"
	"hash"
	"math/bits"
)

// Size is the size of a SHA-1 digest in bytes.
const Size = 20

// BlockSize is the block size of SHA-1 in bytes.
const BlockSize = 64

// IV holds the initial accumulator words.
var IV = [5]uint32{0x67452301, 0xefcdab89, 0x98badcfe, 0x10325476, 0xc3d2e1f0}

const (
	k0 = 0x5a827999
	k1 = 0x6ed9eba1
	k2 = 0x8f1bbcdc
	k3 = 0xca62c1d6
)

// Digest is a streaming SHA-1 state.
//
type Digest struct {
	h          [5]uint32
	buf        [BlockSize]byte
	n          int // len(buf) in use, always < BlockSize
	transforms uint64
}

var _ hash.Hash = (*Digest)(nil)

// New returns a new Digest in its initial state.
//
func New() *Digest {
	d := new(Digest)
	d.Reset()
	return d
}

// Reset reloads the initial constants and clears any buffered input.
//
func (d *Digest) Reset() {
	d.h = IV
	d.n = 0
	d.transforms = 0
}

// Size returns Size.
func (d *Digest) Size() int { return Size }

// BlockSize returns BlockSize.
func (d *Digest) BlockSize() int { return BlockSize }

// Transforms returns the number of blocks compressed since the last reset.
//
func (d *Digest) Transforms() uint64 { return d.transforms }

// Buffered returns the number of pending bytes not yet compressed.
//
func (d *Digest) Buffered() int { return d.n }

// Update feeds p into the hash. Every time 64 bytes have accumulated, they are
// compressed into the accumulator.
//
func (d *Digest) Update(p []byte) {
	for len(p) > 0 {
		c := copy(d.buf[d.n:], p)
		d.n += c
		p = p[c:]
		if d.n < BlockSize {
			return
		}
		Block(&d.h, d.buf[:])
		d.transforms++
		d.n = 0
	}
}

// Write implements io.Writer. It never returns an error.
//
func (d *Digest) Write(p []byte) (int, error) {
	d.Update(p)
	return len(p), nil
}

// Final pads the message, returns its digest and resets d.
//
func (d *Digest) Final() [Size]byte {
	total := (d.transforms*BlockSize + uint64(d.n)) * 8

	d.buf[d.n] = 0x80
	d.n++
	for i := d.n; i < BlockSize; i++ {
		d.buf[i] = 0
	}
	// not enough room left for the length field.
	if d.n > BlockSize-8 {
		Block(&d.h, d.buf[:])
		d.transforms++
		for i := 0; i < BlockSize-8; i++ {
			d.buf[i] = 0
		}
	}
	binary.BigEndian.PutUint64(d.buf[BlockSize-8:], total)
	Block(&d.h, d.buf[:])
	d.transforms++

	out := d.words()
	d.Reset()
	return out
}

// Sum appends the digest of the data written so far to b without changing the
// state of d.
//
func (d *Digest) Sum(b []byte) []byte {
	d0 := *d
	s := d0.Final()
	return append(b, s[:]...)
}

// Words returns the current accumulator as big-endian bytes, with no padding
// applied.
//
func (d *Digest) Words() [Size]byte {
	return d.words()
}

func (d *Digest) words() [Size]byte {
	var out [Size]byte
	for i, w := range d.h {
		binary.BigEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Sum returns the SHA-1 digest of data.
//
func Sum(data []byte) [Size]byte {
	var d Digest
	d.Reset()
	d.Update(data)
	return d.Final()
}

// Pad returns the padding trailer for a message of n bytes: a 0x80 byte, zeros
// until the length is 56 mod 64, and the message length in bits as a 64 bit
// big-endian integer.
//
func Pad(n uint64) []byte {
	t := 56 - n%BlockSize
	if n%BlockSize >= 56 {
		t += BlockSize
	}
	p := make([]byte, t+8)
	p[0] = 0x80
	binary.BigEndian.PutUint64(p[t:], n*8)
	return p
}

// Block compresses every whole 64-byte block of p into h. Trailing bytes are
// ignored.
//
func Block(h *[5]uint32, p []byte) {
	var w [16]uint32

	for ; len(p) >= BlockSize; p = p[BlockSize:] {
		for i := range w {
			w[i] = binary.BigEndian.Uint32(p[i*4:])
		}
		a, b, c, d, e := h[0], h[1], h[2], h[3], h[4]

		for i := 0; i < 80; i++ {
			if i >= 16 {
				x := w[(i-3)&15] ^ w[(i-8)&15] ^ w[(i-14)&15] ^ w[i&15]
				w[i&15] = bits.RotateLeft32(x, 1)
			}
			var f, k uint32
			switch {
			case i < 20:
				f, k = b&c|^b&d, k0
			case i < 40:
				f, k = b^c^d, k1
			case i < 60:
				f, k = b&c|b&d|c&d, k2
			default:
				f, k = b^c^d, k3
			}
			t := bits.RotateLeft32(a, 5) + f + e + w[i&15] + k
			a, b, c, d, e = t, a, bits.RotateLeft32(b, 30), c, d
		}

		h[0] += a
		h[1] += b
		h[2] += c
		h[3] += d
		h[4] += e
	}
}
