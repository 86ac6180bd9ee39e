package sha1_test

import (
	stdsha1 "crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"testing"
	"testing/quick"

	"github.com/db47h/uartsha/sha1"
	"github.com/stretchr/testify/require"
)

var vectors = []struct {
	in  string
	out string
}{
	{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
	{"abc", "a9993e364706816aba3e25717850c26c9cd0d89d"},
	{"abcdefghijklmnopqrstuvwxyz", "32d10c7b8cf96570ca04ce37f2a19d84240d3a89"},
	{"abcdbcdecdefdefgefghfghighijhijkijkljklmklmnlmnomnopnopq", "84983e441c3bd26ebaae4aa1f95129e5e54670f1"},
	{"The quick brown fox jumps over the lazy dog", "2fd4e1c67a2d28fced849ee1bb76e7391b93eb12"},
}

func TestSum(t *testing.T) {
	for _, v := range vectors {
		s := sha1.Sum([]byte(v.in))
		require.Equal(t, v.out, hex.EncodeToString(s[:]), "input %q", v.in)
	}
}

func TestDigest_streaming(t *testing.T) {
	for _, v := range vectors {
		d := sha1.New()
		for i := 0; i < len(v.in); i++ {
			d.Update([]byte{v.in[i]})
			require.Less(t, d.Buffered(), sha1.BlockSize)
		}
		s := d.Final()
		require.Equal(t, v.out, hex.EncodeToString(s[:]), "input %q", v.in)
	}
}

func TestDigest_FinalResets(t *testing.T) {
	d := sha1.New()
	d.Update([]byte("abc"))
	first := d.Final()
	require.Zero(t, d.Transforms())
	require.Zero(t, d.Buffered())
	require.Equal(t, sha1.IV, wordsOf(d.Words()))

	d.Update([]byte("abc"))
	second := d.Final()
	require.Equal(t, first, second)
}

func wordsOf(b [sha1.Size]byte) [5]uint32 {
	var w [5]uint32
	for i := range w {
		w[i] = uint32(b[i*4])<<24 | uint32(b[i*4+1])<<16 | uint32(b[i*4+2])<<8 | uint32(b[i*4+3])
	}
	return w
}

func TestDigest_transforms(t *testing.T) {
	d := sha1.New()
	d.Update(make([]byte, 130))
	require.EqualValues(t, 2, d.Transforms())
	require.Equal(t, 2, d.Buffered())
}

// Lengths around the padding boundary (55, 56, 63, 64) take the two-block path.
func TestDigest_paddingBoundary(t *testing.T) {
	for n := 50; n <= 130; n++ {
		in := []byte(strings.Repeat("a", n))
		want := stdsha1.Sum(in)
		got := sha1.Sum(in)
		require.Equal(t, want, got, "length %d", n)
	}
}

func TestDigest_hashHash(t *testing.T) {
	d := sha1.New()
	_, err := d.Write([]byte("ab"))
	require.NoError(t, err)
	s1 := d.Sum(nil)
	// Sum must not alter the state
	_, _ = d.Write([]byte("c"))
	s2 := d.Sum([]byte{0xff})
	want := stdsha1.Sum([]byte("abc"))
	require.Equal(t, want[:], s2[1:])
	require.Equal(t, byte(0xff), s2[0])
	ab := stdsha1.Sum([]byte("ab"))
	require.Equal(t, ab[:], s1)
	require.Equal(t, sha1.Size, d.Size())
	require.Equal(t, sha1.BlockSize, d.BlockSize())
}

func TestSum_quick(t *testing.T) {
	f := func(p []byte) bool {
		return sha1.Sum(p) == stdsha1.Sum(p)
	}
	if err := quick.Check(f, nil); err != nil {
		t.Fatal(err)
	}
}

func TestPad(t *testing.T) {
	for n := uint64(0); n < 200; n++ {
		p := sha1.Pad(n)
		require.Zero(t, (n+uint64(len(p)))%sha1.BlockSize, "length %d", n)
		require.Equal(t, byte(0x80), p[0])
	}
	p := sha1.Pad(3)
	require.Len(t, p, 61)
	require.Equal(t, byte(0x18), p[60])
}

func TestBlock(t *testing.T) {
	msg := append([]byte("abc"), sha1.Pad(3)...)
	h := sha1.IV
	sha1.Block(&h, msg)
	want := sha1.Sum([]byte("abc"))
	require.Equal(t, wordsOf(want), h)
}

func ExampleDigest_Final() {
	d := sha1.New()
	d.Update([]byte("a"))
	d.Update([]byte("bc"))
	fmt.Printf("%x\n", d.Final())
	// the digest is ready for reuse
	fmt.Printf("%x\n", d.Final())
	// Output:
	// a9993e364706816aba3e25717850c26c9cd0d89d
	// da39a3ee5e6b4b0d3255bfef95601890afd80709
}
