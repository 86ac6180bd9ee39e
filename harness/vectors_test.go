package harness

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestDirectedVectors(t *testing.T) {
	names := make(map[string]bool)
	for _, v := range DirectedVectors() {
		require.False(t, names[v.Name], "duplicate name %s", v.Name)
		names[v.Name] = true
		require.LessOrEqual(t, len(v.Payload), MaxPayload)
	}
	require.True(t, names["empty"])
	require.True(t, names["max_seq"])
}

func TestRandomVectors(t *testing.T) {
	a := RandomVectors(rand.New(rand.NewSource(42)), 100)
	b := RandomVectors(rand.New(rand.NewSource(42)), 100)
	require.Equal(t, a, b)
	require.Len(t, a, 100)
	for _, v := range a {
		require.LessOrEqual(t, len(v.Payload), MaxPayload)
	}
	require.Equal(t, "random_7", a[7].Name)
}

const suite = `
[[vector]]
name = "abc"
text = "abc"

[[vector]]
name = "zeros"
hex = "00 00 00 00"

[[vector]]
text = ""
`

func TestReadSuite(t *testing.T) {
	vs, err := ReadSuite(strings.NewReader(suite))
	require.NoError(t, err)
	require.Equal(t, []Vector{
		{"abc", []byte("abc")},
		{"zeros", []byte{0, 0, 0, 0}},
		{"vector_2", []byte{}},
	}, vs)

	for _, s := range []string{
		"[[vector]]\nname = \"both\"\ntext = \"a\"\nhex = \"61\"\n",
		"[[vector]]\nhex = \"6\"\n",
		"[[vector]]\ntext = \"" + strings.Repeat("x", 56) + "\"\n",
		"[[vector]\n",
	} {
		_, err := ReadSuite(strings.NewReader(s))
		require.Error(t, err, s)
	}
}

func TestLoadSuite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "suite.toml")
	require.NoError(t, os.WriteFile(path, []byte(suite), 0o644))
	vs, err := LoadSuite(path)
	require.NoError(t, err)
	require.Len(t, vs, 3)

	require.NoError(t, os.WriteFile(path, []byte("[[vector]]\nhex = \""+strings.Repeat("ff", 60)+"\"\n"), 0o644))
	_, err = LoadSuite(path)
	require.Equal(t, &FramingError{Len: 60}, errors.Cause(err))

	_, err = LoadSuite(filepath.Join(dir, "missing.toml"))
	require.Error(t, err)
}
