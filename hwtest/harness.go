// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwtest

import (
	"context"
	"testing"

	"github.com/db47h/uartsha/harness"
)

// RunVectors runs the given vectors against dev and fails t for every case
// that does not pass. It returns the results.
//
func RunVectors(t *testing.T, dev harness.Device, cfg harness.Config, vs []harness.Vector) []*harness.Result {
	t.Helper()
	h, err := harness.New(dev, cfg)
	if err != nil {
		t.Fatal(err)
	}
	rs, err := h.RunAll(context.Background(), vs)
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range rs {
		if !r.Pass() {
			t.Error(r.String())
		}
	}
	if s := harness.Summarize(rs); !s.OK() {
		t.Log(s)
	}
	return rs
}
