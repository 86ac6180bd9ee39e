package hwtest_test

import (
	"testing"

	hw "github.com/db47h/uartsha/hwsim"
	hl "github.com/db47h/uartsha/hwlib"
	"github.com/db47h/uartsha/hwtest"
)

func TestComparePart(t *testing.T) {
	or, err := hw.Chip("custom_or", "a,b", "out",
		hl.Nand("a=a, b=a, out=notA"),
		hl.Nand("a=b, b=b, out=notB"),
		hl.Nand("a=notA, b=notB, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 4, hl.Or, or)
}

func TestComparePart_mux(t *testing.T) {
	mux, err := hw.Chip("custom_mux", "a, b, sel", "out",
		hl.Not("in=sel, out=notSel"),
		hl.And("a=a, b=notSel, out=w0"),
		hl.And("a=b, b=sel, out=w1"),
		hl.Or("a=w0, b=w1, out=out"),
	)
	if err != nil {
		t.Fatal(err)
	}
	hwtest.ComparePart(t, 8, hl.Mux, mux)
}
