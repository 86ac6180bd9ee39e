// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"github.com/pkg/errors"
)

type chip struct {
	PartSpec        // PartSpec for this chip
	parts    []Part // sub parts
}

func (c *chip) mount(s *Socket) []Component {
	var updaters []Component

	// outputs first, so that every wire gets the pin of its driver before any
	// reader allocates one.
	subs := make([]*Socket, len(c.parts))
	for i, p := range c.parts {
		subs[i] = newSocket(s.c)
		bindOutputs(s, subs[i], p)
	}
	for i, p := range c.parts {
		bindInputs(s, subs[i], p)
		updaters = append(updaters, p.Mount(subs[i])...)
	}
	return updaters
}

func bindOutputs(host, sub *Socket, p Part) {
	for _, o := range p.Outputs {
		n := -1
		var wires []string
		for _, cn := range p.Conns {
			if cn.PP != o {
				continue
			}
			wires = append(wires, cn.CP)
			// chip outputs are already bound by the host.
			if hn, ok := host.m[cn.CP]; ok && n < 0 {
				n = hn
			}
		}
		if n < 0 {
			n = host.c.allocPin()
		}
		sub.m[o] = n
		for _, w := range wires {
			if _, ok := host.m[w]; !ok {
				host.m[w] = n
			}
		}
	}
}

func bindInputs(host, sub *Socket, p Part) {
	for _, i := range p.Inputs {
		// wire unknown pins to False.
		sub.m[i] = cstFalse
		for _, cn := range p.Conns {
			if cn.PP == i {
				sub.m[i] = host.PinOrNew(cn.CP)
				break
			}
		}
	}
}

// Chip composes existing parts into a new part packaged into a chip.
// The pin names specified as inputs and outputs will be the inputs
// and outputs of the chip.
//
// An Xor gate could be created like this:
//
//	xor, err := Chip("XOR", "a, b", "out",
//		hwlib.Nand("a=a, b=b, out=nandAB"),
//		hwlib.Nand("a=a, b=nandAB, out=w0"),
//		hwlib.Nand("a=b, b=nandAB, out=w1"),
//		hwlib.Nand("a=w0, b=w1, out=out"),
//	)
//
// The returned value is a function of type NewPartFn that can be used to
// compose the new part with others into other chips:
//
//	xnor, err := Chip("XNOR", "a, b", "out",
//		xor("a=a, b=b, out=xorAB"),
//		hwlib.Not("in=xorAB, out=out"),
//	)
//
// Unconnected part inputs are wired to false. Chip checks that every wire
// read by a part is driven by exactly one output, a chip input or a constant.
//
func Chip(name string, inputs string, outputs string, parts ...Part) (NewPartFn, error) {
	ins, err := ParseIOSpec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" inputs")
	}
	outs, err := ParseIOSpec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name+" outputs")
	}
	if err = checkWiring(ins, outs, parts); err != nil {
		return nil, err
	}

	c := &chip{
		PartSpec: PartSpec{
			Name:    name,
			Inputs:  ins,
			Outputs: outs,
		},
		parts: parts,
	}
	c.PartSpec.Mount = c.mount
	return c.PartSpec.NewPart, nil
}

func checkWiring(ins, outs []string, parts []Part) error {
	chipIn := make(map[string]bool, len(ins))
	for _, i := range ins {
		chipIn[i] = true
	}
	chipOut := make(map[string]bool, len(outs))
	for _, o := range outs {
		chipOut[o] = true
	}

	drivers := make(map[string]string)
	var readers []string

	for _, p := range parts {
		seen := make(map[string]bool)
		fanout := make(map[string]int)
		for _, cn := range p.Conns {
			pn := p.Name + "." + cn.PP
			switch {
			case p.isInput(cn.PP):
				if seen[cn.PP] {
					return errors.New(pn + ": input pin connected to more than one wire")
				}
				seen[cn.PP] = true
				readers = append(readers, cn.CP)
			case p.isOutput(cn.PP):
				prefix := pn + ":" + cn.CP + ": "
				switch {
				case cn.CP == True || cn.CP == False:
					return errors.New(prefix + "output pin connected to constant " + cn.CP + " input")
				case cn.CP == Clk:
					return errors.New(prefix + "output pin connected to clock signal")
				case chipIn[cn.CP]:
					return errors.New(prefix + "chip input pin used as output")
				case drivers[cn.CP] != "":
					return errors.New(prefix + "output pin already used as output")
				}
				drivers[cn.CP] = pn
				if chipOut[cn.CP] {
					fanout[cn.PP]++
					if fanout[cn.PP] > 1 {
						return errors.New(prefix + "output pin connected to more than one chip output")
					}
				}
			default:
				return errors.New("invalid pin name " + cn.PP + " for part " + p.Name)
			}
		}
	}

	for _, w := range readers {
		if !isConstant(w) && !chipIn[w] && drivers[w] == "" {
			return errors.New("pin " + w + " not connected to any output")
		}
	}
	for _, o := range outs {
		if drivers[o] == "" {
			return errors.New("chip output " + o + " not connected to any part output")
		}
	}
	return nil
}
