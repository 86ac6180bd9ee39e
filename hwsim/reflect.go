// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// Updater is the interface that custom components built using reflection must
// implement. See MakePart.
//
type Updater interface {
	Update(c *Circuit)
}

type pinField struct {
	index int    // field index
	name  string // pin or bus name
	size  int    // bus size, -1 for a single pin
	input bool
}

// MakePart wraps an Updater into a part. The newFn function must return a
// pointer to a new struct instance; it is called once to inspect the struct
// type and then once every time the part is mounted.
//
// Input/output pins are identified by field tags. The field tag must be
// `hw:"in"` or `hw:"out"` to identify input and output pins. By default, the
// pin name is the field name in lowercase. A specific pin name can be forced
// by adding it in the tag: `hw:"in,pin_name"`.
//
// Pin fields must be of type int and are set to the pin numbers allocated in
// the circuit. Buses must be arrays of int.
//
// The part name defaults to the struct type name.
//
func MakePart(newFn func() Updater) *PartSpec {
	typ := reflect.TypeOf(newFn())
	if typ.Kind() != reflect.Ptr || typ.Elem().Kind() != reflect.Struct {
		panic(errors.Errorf("unsupported type %v: must be a pointer to a struct", typ))
	}
	typ = typ.Elem()

	fields := pinFields(typ)
	sp := &PartSpec{Name: typ.Name()}
	for _, f := range fields {
		pins := []string{f.name}
		if f.size >= 0 {
			pins = pins[:0]
			for i := 0; i < f.size; i++ {
				pins = append(pins, BusPinName(f.name, i))
			}
		}
		if f.input {
			sp.Inputs = append(sp.Inputs, pins...)
		} else {
			sp.Outputs = append(sp.Outputs, pins...)
		}
	}

	sp.Mount = func(s *Socket) []Component {
		u := newFn()
		e := reflect.ValueOf(u).Elem()
		for _, f := range fields {
			fv := e.Field(f.index)
			if f.size < 0 {
				fv.SetInt(int64(s.Pin(f.name)))
				continue
			}
			for i := 0; i < f.size; i++ {
				fv.Index(i).SetInt(int64(s.Pin(BusPinName(f.name, i))))
			}
		}
		return []Component{u.Update}
	}
	return sp
}

func pinFields(typ reflect.Type) []pinField {
	var fields []pinField
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		pf := pinField{index: i, name: strings.ToLower(f.Name), size: -1}
		tv := strings.Split(tag, ",")
		if len(tv) > 2 {
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}
		if len(tv) == 2 && tv[1] != "" {
			pf.name = tv[1]
		}
		switch tv[0] {
		case "in":
			pf.input = true
		case "out":
		default:
			panic(errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name()))
		}

		switch ft := f.Type; {
		case ft.Kind() == reflect.Int:
		case ft.Kind() == reflect.Array && ft.Elem().Kind() == reflect.Int:
			pf.size = ft.Len()
		default:
			panic(errors.Errorf("unsupported type %q for field %q in %q", ft.Kind(), f.Name, typ.Name()))
		}
		if f.PkgPath != "" {
			panic(errors.Errorf("pin field %q in %q is not exported", f.Name, typ.Name()))
		}
		fields = append(fields, pf)
	}
	return fields
}
