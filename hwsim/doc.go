// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package hwsim provides a naive clocked circuit simulator and an API to compose
basic components (logic gates, flip flops, behavioral models) into more
complex ones.

It is used to build reference models of the serial accelerator: the circuit
advances in steps, and a clock signal rises every SPC() steps. Components see
the state of the previous step only (every wire is double buffered), which
gives every component a one step propagation delay.

*/
package hwsim
