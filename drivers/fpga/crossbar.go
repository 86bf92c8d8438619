package fpga

import (
	"fmt"

	"ts7680ctl/errcode"
)

// Pin is one crossbar table entry. For outputs Addr is the FPGA register
// that selects the source; for inputs it is the selector value.
type Pin struct {
	Name string
	Addr uint16
}

// Crossbar routes FPGA inputs to outputs. Each output register keeps the
// selected input in its top Size bits; the bits in Mask are preserved when
// the selection changes.
type Crossbar struct {
	dev     *Device
	size    uint8
	mask    uint8
	inputs  []Pin
	outputs []Pin
}

func NewCrossbar(dev *Device, size, mask uint8, inputs, outputs []Pin) *Crossbar {
	return &Crossbar{dev: dev, size: size, mask: mask, inputs: inputs, outputs: outputs}
}

// Route is one output with its current source.
type Route struct {
	Output, Input string
}

func (c *Crossbar) shift() uint8 { return 8 - c.size }

// Get returns the name of the input currently driving output.
func (c *Crossbar) Get(output string) (string, error) {
	o, ok := find(c.outputs, output)
	if !ok {
		return "", unknown("cbar get", output)
	}
	return c.selected(o)
}

// Set routes input to output.
func (c *Crossbar) Set(output, input string) error {
	o, ok := find(c.outputs, output)
	if !ok {
		return unknown("cbar set", output)
	}
	in, ok := find(c.inputs, input)
	if !ok {
		return unknown("cbar set", input)
	}
	cur, err := c.dev.Peek8(o.Addr)
	if err != nil {
		return err
	}
	return c.dev.Poke8(o.Addr, uint8(in.Addr)<<c.shift()|cur&c.mask)
}

// Dump lists every output with its current source, in table order.
func (c *Crossbar) Dump() ([]Route, error) {
	out := make([]Route, 0, len(c.outputs))
	for _, o := range c.outputs {
		in, err := c.selected(o)
		if err != nil {
			return out, err
		}
		out = append(out, Route{Output: o.Name, Input: in})
	}
	return out, nil
}

func (c *Crossbar) selected(o Pin) (string, error) {
	v, err := c.dev.Peek8(o.Addr)
	if err != nil {
		return "", err
	}
	sel := uint16(v >> c.shift())
	for _, in := range c.inputs {
		if in.Addr == sel {
			return in.Name, nil
		}
	}
	return fmt.Sprintf("unknown(0x%02x)", sel), nil
}

func find(pins []Pin, name string) (Pin, bool) {
	for _, p := range pins {
		if p.Name == name {
			return p, true
		}
	}
	return Pin{}, false
}

func unknown(op, name string) error {
	return &errcode.E{C: errcode.UnknownPin, Op: op, Msg: name}
}
