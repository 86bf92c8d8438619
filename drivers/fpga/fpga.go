// Package fpga talks to the TS-7680 FPGA over I2C.
//
// The FPGA exposes byte registers behind a 16-bit big-endian register
// address: a read is a 2-byte address write followed by a 1-byte read, a
// write is the address followed by the value in one 3-byte transfer.
package fpga

import (
	"fmt"

	"github.com/golang/glog"
	"tinygo.org/x/drivers"

	"ts7680ctl/errcode"
	"ts7680ctl/x/mathx"
)

const (
	AddressDefault     = 0x28
	RevisionRegDefault = 0x7f

	// DAC codes are 12 bits wide.
	DACMax = 0xfff
)

// DACPair is the (high nibble, low byte) register pair of one DAC channel.
type DACPair [2]uint16

type Config struct {
	Address     uint16
	RevisionReg uint16
	DAC         []DACPair
}

type Device struct {
	i2c  drivers.I2C
	addr uint16
	rev  uint16
	dac  []DACPair

	w [3]byte
	r [1]byte
}

func New(i2c drivers.I2C, cfg Config) *Device {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressDefault
	}
	rev := cfg.RevisionReg
	if rev == 0 {
		rev = RevisionRegDefault
	}
	return &Device{i2c: i2c, addr: addr, rev: rev, dac: cfg.DAC}
}

func (d *Device) Peek8(reg uint16) (uint8, error) {
	d.w[0] = byte(reg >> 8)
	d.w[1] = byte(reg)
	if err := d.i2c.Tx(d.addr, d.w[:2], d.r[:1]); err != nil {
		return 0, err
	}
	glog.V(2).Infof("fpga: peek 0x%04x = 0x%02x", reg, d.r[0])
	return d.r[0], nil
}

func (d *Device) Poke8(reg uint16, v uint8) error {
	d.w[0] = byte(reg >> 8)
	d.w[1] = byte(reg)
	d.w[2] = v
	glog.V(2).Infof("fpga: poke 0x%04x = 0x%02x", reg, v)
	return d.i2c.Tx(d.addr, d.w[:3], nil)
}

// Revision reads the FPGA revision register.
func (d *Device) Revision() (uint8, error) { return d.Peek8(d.rev) }

// SetDAC writes the low 12 bits of v to DAC channel ch.
func (d *Device) SetDAC(ch int, v uint32) error {
	if !mathx.Between(ch, 0, len(d.dac)-1) {
		return &errcode.E{C: errcode.InvalidParams, Op: "dac", Msg: fmt.Sprintf("no DAC channel %d", ch)}
	}
	v &= DACMax
	p := d.dac[ch]
	if err := d.Poke8(p[0], uint8(v>>8)&0xf); err != nil {
		return err
	}
	return d.Poke8(p[1], uint8(v))
}
