// Package i2cdev is a Linux /dev/i2c-N bus satisfying tinygo.org/x/drivers.I2C.
//
// Transfers are plain write(2) then read(2) on the character device with the
// slave selected by I2C_SLAVE_FORCE, so the bus works even when a kernel
// driver has claimed the address.
package i2cdev

import (
	"fmt"

	"github.com/golang/glog"
	"golang.org/x/sys/unix"
	"tinygo.org/x/drivers"

	"ts7680ctl/errcode"
)

// DefaultPath is the FPGA bus on the TS-7680.
const DefaultPath = "/dev/i2c-0"

// I2C_SLAVE_FORCE from linux/i2c-dev.h.
const i2cSlaveForce = 0x0706

var _ drivers.I2C = (*Bus)(nil)

type Bus struct {
	path  string
	fd    int
	slave int // currently selected address, -1 when none
}

// Open opens path for read/write. Failure is reported as errcode.BusOpen.
func Open(path string) (*Bus, error) {
	fd, err := unix.Open(path, unix.O_RDWR, 0)
	if err != nil {
		return nil, &errcode.E{C: errcode.BusOpen, Op: "open " + path, Err: err}
	}
	return &Bus{path: path, fd: fd, slave: -1}, nil
}

// Tx selects addr when it differs from the last transfer, writes w and then
// reads len(r) bytes. Either slice may be empty.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	if b.fd < 0 {
		return &errcode.E{C: errcode.BusOpen, Op: "tx " + b.path, Msg: "bus closed"}
	}
	if err := b.selectSlave(int(addr)); err != nil {
		return err
	}
	if len(w) > 0 {
		n, err := unix.Write(b.fd, w)
		if err == nil && n != len(w) {
			err = fmt.Errorf("short write %d/%d", n, len(w))
		}
		if err != nil {
			return &errcode.E{C: errcode.IO, Op: fmt.Sprintf("write 0x%02x", addr), Err: err}
		}
	}
	if len(r) > 0 {
		n, err := unix.Read(b.fd, r)
		if err == nil && n != len(r) {
			err = fmt.Errorf("short read %d/%d", n, len(r))
		}
		if err != nil {
			return &errcode.E{C: errcode.IO, Op: fmt.Sprintf("read 0x%02x", addr), Err: err}
		}
	}
	return nil
}

func (b *Bus) selectSlave(addr int) error {
	if addr == b.slave {
		return nil
	}
	if err := unix.IoctlSetInt(b.fd, i2cSlaveForce, addr); err != nil {
		return &errcode.E{C: errcode.BusOpen, Op: fmt.Sprintf("select 0x%02x on %s", addr, b.path), Err: err}
	}
	glog.V(2).Infof("i2cdev: %s slave 0x%02x", b.path, addr)
	b.slave = addr
	return nil
}

// Close releases the descriptor. Further transfers fail.
func (b *Bus) Close() error {
	if b.fd < 0 {
		return nil
	}
	err := unix.Close(b.fd)
	b.fd = -1
	return err
}
