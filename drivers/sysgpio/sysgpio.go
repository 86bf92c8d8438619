// Package sysgpio drives GPIO lines through the legacy /sys/class/gpio
// interface.
package sysgpio

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang/glog"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
	"periph.io/x/conn/v3/gpio"

	"ts7680ctl/errcode"
)

const DefaultRoot = "/sys/class/gpio"

type Direction string

const (
	In  Direction = "in"
	Out Direction = "out"
)

type Sysfs struct {
	root string
}

func New(root string) *Sysfs {
	if root == "" {
		root = DefaultRoot
	}
	return &Sysfs{root: root}
}

// Export makes line n available. A line that is already exported is not
// an error.
func (s *Sysfs) Export(n int) error {
	err := s.write(filepath.Join(s.root, "export"), strconv.Itoa(n))
	if errors.Is(err, unix.EBUSY) {
		glog.V(1).Infof("sysgpio: gpio%d already exported", n)
		return nil
	}
	return err
}

func (s *Sysfs) Unexport(n int) error {
	return s.write(filepath.Join(s.root, "unexport"), strconv.Itoa(n))
}

func (s *Sysfs) SetDirection(n int, d Direction) error {
	return s.write(s.line(n, "direction"), string(d))
}

func (s *Sysfs) Read(n int) (gpio.Level, error) {
	p := s.line(n, "value")
	b, err := os.ReadFile(p)
	if err != nil {
		return gpio.Low, errcode.Wrap(errcode.IO, "sysgpio", err)
	}
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return gpio.Low, &errcode.E{C: errcode.IO, Op: "sysgpio", Msg: p + ": empty value"}
	}
	return gpio.Level(b[0] != '0'), nil
}

func (s *Sysfs) Write(n int, l gpio.Level) error {
	v := "0"
	if l == gpio.High {
		v = "1"
	}
	return s.write(s.line(n, "value"), v)
}

// With exports n, runs fn and unexports n again. The unexport always runs
// once the export succeeded; its error is combined with fn's.
func (s *Sysfs) With(n int, fn func() error) (err error) {
	if err := s.Export(n); err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, s.Unexport(n)) }()
	return fn()
}

func (s *Sysfs) line(n int, attr string) string {
	return filepath.Join(s.root, fmt.Sprintf("gpio%d", n), attr)
}

func (s *Sysfs) write(path, v string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return errcode.Wrap(errcode.IO, "sysgpio", err)
	}
	_, err = f.WriteString(v)
	err = multierr.Append(err, f.Close())
	if err != nil {
		return errcode.Wrap(errcode.IO, "sysgpio", err)
	}
	glog.V(2).Infof("sysgpio: %s <- %s", path, v)
	return nil
}
