// Package devmem maps fixed physical register blocks through /dev/mem and
// exposes them as typed 32-bit register windows.
//
// Every window is owned by a Session. Closing the session unmaps all of its
// windows and closes the backing handle, so callers defer a single Close on
// every path, including early failures.
package devmem

import (
	"fmt"
	"os"

	"github.com/golang/glog"
	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"ts7680ctl/errcode"
)

// DefaultPath is the physical memory device on Linux.
const DefaultPath = "/dev/mem"

// Window is a 32-bit register view of one mapped peripheral page.
// Offsets are byte offsets and must be word aligned.
type Window interface {
	Base() uint32
	Read32(off uint32) uint32
	Write32(off, v uint32)
}

// Mapping is a Window that holds a live mapping.
type Mapping interface {
	Window
	Unmap() error
}

// Memory is an open physical memory handle.
type Memory interface {
	Map(base uint32) (Mapping, error)
	Close() error
}

// Opener produces a fresh Memory handle for one acquisition.
type Opener func() (Memory, error)

// PathOpener opens path (normally /dev/mem) with O_RDWR|O_SYNC.
func PathOpener(path string) Opener {
	return func() (Memory, error) { return Open(path) }
}

// File is a Memory backed by a physical memory device file.
type File struct {
	f    *os.File
	page int
}

// Open opens the physical memory device. Failure is reported as
// errcode.DeviceOpen.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, errcode.Wrap(errcode.DeviceOpen, "devmem", err)
	}
	return &File{f: f, page: unix.Getpagesize()}, nil
}

// Map maps one page at base. Failure is reported as errcode.MapFailed.
func (m *File) Map(base uint32) (Mapping, error) {
	b, err := unix.Mmap(int(m.f.Fd()), int64(base), m.page,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, &errcode.E{C: errcode.MapFailed, Op: fmt.Sprintf("map 0x%08x", base), Err: err}
	}
	glog.V(2).Infof("devmem: mapped 0x%08x (%d bytes)", base, len(b))
	return &mmapping{Regs: NewRegs(base, b)}, nil
}

// Close closes the device handle.
func (m *File) Close() error { return m.f.Close() }

type mmapping struct{ *Regs }

func (m *mmapping) Unmap() error {
	if m.mem == nil {
		return nil
	}
	err := unix.Munmap(m.mem)
	m.mem = nil
	return err
}

// Session owns one Memory handle and the windows mapped through it.
type Session struct {
	mem  Memory
	maps []Mapping
}

// Begin opens a session using open.
func Begin(open Opener) (*Session, error) {
	mem, err := open()
	if err != nil {
		return nil, err
	}
	return &Session{mem: mem}, nil
}

// Map maps base and records the mapping for release by Close.
func (s *Session) Map(base uint32) (Window, error) {
	m, err := s.mem.Map(base)
	if err != nil {
		return nil, err
	}
	s.maps = append(s.maps, m)
	return m, nil
}

// Close unmaps every window in reverse order and closes the handle.
// It is safe to call more than once.
func (s *Session) Close() error {
	var err error
	for i := len(s.maps) - 1; i >= 0; i-- {
		err = multierr.Append(err, s.maps[i].Unmap())
	}
	s.maps = nil
	if s.mem != nil {
		err = multierr.Append(err, s.mem.Close())
		s.mem = nil
	}
	return err
}
