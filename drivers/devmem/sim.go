package devmem

import (
	"fmt"

	"ts7680ctl/errcode"
)

// SimPageSize is the window size a Sim hands out.
const SimPageSize = 4096

// Sim is an in-memory stand-in for the physical memory device. It keeps a
// register file per mapped base, lets tests script reads and observe writes,
// and counts every acquire and release so resource balance can be checked.
type Sim struct {
	OpenErr error            // returned by Open when set
	MapErr  map[uint32]error // per-base Map failures

	Opens, Closes, Maps, Unmaps int

	windows map[uint32]*SimWindow
}

func NewSim() *Sim {
	return &Sim{MapErr: map[uint32]error{}, windows: map[uint32]*SimWindow{}}
}

// Window returns the register file for base, creating it on first use.
// The same file persists across sessions.
func (s *Sim) Window(base uint32) *SimWindow {
	w, ok := s.windows[base]
	if !ok {
		w = &SimWindow{base: base, Regs: map[uint32]uint32{}, ReadCount: map[uint32]int{}}
		s.windows[base] = w
	}
	return w
}

// Open satisfies Opener.
func (s *Sim) Open() (Memory, error) {
	if s.OpenErr != nil {
		return nil, &errcode.E{C: errcode.DeviceOpen, Op: "open sim", Err: s.OpenErr}
	}
	s.Opens++
	return &simMem{s: s}, nil
}

// Balanced reports whether every open and map has been released.
func (s *Sim) Balanced() bool { return s.Opens == s.Closes && s.Maps == s.Unmaps }

type simMem struct {
	s      *Sim
	closed bool
}

func (m *simMem) Map(base uint32) (Mapping, error) {
	if err := m.s.MapErr[base]; err != nil {
		return nil, &errcode.E{C: errcode.MapFailed, Op: fmt.Sprintf("map 0x%08x", base), Err: err}
	}
	m.s.Maps++
	return &simMapping{SimWindow: m.s.Window(base), s: m.s}, nil
}

func (m *simMem) Close() error {
	if !m.closed {
		m.closed = true
		m.s.Closes++
	}
	return nil
}

type simMapping struct {
	*SimWindow
	s     *Sim
	unmap bool
}

func (m *simMapping) Unmap() error {
	if !m.unmap {
		m.unmap = true
		m.s.Unmaps++
	}
	return nil
}

// Write is one recorded register store.
type Write struct {
	Off, Val uint32
}

// SimWindow is a scripted register file.
//
// OnRead, when set, decides the value served for a read; it receives the
// stored value and the number of earlier reads of the same offset.
// OnWrite runs after every store and may mutate Regs to model side effects.
type SimWindow struct {
	base uint32

	Regs      map[uint32]uint32
	ReadCount map[uint32]int
	Writes    []Write

	OnRead  func(off, stored uint32, n int) uint32
	OnWrite func(off, v uint32)
}

func (w *SimWindow) Base() uint32 { return w.base }

func (w *SimWindow) Read32(off uint32) uint32 {
	checkOffset(w.base, off, SimPageSize)
	v := w.Regs[off]
	if w.OnRead != nil {
		v = w.OnRead(off, v, w.ReadCount[off])
	}
	w.ReadCount[off]++
	return v
}

func (w *SimWindow) Write32(off, v uint32) {
	checkOffset(w.base, off, SimPageSize)
	w.Regs[off] = v
	w.Writes = append(w.Writes, Write{Off: off, Val: v})
	if w.OnWrite != nil {
		w.OnWrite(off, v)
	}
}

// WritesTo lists the values stored to off, oldest first.
func (w *SimWindow) WritesTo(off uint32) []uint32 {
	var out []uint32
	for _, x := range w.Writes {
		if x.Off == off {
			out = append(out, x.Val)
		}
	}
	return out
}
