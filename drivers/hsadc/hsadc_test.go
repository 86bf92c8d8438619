package hsadc

import (
	"context"
	"testing"
	"time"

	"ts7680ctl/drivers/devmem"
)

type fakeHSADC struct {
	hs, clk *devmem.SimWindow
	stale   int // FIFO words queued before the sequence starts
	drains  int
	sleeps  []time.Duration
}

func newFake(ctrl0 uint32, stale int, fifo []uint32) *fakeHSADC {
	sim := devmem.NewSim()
	f := &fakeHSADC{hs: sim.Window(Base), clk: sim.Window(ClkCtrlBase), stale: stale}
	f.hs.Regs[regCtrl0] = ctrl0
	started := false
	next := 0
	f.hs.OnRead = func(off, v uint32, n int) uint32 {
		switch off {
		case regCtrl1:
			if started {
				return ctrl1IRQDone | ctrl1FIFOEmpty
			}
			if f.stale > 0 {
				return 0
			}
			return ctrl1FIFOEmpty
		case regFIFO:
			if !started {
				if f.stale > 0 {
					f.stale--
					f.drains++
				}
				return 0xffffffff
			}
			if next < len(fifo) {
				next++
				return fifo[next-1]
			}
			return 0
		}
		return v
	}
	f.hs.OnWrite = func(off, v uint32) {
		if off == regCtrl0Set && v == ctrl0Start {
			started = true
		}
	}
	return f
}

func (f *fakeHSADC) device() *Device {
	d := New(f.hs, f.clk)
	d.Sleep = func(t time.Duration) { f.sleeps = append(f.sleeps, t) }
	return d
}

func TestAcquireSumsTenSamples(t *testing.T) {
	fifo := []uint32{
		0x0001_0002, 0x0003_0004, 0x0005_0006, 0x0007_0008, 0xf009_f00a,
	}
	f := newFake(0, 0, fifo)
	sum, err := f.device().Acquire(context.Background())
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if want := uint32(1 + 2 + 3 + 4 + 5 + 6 + 7 + 8 + 9 + 10); sum != want {
		t.Fatalf("sum = %d want %d", sum, want)
	}
	if len(f.clk.Writes) != 0 {
		t.Fatalf("clock touched without reset: %v", f.clk.Writes)
	}
	if len(f.sleeps) != 1 {
		t.Fatalf("sleeps = %v", f.sleeps)
	}
}

func TestAcquireDrainsStaleFIFO(t *testing.T) {
	f := newFake(0, 3, nil)
	if _, err := f.device().Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if f.drains != 3 {
		t.Fatalf("drained %d", f.drains)
	}
	// 3 drain reads, 1 extra, 5 sample reads.
	if got := f.hs.ReadCount[regFIFO]; got != 3+1+FIFOWords {
		t.Fatalf("FIFO reads = %d", got)
	}
}

func TestAcquireReleasesReset(t *testing.T) {
	f := newFake(ctrl0SFTRST|ctrl0CLKGATE, 0, nil)
	if _, err := f.device().Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if got := f.clk.WritesTo(regClkHSADCSet); len(got) != 1 || got[0] != 0x70000000 {
		t.Fatalf("frac1 = %x", got)
	}
	if got := f.clk.WritesTo(regClkFrac1Clr); len(got) != 1 || got[0] != 0x8000 {
		t.Fatalf("hsadc clk = %x", got)
	}
	if got := f.hs.WritesTo(regCtrl0); len(got) != 1 || got[0] != ctrl0SFTRST {
		t.Fatalf("ctrl0 = %x", got)
	}
	want := []uint32{0x80000000, 0x40000000, 0xc0000000}
	got := f.hs.WritesTo(regCtrl0Clr)
	if len(got) != len(want) {
		t.Fatalf("ctrl0 clr = %x", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ctrl0 clr = %x", got)
		}
	}
	if len(f.sleeps) != 2 {
		t.Fatalf("sleeps = %v", f.sleeps)
	}
}

func TestAcquireSetupSequence(t *testing.T) {
	f := newFake(0, 0, nil)
	if _, err := f.device().Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	checks := map[uint32]uint32{
		regCtrl2Clr: 0x2000,
		regCtrl2Set: 0x31,
		regSeqSmpl:  0xa,
		regSeqNum:   0x1,
		regCtrl1Set: 0xfc000000,
	}
	for off, want := range checks {
		got := f.hs.WritesTo(off)
		if len(got) != 1 || got[0] != want {
			t.Fatalf("reg 0x%02x writes = %x, want 0x%x", off, got, want)
		}
	}
	set := f.hs.WritesTo(regCtrl0Set)
	if len(set) != 3 || set[0] != 0x40000 || set[1] != 0x1 || set[2] != 0x08000000 {
		t.Fatalf("ctrl0 set = %x", set)
	}
}
