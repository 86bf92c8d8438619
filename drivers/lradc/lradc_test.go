package lradc

import (
	"context"
	"testing"
	"time"

	"ts7680ctl/drivers/devmem"
	"ts7680ctl/errcode"
)

// fakeLRADC serves fixed per-channel readings and reports ready after
// notReady status reads per round.
func fakeLRADC(vals map[int]uint32, readyMask uint32, notReady int) *devmem.SimWindow {
	w := devmem.NewSim().Window(Base)
	waits := 0
	w.OnRead = func(off, v uint32, n int) uint32 {
		if off == regCtrl1 {
			if waits < notReady {
				waits++
				return 0
			}
			return readyMask
		}
		for ch, val := range vals {
			if off == chReg(ch) {
				return val
			}
		}
		return v
	}
	w.OnWrite = func(off, v uint32) {
		if off == regCtrl0Set {
			waits = 0
		}
	}
	return w
}

func TestGeneralSumsTenPasses(t *testing.T) {
	w := fakeLRADC(map[int]uint32{0: 0x1000, 3: 0xabcd0fff, 6: 1}, 0x7f, 0)
	s, err := New(w).General(context.Background())
	if err != nil {
		t.Fatalf("General: %v", err)
	}
	if s[0] != 10*0x1000 || s[3] != 10*0x0fff || s[6] != 10 || s[1] != 0 {
		t.Fatalf("sums = %v", s)
	}
	if got := len(w.WritesTo(regCtrl0Set)); got != Passes {
		t.Fatalf("scheduled %d rounds", got)
	}
	if got := w.WritesTo(regCtrl4Set); len(got) != 1 || got[0] != 0x06543210 {
		t.Fatalf("ctrl4 set = %x", got)
	}
	if got := w.WritesTo(regCtrl2Clr); len(got) != 1 || got[0] != 0xff000000 {
		t.Fatalf("ctrl2 clr = %x", got)
	}
	for n := 0; n < Channels; n++ {
		if got := w.WritesTo(chReg(n)); len(got) != 1 || got[0] != 0 {
			t.Fatalf("ch%d not cleared once: %v", n, got)
		}
	}
}

func TestGeneralWaitsForAllChannels(t *testing.T) {
	w := fakeLRADC(map[int]uint32{2: 5}, 0x7f, 3)
	s, err := New(w).General(context.Background())
	if err != nil {
		t.Fatalf("General: %v", err)
	}
	if s[2] != 50 {
		t.Fatalf("ch2 = %d", s[2])
	}
	if got := w.ReadCount[regCtrl1]; got != Passes*4 {
		t.Fatalf("status reads = %d", got)
	}
}

func TestGeneralPartialReadyTimesOut(t *testing.T) {
	// Six of seven channels ready never satisfies the wait.
	w := fakeLRADC(nil, 0x3f, 0)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	_, err := New(w).General(ctx)
	if errcode.Of(err) != errcode.Timeout {
		t.Fatalf("code = %v", errcode.Of(err))
	}
}

func TestTemperatureSwapsChannels(t *testing.T) {
	w := fakeLRADC(map[int]uint32{0: 100, 1: 9000}, 0x3, 1)
	high, low, err := New(w).Temperature(context.Background())
	if err != nil {
		t.Fatalf("Temperature: %v", err)
	}
	if high != 90000 || low != 1000 {
		t.Fatalf("high=%d low=%d", high, low)
	}
	if got := w.WritesTo(regCtrl4Set); len(got) != 1 || got[0] != 0x98 {
		t.Fatalf("ctrl4 set = %x", got)
	}
	if got := w.WritesTo(regCtrl2Clr); len(got) != 1 || got[0] != 0x8300 {
		t.Fatalf("ctrl2 clr = %x", got)
	}
	if got := w.WritesTo(regCtrl1Clr); len(got) != Passes || got[0] != 0x3 {
		t.Fatalf("ctrl1 clr = %x", got)
	}
}
