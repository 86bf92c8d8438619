// Package hsadc drives the i.MX28 high-speed ADC for a single
// ten-sample acquisition on the board's eighth analog input.
package hsadc

import (
	"context"
	"time"

	"github.com/golang/glog"

	"ts7680ctl/drivers/devmem"
)

// Settle is the pause the block needs after reset release and after HS_RUN.
const Settle = 10 * time.Microsecond

type Device struct {
	hs, clk devmem.Window

	// Sleep defaults to time.Sleep.
	Sleep func(time.Duration)
}

// New takes the HSADC window (Base) and the clock control window (ClkCtrlBase).
func New(hs, clk devmem.Window) *Device {
	return &Device{hs: hs, clk: clk, Sleep: time.Sleep}
}

// Acquire brings the block out of reset if needed, configures a ten
// sample sequence and returns the sum of all samples.
func (d *Device) Acquire(ctx context.Context) (uint32, error) {
	if d.hs.Read32(regCtrl0)&ctrl0ResetMask != 0 {
		d.releaseReset()
	}

	d.hs.Write32(regCtrl2Clr, ctrl2Powerdown)
	d.hs.Write32(regCtrl2Set, ctrl2Precharge)
	d.hs.Write32(regSeqSmpl, seqSamples)
	d.hs.Write32(regSeqNum, seqCount)
	d.hs.Write32(regCtrl0Set, ctrl0Mode12Bit)

	drained := 0
	if _, err := devmem.Poll(ctx, d.hs, regCtrl1, ctrl1FIFOEmpty, func() {
		d.hs.Read32(regFIFO)
		drained++
	}); err != nil {
		return 0, err
	}
	// One more read after the empty flag is required.
	d.hs.Read32(regFIFO)
	glog.V(2).Infof("hsadc: drained %d stale words", drained)

	d.hs.Write32(regCtrl1Set, ctrl1IRQAll)
	d.hs.Write32(regCtrl0Set, ctrl0Run)
	d.Sleep(Settle)
	d.hs.Write32(regCtrl0Set, ctrl0Start)
	if _, err := devmem.WaitSet(ctx, d.hs, regCtrl1, ctrl1IRQDone); err != nil {
		return 0, err
	}

	var sum uint32
	for i := 0; i < FIFOWords; i++ {
		x := d.hs.Read32(regFIFO)
		sum += x&sampleMask + (x>>16)&sampleMask
	}
	glog.V(2).Infof("hsadc: sum %d", sum)
	return sum, nil
}

// releaseReset ungates the HSADC clocks and applies the soft reset
// sequence from erratum ENGR116296.
func (d *Device) releaseReset() {
	glog.V(1).Info("hsadc: releasing block from reset")
	d.clk.Write32(regClkHSADCSet, clkHSADCUngate)
	d.clk.Write32(regClkFrac1Clr, clkFrac1Gate)

	d.hs.Write32(regCtrl0Clr, ctrl0SFTRST)
	d.hs.Write32(regCtrl0, (d.hs.Read32(regCtrl0)|ctrl0SFTRST)&^ctrl0CLKGATE)
	d.hs.Write32(regCtrl0Set, ctrl0CLKGATE)
	d.hs.Write32(regCtrl0Clr, ctrl0CLKGATE)
	d.hs.Write32(regCtrl0Set, ctrl0CLKGATE)
	d.Sleep(Settle)
	d.hs.Write32(regCtrl0Clr, ctrl0ResetMask)
}
