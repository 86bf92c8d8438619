// Package lradc drives the i.MX28 low-resolution ADC block.
//
// Every acquisition runs exactly Passes conversion rounds and returns the raw
// per-channel sum. Callers divide by Passes during calibration.
package lradc

import (
	"context"

	"github.com/golang/glog"

	"ts7680ctl/drivers/devmem"
)

const (
	Channels = 7
	Passes   = 10
)

// Sums holds per-channel accumulations over Passes rounds.
type Sums [Channels]uint32

type Device struct {
	w devmem.Window
}

// New wraps an LRADC window mapped at Base.
func New(w devmem.Window) *Device { return &Device{w: w} }

// General routes LRADC0..6 to channels 0..6, selects the 1.8V range and
// accumulates Passes conversions of all seven channels.
func (d *Device) General(ctx context.Context) (Sums, error) {
	var s Sums

	d.w.Write32(regCtrl4Clr, ctrl4MuxAll)
	d.w.Write32(regCtrl4Set, ctrl4Identity)
	d.w.Write32(regCtrl2Clr, ctrl2Range)
	for n := 0; n < Channels; n++ {
		d.w.Write32(chReg(n), 0)
	}

	for pass := 0; pass < Passes; pass++ {
		if err := d.convert(ctx, schedAll); err != nil {
			return s, err
		}
		for n := 0; n < Channels; n++ {
			s[n] += d.w.Read32(chReg(n)) & resultMask
		}
	}
	glog.V(2).Infof("lradc: general sums %v", s)
	return s, nil
}

// Temperature switches the block into temperature-sense mode and returns
// the accumulated high (channel 1) and low (channel 0) readings.
func (d *Device) Temperature(ctx context.Context) (high, low uint32, err error) {
	d.w.Write32(regCtrl4Clr, ctrl4TempMask)
	d.w.Write32(regCtrl4Set, ctrl4TempSel)
	d.w.Write32(regCtrl2Clr, ctrl2TempEn)
	d.w.Write32(chReg(0), 0)
	d.w.Write32(chReg(1), 0)

	for pass := 0; pass < Passes; pass++ {
		if err := d.convert(ctx, schedTemp); err != nil {
			return 0, 0, err
		}
		high += d.w.Read32(chReg(1)) & resultMask
		low += d.w.Read32(chReg(0)) & resultMask
	}
	glog.V(2).Infof("lradc: temp high=%d low=%d", high, low)
	return high, low, nil
}

// convert clears the ready flags for mask, schedules a round and waits for
// every channel in mask to report completion.
func (d *Device) convert(ctx context.Context, mask uint32) error {
	d.w.Write32(regCtrl1Clr, mask)
	d.w.Write32(regCtrl0Set, mask)
	_, err := devmem.WaitSet(ctx, d.w, regCtrl1, mask)
	return err
}
