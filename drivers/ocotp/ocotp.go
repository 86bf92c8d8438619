// Package ocotp reads the board MAC suffix from i.MX28 on-chip OTP.
package ocotp

import (
	"context"

	"github.com/golang/glog"

	"ts7680ctl/drivers/devmem"
)

const (
	// Physical base of the OCOTP block.
	Base = 0x8002C000

	regCtrl    = 0x000
	regCtrlClr = 0x008
	regCust0   = 0x020
	regOps2    = 0x150

	ctrlBusy        = 0x100
	ctrlError       = 0x200
	ctrlRdBankOpen  = 0x1000
	ctrlRdBankOps   = 0x1013 // bank open with the HW_OCOTP_OPS bank selected
	fallbackPrefix  = 0x4f0000
	customerMACMask = 0xffffff

	// OUI is the vendor prefix for all Technologic Systems boards.
	OUI = 0x00d069
)

type Device struct {
	w devmem.Window
}

func New(w devmem.Window) *Device { return &Device{w: w} }

// MAC returns the 24-bit device suffix. When the customer word is blank
// the suffix is derived from the low half of the OPS2 word. The bank is
// closed again on every path.
func (d *Device) MAC(ctx context.Context) (uint32, error) {
	defer d.w.Write32(regCtrl, 0)

	mac, err := d.read(ctx, ctrlRdBankOpen, regCust0)
	if err != nil {
		return 0, err
	}
	mac &= customerMACMask
	if mac != 0 {
		return mac, nil
	}

	glog.V(1).Info("ocotp: customer MAC blank, using OPS2")
	d.w.Write32(regCtrl, 0)
	v, err := d.read(ctx, ctrlRdBankOps, regOps2)
	if err != nil {
		return 0, err
	}
	return uint32(uint16(v)) | fallbackPrefix, nil
}

func (d *Device) read(ctx context.Context, open, reg uint32) (uint32, error) {
	d.w.Write32(regCtrlClr, ctrlError)
	d.w.Write32(regCtrl, open)
	if _, err := devmem.WaitClear(ctx, d.w, regCtrl, ctrlBusy); err != nil {
		return 0, err
	}
	return d.w.Read32(reg), nil
}

// Split returns the three suffix octets, most significant first.
func Split(mac uint32) (a, b, c byte) {
	return byte(mac >> 16), byte(mac >> 8), byte(mac)
}
