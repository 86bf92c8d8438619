package board

import (
	"fmt"

	"ts7680ctl/drivers/fpga"
	"ts7680ctl/errcode"
	"ts7680ctl/services/config"
)

// Crossbar returns the FPGA crossbar for this board. The detected model
// must match the profile.
func (b *Board) Crossbar() (*fpga.Crossbar, error) {
	model, err := b.Model()
	if err != nil {
		return nil, err
	}
	p := b.cfg.Profile
	if model != p.Model {
		return nil, &errcode.E{C: errcode.Unsupported, Msg: fmt.Sprintf("Unsupported model TS-%X", model)}
	}
	dev, err := b.fpga()
	if err != nil {
		return nil, err
	}
	cb := p.Crossbar
	return fpga.NewCrossbar(dev, cb.Size, cb.Mask, pins(cb.Inputs), pins(cb.Outputs)), nil
}

func pins(ps []config.Pin) []fpga.Pin {
	out := make([]fpga.Pin, len(ps))
	for i, p := range ps {
		out[i] = fpga.Pin{Name: p.Name, Addr: p.Addr}
	}
	return out
}
