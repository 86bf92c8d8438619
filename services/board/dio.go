package board

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"

	"ts7680ctl/drivers/sysgpio"
	"ts7680ctl/errcode"
)

// DIOAction is one sysfs DIO operation from the command line.
type DIOAction uint8

const (
	DIOOutput DIOAction = iota
	DIOInput
	DIOSetHigh
	DIOSetLow
	DIOGet
)

var dioNames = [...]string{"ddrout", "ddrin", "sethigh", "setlow", "getin"}

func (a DIOAction) String() string {
	if int(a) < len(dioNames) {
		return dioNames[a]
	}
	return fmt.Sprintf("DIOAction(%d)", a)
}

// DIO runs act on line n between export and unexport. The returned level
// is meaningful for DIOGet only.
func (b *Board) DIO(act DIOAction, n int) (gpio.Level, error) {
	if n < 0 {
		return gpio.Low, &errcode.E{C: errcode.InvalidParams, Op: act.String(), Msg: fmt.Sprintf("gpio %d", n)}
	}
	g := b.cfg.GPIO
	var lvl gpio.Level
	err := g.With(n, func() (err error) {
		switch act {
		case DIOOutput:
			return g.SetDirection(n, sysgpio.Out)
		case DIOInput:
			return g.SetDirection(n, sysgpio.In)
		case DIOSetHigh:
			return g.Write(n, gpio.High)
		case DIOSetLow:
			return g.Write(n, gpio.Low)
		case DIOGet:
			lvl, err = g.Read(n)
			return err
		}
		return &errcode.E{C: errcode.InvalidParams, Op: "dio", Msg: act.String()}
	})
	return lvl, err
}
