// Package board implements the TS-7680 board operations that sit around the
// analog core: identification, OTP MAC, DAC outputs, sysfs DIO and the FPGA
// crossbar.
package board

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"time"

	"github.com/golang/glog"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"

	"ts7680ctl/drivers/devmem"
	"ts7680ctl/drivers/fpga"
	"ts7680ctl/drivers/ocotp"
	"ts7680ctl/drivers/sysgpio"
	"ts7680ctl/errcode"
	"ts7680ctl/services/config"
	"ts7680ctl/x/conv"
)

type Config struct {
	Profile     *config.Profile
	ModelFile   string
	GPIO        *sysgpio.Sysfs
	Memory      devmem.Opener
	PollTimeout time.Duration

	// FPGA is nil when the bus was not opened.
	FPGA *fpga.Device
}

type Board struct {
	cfg Config
}

func New(cfg Config) *Board { return &Board{cfg: cfg} }

// FPGAConfig maps a board profile onto the FPGA driver configuration.
func FPGAConfig(p *config.Profile) fpga.Config {
	c := fpga.Config{Address: p.FPGA.Address, RevisionReg: p.FPGA.RevisionReg}
	for _, d := range p.DAC {
		c.DAC = append(c.DAC, fpga.DACPair{d.Hi, d.Lo})
	}
	return c
}

// ParseModel extracts the hex model number following "TS-" in a device-tree
// model string, e.g. "Technologic Systems TS-7680" yields 0x7680.
func ParseModel(s []byte) (uint32, error) {
	i := bytes.Index(s, []byte("TS-"))
	if i < 0 {
		return 0, &errcode.E{C: errcode.Unsupported, Op: "model", Msg: "no TS- model in " + strconv.Quote(string(bytes.TrimRight(s, "\x00\n")))}
	}
	s = s[i+3:]
	n := 0
	for n < len(s) && n < 8 && isHex(s[n]) {
		n++
	}
	if n == 0 {
		return 0, &errcode.E{C: errcode.Unsupported, Op: "model", Msg: "empty model number"}
	}
	v, err := strconv.ParseUint(string(s[:n]), 16, 32)
	if err != nil {
		return 0, &errcode.E{C: errcode.Unsupported, Op: "model", Err: err}
	}
	return uint32(v), nil
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// Model reads and parses the device-tree model string.
func (b *Board) Model() (uint32, error) {
	raw, err := os.ReadFile(b.cfg.ModelFile)
	if err != nil {
		return 0, &errcode.E{C: errcode.IO, Op: "model", Err: err}
	}
	return ParseModel(raw)
}

// Info is the -i/--info report.
type Info struct {
	Model        uint32
	Bootmode     gpio.Level
	FPGARevision uint8
}

// Info collects model, boot mode strap and FPGA revision. Every field is
// attempted; errors are combined.
func (b *Board) Info() (Info, error) {
	var (
		inf  Info
		errs error
		err  error
	)
	if inf.Model, err = b.Model(); err != nil {
		errs = multierr.Append(errs, err)
	}
	n := b.cfg.Profile.BootmodeGPIO
	err = b.cfg.GPIO.With(n, func() (err error) {
		inf.Bootmode, err = b.cfg.GPIO.Read(n)
		return err
	})
	errs = multierr.Append(errs, err)
	dev, err := b.fpga()
	if err == nil {
		inf.FPGARevision, err = dev.Revision()
	}
	errs = multierr.Append(errs, err)
	return inf, errs
}

// MAC is the 24-bit device part of the board Ethernet address.
type MAC uint32

// Long renders the full address under the vendor OUI.
func (m MAC) Long() string {
	a, b, c := ocotp.Split(uint32(m))
	return string(conv.AppendHexBytes(nil, ocotp.OUI>>16, ocotp.OUI>>8&0xff, ocotp.OUI&0xff, a, b, c))
}

// Short renders only the device part.
func (m MAC) Short() string {
	a, b, c := ocotp.Split(uint32(m))
	return string(conv.AppendHexBytes(nil, a, b, c))
}

// MAC reads the device MAC suffix from OTP.
func (b *Board) MAC(ctx context.Context) (m MAC, err error) {
	if b.cfg.PollTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.PollTimeout)
		defer cancel()
	}
	sess, err := devmem.Begin(b.cfg.Memory)
	if err != nil {
		return 0, err
	}
	defer func() { err = multierr.Append(err, sess.Close()) }()

	w, err := sess.Map(ocotp.Base)
	if err != nil {
		return 0, err
	}
	v, err := ocotp.New(w).MAC(ctx)
	return MAC(v), err
}

// SetDAC writes a 12-bit code to DAC channel ch.
func (b *Board) SetDAC(ch int, v uint32) error {
	dev, err := b.fpga()
	if err != nil {
		return err
	}
	glog.V(1).Infof("board: dac%d <- 0x%03x", ch, v&fpga.DACMax)
	return dev.SetDAC(ch, v)
}

func (b *Board) Peek(reg uint16) (uint8, error) {
	dev, err := b.fpga()
	if err != nil {
		return 0, err
	}
	return dev.Peek8(reg)
}

func (b *Board) Poke(reg uint16, v uint8) error {
	dev, err := b.fpga()
	if err != nil {
		return err
	}
	return dev.Poke8(reg, v)
}

func (b *Board) fpga() (*fpga.Device, error) {
	if b.cfg.FPGA == nil {
		return nil, &errcode.E{C: errcode.BusOpen, Op: "fpga", Msg: "bus not open"}
	}
	return b.cfg.FPGA, nil
}
