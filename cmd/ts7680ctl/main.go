// Command ts7680ctl exposes TS-7680 board controls: analog inputs, internal
// temperature, OTP MAC, DAC outputs, sysfs DIO and the FPGA crossbar.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/golang/glog"
	"tinygo.org/x/drivers"

	"ts7680ctl/drivers/devmem"
	"ts7680ctl/drivers/fpga"
	"ts7680ctl/drivers/i2cdev"
	"ts7680ctl/drivers/sysgpio"
	"ts7680ctl/services/adc"
	"ts7680ctl/services/board"
	"ts7680ctl/services/config"
)

// bus is the FPGA transport owned by run.
type bus interface {
	drivers.I2C
	Close() error
}

// env carries the process dependencies so tests can substitute them.
type env struct {
	stdout, stderr io.Writer

	settings config.Settings
	profile  *config.Profile

	openMem devmem.Opener
	openBus func(path string) (bus, error)
}

func main() {
	// Default glog to stderr; -logtostderr=false on the command line wins.
	_ = flag.Set("logtostderr", "true")

	o := newOptions()
	o.register(flag.CommandLine)
	flag.Usage = func() { printUsage(flag.CommandLine.Output(), os.Args[0]) }
	flag.Parse()

	os.Exit(realMain(o))
}

func realMain(o *options) int {
	defer glog.Flush()

	if err := o.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return 1
	}
	if !o.any() {
		flag.Usage()
		return 1
	}
	if flag.NArg() > 0 {
		glog.Warningf("ignoring arguments %q", flag.Args())
	}

	s, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	p, err := config.LoadProfile(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return run(context.Background(), o, &env{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		settings: s,
		profile:  p,
		openMem:  devmem.PathOpener(s.DevMem),
		openBus:  func(path string) (bus, error) { return i2cdev.Open(path) },
	})
}

// run executes the requested operations in the fixed order: DIO requests
// as given, then info, temperature, MAC, DACs, mA reads, mV reads, FPGA
// register access and the crossbar. A failed operation is reported and the
// rest still run; the exit status is 1 if anything failed.
func run(ctx context.Context, o *options, e *env) int {
	var dev *fpga.Device
	if o.needsFPGA() {
		b, err := e.openBus(e.settings.I2CBus)
		if err != nil {
			fmt.Fprintf(e.stderr, "Can't open FPGA I2C bus: %v\n", err)
			return 1
		}
		defer func() {
			if err := b.Close(); err != nil {
				glog.Warningf("closing %s: %v", e.settings.I2CBus, err)
			}
		}()
		dev = fpga.New(b, board.FPGAConfig(e.profile))
	}

	brd := board.New(board.Config{
		Profile:     e.profile,
		ModelFile:   e.settings.ModelFile,
		GPIO:        sysgpio.New(e.settings.GPIORoot),
		Memory:      e.openMem,
		PollTimeout: e.settings.PollTimeout,
		FPGA:        dev,
	})
	acq := adc.New(e.openMem, adc.WithPollTimeout(e.settings.PollTimeout))

	failed := false
	report := func(err error) bool {
		if err != nil {
			fmt.Fprintln(e.stderr, err)
			failed = true
		}
		return err == nil
	}
	out := func(format string, a ...interface{}) { fmt.Fprintf(e.stdout, format, a...) }

	for _, op := range o.dio {
		lvl, err := brd.DIO(op.act, op.line)
		if report(err) && op.act == board.DIOGet {
			out("gpio%d=%d\n", op.line, level(lvl))
		}
	}

	if o.info {
		inf, err := brd.Info()
		report(err)
		out("model=0x%X\n", inf.Model)
		out("bootmode=0x%X\n", level(inf.Bootmode))
		out("fpga_revision=0x%X\n", inf.FPGARevision)
	}

	if o.cputemp {
		if t, err := acq.Temperature(ctx); report(err) {
			out("internal_temp=%s\n", t)
		}
	}

	if o.getmac {
		if m, err := brd.MAC(ctx); report(err) {
			out("mac=%s\n", m.Long())
			out("shortmac=%s\n", m.Short())
		}
	}

	for ch, d := range o.dac {
		if d.set {
			report(brd.SetDAC(ch, uint32(d.v)))
		}
	}

	for _, unit := range []adc.Unit{adc.MilliAmp, adc.MilliVolt} {
		want := o.mA
		if unit == adc.MilliVolt {
			want = o.mV
		}
		for ch, ok := range want {
			if !ok {
				continue
			}
			if r, err := acq.Read(ctx, ch, unit); report(err) {
				out("%s\n", r)
			}
		}
	}

	if o.addr.set {
		reg := uint16(o.addr.v)
		if o.poke.set {
			report(brd.Poke(reg, uint8(o.poke.v)))
		}
		if o.peek {
			if v, err := brd.Peek(reg); report(err) {
				out("0x%02X\n", v)
			}
		}
	}

	if o.cbarDump || o.cbarGet != "" || o.cbarSet != "" {
		cb, err := brd.Crossbar()
		if report(err) {
			if o.cbarSet != "" {
				outName, inName, _ := o.cbarRoute()
				report(cb.Set(outName, inName))
			}
			if o.cbarGet != "" {
				if in, err := cb.Get(o.cbarGet); report(err) {
					out("%s=%s\n", o.cbarGet, in)
				}
			}
			if o.cbarDump {
				routes, err := cb.Dump()
				report(err)
				for _, r := range routes {
					out("%-20s%-20s\n", r.Output, r.Input)
				}
			}
		}
	}

	if failed {
		return 1
	}
	return 0
}

func level[T ~bool](l T) int {
	if l {
		return 1
	}
	return 0
}
