// Package adc acquires and calibrates the TS-7680 analog inputs.
//
// Channels 0..6 are LRADC inputs and channel 7 is the HSADC input. Every
// request is a complete, self-contained acquisition: physical memory is
// opened, the register windows mapped, both converters run, and everything
// released again before the result is returned.
package adc

import (
	"context"
	"fmt"
	"time"

	"github.com/golang/glog"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"

	"ts7680ctl/drivers/devmem"
	"ts7680ctl/drivers/hsadc"
	"ts7680ctl/drivers/lradc"
	"ts7680ctl/errcode"
	"ts7680ctl/x/conv"
	"ts7680ctl/x/mathx"
)

const (
	Channels     = lradc.Channels + 1
	HSADCChannel = lradc.Channels
)

type Unit uint8

const (
	MilliVolt Unit = iota
	MilliAmp
)

func (u Unit) String() string {
	if u == MilliAmp {
		return "mA"
	}
	return "mV"
}

// Sums holds the raw accumulators of one general acquisition.
type Sums [Channels]uint64

// Reading is one calibrated channel value.
type Reading struct {
	Channel int
	Unit    Unit
	Value   uint64
}

// Append writes the console form "ADC<n>_val=<v><unit>".
func (r Reading) Append(dst []byte) []byte {
	dst = append(dst, "ADC"...)
	dst = conv.AppendInt(dst, int64(r.Channel))
	dst = append(dst, "_val="...)
	dst = conv.AppendUint(dst, r.Value)
	return append(dst, r.Unit.String()...)
}

func (r Reading) String() string { return string(r.Append(nil)) }

// Physical returns the reading as a periph physical quantity.
func (r Reading) Physical() fmt.Stringer {
	if r.Unit == MilliAmp {
		return physic.ElectricCurrent(r.Value) * physic.MilliAmpere
	}
	return physic.ElectricPotential(r.Value) * physic.MilliVolt
}

type Option func(*Acquirer)

// WithPollTimeout bounds each acquisition's busy-polls. Zero (the default)
// waits forever.
func WithPollTimeout(d time.Duration) Option {
	return func(a *Acquirer) { a.timeout = d }
}

// WithSleep replaces the HSADC settle delay, for tests.
func WithSleep(f func(time.Duration)) Option {
	return func(a *Acquirer) { a.sleep = f }
}

type Acquirer struct {
	open    devmem.Opener
	timeout time.Duration
	sleep   func(time.Duration)
}

func New(open devmem.Opener, opts ...Option) *Acquirer {
	a := &Acquirer{open: open}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Acquirer) pollContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout > 0 {
		return context.WithTimeout(ctx, a.timeout)
	}
	return context.WithCancel(ctx)
}

// Sample runs one general acquisition: the LRADC pass over channels 0..6
// followed by the HSADC pass for channel 7.
func (a *Acquirer) Sample(ctx context.Context) (s Sums, err error) {
	ctx, cancel := a.pollContext(ctx)
	defer cancel()

	sess, err := devmem.Begin(a.open)
	if err != nil {
		return s, err
	}
	defer func() { err = multierr.Append(err, sess.Close()) }()

	lw, err := sess.Map(lradc.Base)
	if err != nil {
		return s, err
	}
	ls, err := lradc.New(lw).General(ctx)
	if err != nil {
		return s, err
	}
	for i, v := range ls {
		s[i] = uint64(v)
	}

	hw, err := sess.Map(hsadc.Base)
	if err != nil {
		return s, err
	}
	cw, err := sess.Map(hsadc.ClkCtrlBase)
	if err != nil {
		return s, err
	}
	hd := hsadc.New(hw, cw)
	if a.sleep != nil {
		hd.Sleep = a.sleep
	}
	h, err := hd.Acquire(ctx)
	if err != nil {
		return s, err
	}
	s[HSADCChannel] = uint64(h)
	return s, nil
}

// Read acquires all channels and returns channel ch calibrated to u.
func (a *Acquirer) Read(ctx context.Context, ch int, u Unit) (Reading, error) {
	if !mathx.Between(ch, 0, Channels-1) {
		return Reading{}, &errcode.E{C: errcode.InvalidParams, Op: "adc read", Msg: fmt.Sprintf("channel %d out of range", ch)}
	}
	s, err := a.Sample(ctx)
	if err != nil {
		return Reading{}, err
	}
	r := Reading{Channel: ch, Unit: u, Value: MilliVolts(s[ch])}
	if u == MilliAmp {
		r.Value = MilliAmps(r.Value)
	}
	glog.V(1).Infof("adc: ch%d sum=%d -> %s", ch, s[ch], r.Physical())
	return r, nil
}

// Temperature puts the LRADC into temperature-sense mode and returns the
// die temperature.
func (a *Acquirer) Temperature(ctx context.Context) (t Temp, err error) {
	ctx, cancel := a.pollContext(ctx)
	defer cancel()

	sess, err := devmem.Begin(a.open)
	if err != nil {
		return 0, err
	}
	defer func() { err = multierr.Append(err, sess.Close()) }()

	lw, err := sess.Map(lradc.Base)
	if err != nil {
		return 0, err
	}
	high, low, err := lradc.New(lw).Temperature(ctx)
	if err != nil {
		return 0, err
	}
	t = Temperature(high, low)
	glog.V(1).Infof("adc: temp high=%d low=%d -> %s", high, low, t.Celsius())
	return t, nil
}

// Celsius returns t as a periph temperature.
func (t Temp) Celsius() physic.Temperature {
	return physic.ZeroCelsius + physic.Temperature(t)*100*physic.MicroKelvin
}
