package main

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"ts7680ctl/services/adc"
	"ts7680ctl/services/board"
)

// dioOp is one queued sysfs DIO request. These run in command-line order.
type dioOp struct {
	act  board.DIOAction
	line int
}

type dioFlag struct {
	act board.DIOAction
	q   *[]dioOp
}

func (f dioFlag) String() string { return "" }

func (f dioFlag) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("invalid gpio %q", s)
	}
	*f.q = append(*f.q, dioOp{act: f.act, line: n})
	return nil
}

// numFlag is an optional unsigned number with C-style base prefixes.
type numFlag struct {
	bits int
	set  bool
	v    uint64
}

func (f *numFlag) String() string {
	if f == nil || !f.set {
		return ""
	}
	return "0x" + strconv.FormatUint(f.v, 16)
}

func (f *numFlag) Set(s string) error {
	v, err := strconv.ParseUint(s, 0, f.bits)
	if err != nil {
		return fmt.Errorf("invalid number %q", s)
	}
	f.v, f.set = v, true
	return nil
}

type options struct {
	info    bool
	cputemp bool
	getmac  bool

	dio []dioOp
	dac [4]numFlag

	mA [adc.Channels]bool
	mV [adc.Channels]bool

	addr numFlag
	peek bool
	poke numFlag

	cbarDump bool
	cbarGet  string
	cbarSet  string
}

func newOptions() *options {
	o := &options{
		addr: numFlag{bits: 16},
		poke: numFlag{bits: 8},
	}
	for i := range o.dac {
		o.dac[i].bits = 32
	}
	return o
}

// register binds every option to fs. Short and long spellings share a
// variable.
func (o *options) register(fs *flag.FlagSet) {
	both := func(short, long string, p *bool) {
		fs.BoolVar(p, short, false, "")
		fs.BoolVar(p, long, false, "")
	}
	both("i", "info", &o.info)
	both("t", "cputemp", &o.cputemp)
	both("m", "getmac", &o.getmac)

	dio := func(short, long string, act board.DIOAction) {
		fs.Var(dioFlag{act: act, q: &o.dio}, short, "")
		fs.Var(dioFlag{act: act, q: &o.dio}, long, "")
	}
	dio("o", "ddrout", board.DIOOutput)
	dio("e", "ddrin", board.DIOInput)
	dio("j", "sethigh", board.DIOSetHigh)
	dio("l", "setlow", board.DIOSetLow)
	dio("g", "getin", board.DIOGet)

	for i, short := range []string{"a", "b", "c", "d"} {
		fs.Var(&o.dac[i], short, "")
		fs.Var(&o.dac[i], "dac"+strconv.Itoa(i), "")
	}

	mAShort := []string{"p", "q", "r", "s"}
	mVShort := []string{"w", "x", "y", "z"}
	for ch := 0; ch < adc.Channels; ch++ {
		n := strconv.Itoa(ch)
		fs.BoolVar(&o.mA[ch], "getadcA"+n, false, "")
		fs.BoolVar(&o.mV[ch], "getadcV"+n, false, "")
		if ch < len(mAShort) {
			fs.BoolVar(&o.mA[ch], mAShort[ch], false, "")
			fs.BoolVar(&o.mV[ch], mVShort[ch], false, "")
		}
	}

	fs.Var(&o.addr, "addr", "")
	fs.BoolVar(&o.peek, "peek", false, "")
	fs.Var(&o.poke, "poke", "")

	fs.BoolVar(&o.cbarDump, "cbar-dump", false, "")
	fs.StringVar(&o.cbarGet, "cbar-get", "", "")
	fs.StringVar(&o.cbarSet, "cbar-set", "", "")
}

func (o *options) validate() error {
	if (o.peek || o.poke.set) && !o.addr.set {
		return fmt.Errorf("--peek and --poke need --addr")
	}
	if o.cbarSet != "" {
		if _, _, ok := o.cbarRoute(); !ok {
			return fmt.Errorf("--cbar-set wants <output>=<input>, got %q", o.cbarSet)
		}
	}
	return nil
}

func (o *options) cbarRoute() (out, in string, ok bool) {
	out, in, ok = strings.Cut(o.cbarSet, "=")
	return out, in, ok && out != "" && in != ""
}

func (o *options) needsFPGA() bool {
	if o.info || o.peek || o.poke.set || o.cbarDump || o.cbarGet != "" || o.cbarSet != "" {
		return true
	}
	for _, d := range o.dac {
		if d.set {
			return true
		}
	}
	return false
}

func (o *options) any() bool {
	if o.needsFPGA() || o.cputemp || o.getmac || len(o.dio) > 0 {
		return true
	}
	for ch := range o.mA {
		if o.mA[ch] || o.mV[ch] {
			return true
		}
	}
	return false
}

const usageText = `Usage: %s [OPTIONS] ...

  -h, --help                   Displays this message

***********************Board Info and Setup***********************

  -i, --info                   Display board information
  -t, --cputemp                Print CPU internal Temp
  -m, --getmac                 Display ethernet MAC address
  -o, --ddrout <dio>           Set sysfs DIO to an output
  -e, --ddrin <dio>            Set sysfs DIO to an input

*******************Set Digital and Analog Outputs*****************

  -j, --sethigh <dio>          Set a sysfs DIO value high
  -l, --setlow <dio>           Set a sysfs DIO value low
  -a, --dac0 <code>            Set DAC0 output to a 12-bit code
  -b, --dac1 <code>            Set DAC1 output to a 12-bit code
  -c, --dac2 <code>            Set DAC2 output to a 12-bit code
  -d, --dac3 <code>            Set DAC3 output to a 12-bit code

*******************Set Digital and Analog Inputs******************

  -g, --getin <dio>            Return the input value of DIO <n>
  -p, --getadcA0               Return the input mA value of ADC0
  -q, --getadcA1               Return the input mA value of ADC1
  -r, --getadcA2               Return the input mA value of ADC2
  -s, --getadcA3               Return the input mA value of ADC3
      --getadcA4..7            Return the input mA value of ADC4..7
  -w, --getadcV0               Return the input mV value of ADC0
  -x, --getadcV1               Return the input mV value of ADC1
  -y, --getadcV2               Return the input mV value of ADC2
  -z, --getadcV3               Return the input mV value of ADC3
      --getadcV4..7            Return the input mV value of ADC4..7

*****************************FPGA*********************************

      --addr <reg>             FPGA register for --peek/--poke
      --peek                   Print the register at --addr
      --poke <val>             Write <val> to the register at --addr
      --cbar-dump              List crossbar outputs and their inputs
      --cbar-get <out>         Print the input routed to <out>
      --cbar-set <out>=<in>    Route <in> to <out>

Settings are read from TS7680CTL_* environment variables (DEVMEM,
I2C_BUS, GPIO_ROOT, MODEL_FILE, POLL_TIMEOUT, PROFILE, PROFILE_FILE).
Logging: -v <level>, -logtostderr, -log_dir.
`

func printUsage(w io.Writer, prog string) {
	fmt.Fprintf(w, usageText, prog)
}
