package adc

import "testing"

func TestMilliVoltsExact(t *testing.T) {
	// ((10000/10)*45177*6235)/100000000 = 281678595000/100000000
	if got := MilliVolts(10000); got != 2816 {
		t.Fatalf("MilliVolts(10000) = %d", got)
	}
	// Truncation happens on the pass average first.
	if MilliVolts(19) != MilliVolts(10) {
		t.Fatalf("sum not averaged before scaling")
	}
	// Full scale: ten passes of 0xffff.
	if got := MilliVolts(10 * 0xffff); got != 184598 {
		t.Fatalf("MilliVolts(full) = %d", got)
	}
}

func TestMilliAmps(t *testing.T) {
	if got := MilliAmps(28152); got != 117300 {
		t.Fatalf("MilliAmps(28152) = %d", got)
	}
	if got := MilliAmps(MilliVolts(10000)); got != 11733 {
		t.Fatalf("MilliAmps(2816) = %d", got)
	}
}

func TestMilliVoltsMonotonic(t *testing.T) {
	const max = 7 * 0xffff * 10
	prev := MilliVolts(0)
	for s := uint64(1); s <= max; s += 7 {
		mv := MilliVolts(s)
		if mv < prev {
			t.Fatalf("MilliVolts(%d) = %d < %d", s, mv, prev)
		}
		prev = mv
	}
}

func TestTemperature(t *testing.T) {
	cases := []struct {
		high, low uint32
		want      Temp
		text      string
	}{
		{1000000, 900000, 22570000, "2257.0"},
		{900000, 1000000, -28030000, "-2803.0"},
		{10791, 0, 123, "0.123"},
		{10800, 0, 2400, "0.2400"},
		// Just below zero the integer part is 0 and carries no sign.
		{10790, 0, -130, "0.130"},
	}
	for _, c := range cases {
		got := Temperature(c.high, c.low)
		if got != c.want {
			t.Fatalf("Temperature(%d,%d) = %d, want %d", c.high, c.low, got, c.want)
		}
		if s := got.String(); s != c.text {
			t.Fatalf("Temp(%d).String() = %q, want %q", got, s, c.text)
		}
	}
}

func TestTempNegativeFraction(t *testing.T) {
	// Sign lives on the integer part only.
	if s := Temp(-123456).String(); s != "-12.3456" {
		t.Fatalf("got %q", s)
	}
	if s := Temp(-120345).String(); s != "-12.345" {
		t.Fatalf("got %q", s)
	}
}
