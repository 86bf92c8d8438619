package adc

import (
	"ts7680ctl/drivers/lradc"
	"ts7680ctl/x/conv"
	"ts7680ctl/x/mathx"
)

// Divider and shunt constants of the TS-7680 analog front end. All
// conversions multiply then divide left to right with truncation; changing
// the order changes the result.
const (
	dividerNum1 = 45177
	dividerNum2 = 6235
	dividerDen  = 100000000

	shuntNum = 1000
	shuntDen = 240 // ohms

	tempSlope  = 1012 / 4
	tempOffset = 2730000

	tempScale = 10000
)

// MilliVolts converts a raw sum of lradc.Passes samples.
func MilliVolts(sum uint64) uint64 {
	return mathx.MulDiv(sum/lradc.Passes*dividerNum1, dividerNum2, dividerDen)
}

// MilliAmps converts a millivolt reading across the 240 ohm current-loop shunt.
func MilliAmps(mv uint64) uint64 {
	return mathx.MulDiv(mv, shuntNum, shuntDen)
}

// Temp is a die temperature in units of 1/10000 degree Celsius.
type Temp int64

// Temperature converts the accumulated temperature-sense high and low sums.
func Temperature(high, low uint32) Temp {
	return Temp((int64(high)-int64(low))*tempSlope - tempOffset)
}

// Append writes t as "<int>.<frac>". Only the integer part carries a sign
// and the fraction is not zero padded, so 12.0345 degrees reads "12.345".
func (t Temp) Append(dst []byte) []byte {
	dst = conv.AppendInt(dst, int64(t)/tempScale)
	dst = append(dst, '.')
	return conv.AppendInt(dst, mathx.Abs(int64(t)%tempScale))
}

func (t Temp) String() string { return string(t.Append(nil)) }
