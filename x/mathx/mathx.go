package mathx

import "golang.org/x/exp/constraints"

// Between reports lo <= v && v <= hi (order-insensitive).
func Between[T constraints.Ordered](v, lo, hi T) bool {
	if hi < lo {
		lo, hi = hi, lo
	}
	return v >= lo && v <= hi
}

// Abs for signed integers. Abs(math.MinInt64) stays negative.
func Abs[T constraints.Signed](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// MulDiv returns (v*mul)/div with truncation. Callers keep the product
// inside the range of T.
func MulDiv[T constraints.Integer](v, mul, div T) T {
	return v * mul / div
}
