package devmem

import (
	"context"
	"fmt"

	"ts7680ctl/errcode"
)

// ctxCheckEvery bounds how often a spinning poll looks at its context.
const ctxCheckEvery = 64

// Poll spins until the register at off has every bit of mask set, calling
// each (when non-nil) after every read that did not satisfy the mask.
// With a context that never ends the wait is unbounded, matching the
// hardware protocol. A cancelled or expired context yields errcode.Timeout.
func Poll(ctx context.Context, w Window, off, mask uint32, each func()) (uint32, error) {
	return spin(ctx, w, off, mask, func(v uint32) bool { return v&mask == mask }, each)
}

// WaitSet is Poll without a per-iteration action.
func WaitSet(ctx context.Context, w Window, off, mask uint32) (uint32, error) {
	return Poll(ctx, w, off, mask, nil)
}

// WaitClear spins until every bit of mask reads back clear.
func WaitClear(ctx context.Context, w Window, off, mask uint32) (uint32, error) {
	return spin(ctx, w, off, mask, func(v uint32) bool { return v&mask == 0 }, nil)
}

func spin(ctx context.Context, w Window, off, mask uint32, ready func(uint32) bool, each func()) (uint32, error) {
	for n := 0; ; n++ {
		v := w.Read32(off)
		if ready(v) {
			return v, nil
		}
		if n%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return v, &errcode.E{
					C:   errcode.Timeout,
					Op:  fmt.Sprintf("poll 0x%08x+0x%02x mask 0x%x", w.Base(), off, mask),
					Err: err,
				}
			}
		}
		if each != nil {
			each()
		}
	}
}
