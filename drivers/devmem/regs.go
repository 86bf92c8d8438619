package devmem

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Regs is a Window over a byte slice, normally the result of mmap.
// Accesses are single 32-bit loads and stores that the compiler cannot
// merge or drop, which matters for FIFO registers where a read has side
// effects.
type Regs struct {
	base uint32
	mem  []byte
}

// NewRegs wraps mem, whose first byte sits at physical address base.
func NewRegs(base uint32, mem []byte) *Regs { return &Regs{base: base, mem: mem} }

func (r *Regs) Base() uint32 { return r.base }

func (r *Regs) Read32(off uint32) uint32 { return atomic.LoadUint32(r.word(off)) }

func (r *Regs) Write32(off, v uint32) { atomic.StoreUint32(r.word(off), v) }

func (r *Regs) word(off uint32) *uint32 {
	checkOffset(r.base, off, len(r.mem))
	return (*uint32)(unsafe.Pointer(&r.mem[off]))
}

// checkOffset panics on a misaligned or out of window offset. Offsets come
// from driver constants, so a failure here is a driver bug.
func checkOffset(base, off uint32, size int) {
	if off&3 != 0 || uint64(off)+4 > uint64(size) {
		panic(fmt.Sprintf("devmem: bad offset 0x%x in window 0x%08x (size %d)", off, base, size))
	}
}
