package hsadc

const (
	// Physical bases.
	Base        = 0x80002000
	ClkCtrlBase = 0x80040000

	// --- HSADC offsets ---
	regCtrl0    = 0x00
	regCtrl0Set = 0x04
	regCtrl0Clr = 0x08
	regCtrl1    = 0x10 // R, status
	regCtrl1Set = 0x14 // W, writing IRQ bits acknowledges them
	regCtrl2Set = 0x24
	regCtrl2Clr = 0x28
	regSeqSmpl  = 0x30
	regSeqNum   = 0x40
	regFIFO     = 0x50

	// --- CLKCTRL offsets ---
	regClkHSADCSet = 0x154
	regClkFrac1Clr = 0x1c8

	// --- Bits and values ---
	ctrl0SFTRST    = 0x80000000
	ctrl0CLKGATE   = 0x40000000
	ctrl0ResetMask = ctrl0SFTRST | ctrl0CLKGATE
	ctrl0Run       = 0x00000001
	ctrl0Start     = 0x08000000
	ctrl0Mode12Bit = 0x00040000

	ctrl1IRQDone   = 0x01
	ctrl1FIFOEmpty = 0x20
	ctrl1IRQAll    = 0xfc000000

	ctrl2Powerdown = 0x2000
	ctrl2Precharge = 0x31 // precharge and SH bypass
	seqSamples     = 0xa
	seqCount       = 0x1

	clkHSADCUngate = 0x70000000
	clkFrac1Gate   = 0x8000

	// FIFO words read after conversion; each holds two 12-bit samples.
	FIFOWords  = 5
	sampleMask = 0xfff
)
