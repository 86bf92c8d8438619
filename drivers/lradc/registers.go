package lradc

const (
	// Physical base of the LRADC block.
	Base = 0x80050000

	// --- Register offsets (bytes) ---
	regCtrl0Set = 0x004 // W, schedule conversions
	regCtrl1    = 0x010 // R, IRQ status (bits 6:0)
	regCtrl1Clr = 0x018 // W, clear IRQ status
	regCtrl2Clr = 0x028 // W, divide-by-two / temp sense controls
	regCtrl4Set = 0x144 // W, virtual-to-physical channel mux
	regCtrl4Clr = 0x148 // W
	regCh0      = 0x050 // R/W, first result register
	chStride    = 0x010

	// --- General acquisition ---
	ctrl4MuxAll   = 0x0fffffff // clears LRADC6:0 assignments
	ctrl4Identity = 0x06543210 // LRADCn -> channel n
	ctrl2Range    = 0xff000000 // 1.8V range on all channels
	schedAll      = 0x7f

	// --- Temperature acquisition ---
	ctrl4TempMask = 0xff
	ctrl4TempSel  = 0x98   // ch0 <- temp sense low, ch1 <- temp sense high
	ctrl2TempEn   = 0x8300 // enable the temp sense block
	schedTemp     = 0x3

	resultMask = 0xffff
)

func chReg(n int) uint32 { return regCh0 + uint32(n)*chStride }
