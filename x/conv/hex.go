package conv

const hexLower = "0123456789abcdef"

// Hex2 writes b as two lowercase hex digits into buf and returns the used slice.
func Hex2(buf []byte, b byte) []byte {
	if len(buf) < 2 {
		return buf[:0]
	}
	buf[0] = hexLower[b>>4]
	buf[1] = hexLower[b&0xF]
	return buf[:2]
}

// AppendHexBytes appends bs as colon separated lowercase hex pairs.
func AppendHexBytes(dst []byte, bs ...byte) []byte {
	var tmp [2]byte
	for i, b := range bs {
		if i > 0 {
			dst = append(dst, ':')
		}
		dst = append(dst, Hex2(tmp[:], b)...)
	}
	return dst
}
