package conv

const hexDigits = "0123456789abcdef"

// AppendHex16 appends n as 0x-prefixed, zero-padded four-digit hex.
func AppendHex16(dst []byte, n uint16) []byte {
	dst = append(dst, '0', 'x')
	for shift := 12; shift >= 0; shift -= 4 {
		dst = append(dst, hexDigits[(n>>shift)&0xF])
	}
	return dst
}
