package conv

// Itoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for int64. No allocations.
func Itoa(buf []byte, n int64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	neg := n < 0
	u := uint64(n)
	if neg {
		u = -u
	}
	out := Utoa(buf, u)
	i := len(buf) - len(out)
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

// AppendInt appends the decimal form of n to dst.
func AppendInt(dst []byte, n int64) []byte {
	var tmp [21]byte
	return append(dst, Itoa(tmp[:], n)...)
}
