package timex

// TickPeriodUS returns the whole-microsecond period of a counter clocked at
// freqHz. Frequencies above 1 MHz round to 1 µs.
func TickPeriodUS(freqHz uint32) uint32 {
	if freqHz == 0 || freqHz >= 1_000_000 {
		return 1
	}
	return 1_000_000 / freqHz
}

// ClockDivider returns the integer divider that brings srcHz down to
// dstHz, clamped to [1, 255] (8-bit integer dividers).
func ClockDivider(srcHz, dstHz uint32) uint8 {
	if dstHz == 0 {
		return 255
	}
	d := srcHz / dstHz
	switch {
	case d < 1:
		return 1
	case d > 255:
		return 255
	}
	return uint8(d)
}
