//go:build rp2040

package boards

// CounterWidth is the only timer width the RP2040 PWM counter provides.
var CounterWidth uint8 = 16
