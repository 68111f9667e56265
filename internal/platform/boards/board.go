// Package boards holds build-time board variant descriptors.
//
// Exactly one file defines Selected for a given set of build tags. A variant
// only rebinds hardware instances (timer slice, LED pins, telemetry UART);
// the logical contracts of the board core are the same on every variant.
package boards

import (
	"time"

	"boardcore-go/errcode"
	"boardcore-go/types"
	"boardcore-go/x/mathx"
)

// Defaults applied by Normalize to zero fields.
const (
	DefaultLockTimeout = 100 * time.Millisecond
	DefaultInboundSize = 64
	DefaultTelemBaud   = 57_600
	DefaultTimerWidth  = 16
	DefaultQueueLen    = 16
	DefaultIntervalMS  = 1000

	DefaultVID = 0x16c0
	DefaultPID = 0x27dd
)

// Normalize fills zero fields with defaults and clamps the rest into the
// ranges the core supports.
func Normalize(b types.BoardConfig) types.BoardConfig {
	if b.Timer.Width == 0 {
		b.Timer.Width = DefaultTimerWidth
	}
	b.Timer.Width = mathx.Clamp(b.Timer.Width, 8, 32)
	if b.Timer.TickUS == 0 {
		b.Timer.TickUS = 1
	}
	if b.Timer.QueueLen <= 0 {
		b.Timer.QueueLen = DefaultQueueLen
	}
	if b.Telemetry.Baud == 0 {
		b.Telemetry.Baud = DefaultTelemBaud
	}
	if b.USB.LockTimeout <= 0 {
		b.USB.LockTimeout = DefaultLockTimeout
	}
	if b.USB.InboundSize <= 0 {
		b.USB.InboundSize = DefaultInboundSize
	}
	b.USB.InboundSize = mathx.Clamp(b.USB.InboundSize, 8, 512)
	if b.USB.TxCapacity <= 0 {
		b.USB.TxCapacity = 64
	}
	if b.USB.Identity.VendorID == 0 {
		b.USB.Identity.VendorID = DefaultVID
	}
	if b.USB.Identity.ProductID == 0 {
		b.USB.Identity.ProductID = DefaultPID
	}
	if b.Heartbeat.IntervalMS == 0 {
		b.Heartbeat.IntervalMS = DefaultIntervalMS
	}
	b.Heartbeat.IntervalMS = mathx.Clamp(b.Heartbeat.IntervalMS, 50, 60_000)
	return b
}

// Validate rejects descriptors the platform cannot bind.
func Validate(b types.BoardConfig) error {
	if b.Name == "" {
		return errcode.New(errcode.InvalidParams, "board", "missing name")
	}
	if b.LEDBlue == b.LEDGreen {
		return errcode.New(errcode.InvalidParams, "board", "led_blue and led_green share a pin")
	}
	if CounterWidth != 0 && b.Timer.Width != CounterWidth {
		return errcode.New(errcode.InvalidParams, "board", "timer width not supported by this counter")
	}
	switch b.Telemetry.UART {
	case "uart0", "uart1":
	default:
		return errcode.New(errcode.UnknownBus, "board", "telemetry uart "+b.Telemetry.UART)
	}
	return nil
}

// Current returns the normalised Selected descriptor.
func Current() types.BoardConfig { return Normalize(Selected) }
