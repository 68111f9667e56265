// Package halcore holds the hardware contracts the board core consumes.
// Concrete implementations live in internal/platform, selected by build tags.
package halcore

import (
	"tinygo.org/x/drivers"
)

// ---- Free-running timer ----

// TimerCounter is a narrow free-running hardware counter with an overflow
// interrupt. Every method must be safe to call from interrupt context.
type TimerCounter interface {
	// Count reads the raw counter register. Lock-free, never blocks.
	Count() uint32
	// Pending reports an overflow flag that has not been acknowledged yet.
	Pending() bool
	// Acknowledge clears the pending overflow flag. It must run once per
	// interrupt firing or the interrupt re-fires immediately.
	Acknowledge()
	// Width is the counter width in bits; Count is in [0, 1<<Width).
	Width() uint8
	// Arm binds isr to the overflow interrupt and enables it.
	Arm(isr func()) error
}

// IRQGuard masks interrupts for a short critical section.
//
//	s := g.Disable()
//	... read registers ...
//	g.Restore(s)
//
// On MCU builds this is runtime/interrupt. On host builds it is a lock that
// the simulated interrupt also takes, so the two contexts exclude each other
// the way a single core does.
type IRQGuard interface {
	Disable() uintptr
	Restore(state uintptr)
}

// ---- USB device ----

// DeviceState is the USB class-level connection phase reported by the
// protocol engine. The engine drives it; the board core only interprets it.
type DeviceState uint8

const (
	StateDefault DeviceState = iota
	StateAddressed
	StateConfigured
	StateSuspend
)

func (s DeviceState) String() string {
	switch s {
	case StateDefault:
		return "default"
	case StateAddressed:
		return "addressed"
	case StateConfigured:
		return "configured"
	case StateSuspend:
		return "suspend"
	default:
		return "unknown"
	}
}

// Connected reports whether the host finished configuration.
func (s DeviceState) Connected() bool { return s == StateConfigured }

// SerialTransport is the CDC-ACM data interface. Write accepts as many bytes
// as currently fit and returns the count; it must not block.
type SerialTransport interface {
	Write(p []byte) (int, error)
	Read(p []byte) (int, error)
	// Buffered returns inbound bytes still waiting after a Read.
	Buffered() int
}

// DeviceEngine is the external USB protocol stack.
type DeviceEngine interface {
	// Poll drives the engine one step. Returns true if it did any work.
	Poll() bool
	State() DeviceState
}

// ---- Status outputs and telemetry ----

// OutputPin is an already-configured push-pull output.
type OutputPin interface {
	Set(level bool)
	Get() bool
	Toggle()
}

// Telemetry is a fixed-baud asynchronous serial port. It uses the TinyGo
// drivers UART contract so driver packages can take it directly.
type Telemetry = drivers.UART
