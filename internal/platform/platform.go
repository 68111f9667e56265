// Package platform performs one-time board bring-up and returns initialised
// hardware handles. The implementation is selected by build tags: RP2040
// hardware under TinyGo, a deterministic simulation everywhere else.
package platform

import (
	"boardcore-go/internal/halcore"
	"boardcore-go/types"
)

// Hardware is the result of bring-up: every handle is configured and ready.
// The timer is not armed yet; the InterruptBridge arms it.
type Hardware struct {
	Board types.BoardConfig

	Counter halcore.TimerCounter
	Guard   halcore.IRQGuard

	USB       halcore.SerialTransport
	USBEngine halcore.DeviceEngine

	LEDBlue  halcore.OutputPin
	LEDGreen halcore.OutputPin
	Telem1   halcore.Telemetry
}

// BringupFunc performs bring-up for a board descriptor.
type BringupFunc func(cfg types.BoardConfig) (*Hardware, error)

func nextPow2(n int) int {
	p := 2
	for p < n {
		p <<= 1
	}
	return p
}

// usbStateFromStack maps what TinyGo's USB stack exposes onto DeviceState.
// The stack only reports whether endpoint configuration finished; it keeps
// the device address and bus suspend to itself, so Addressed and Suspend
// are never reported on the MCU.
func usbStateFromStack(endpointsReady bool) halcore.DeviceState {
	if endpointsReady {
		return halcore.StateConfigured
	}
	return halcore.StateDefault
}
