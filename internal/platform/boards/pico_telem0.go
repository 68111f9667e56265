//go:build rp2040 && board_pico_telem0

package boards

import "boardcore-go/types"

// Selected moves telemetry to UART0 (GP0/GP1), the timebase to slice 6 and
// the blue LED to the on-board GP25.
var Selected = types.BoardConfig{
	Name:     "pico_telem0",
	LEDBlue:  25,
	LEDGreen: 16,
	Timer:    types.TimerConfig{Slice: 6, Width: 16, TickUS: 1, Priority: 4 << 6},
	Telemetry: types.TelemetryConfig{
		UART: "uart0",
		Baud: 57_600,
		TX:   0,
		RX:   1,
	},
	USB: types.USBConfig{
		Identity: types.USBIdentity{
			VendorID:     0x16c0,
			ProductID:    0x27dd,
			Manufacturer: "boardcore",
			Product:      "Serial port",
			Serial:       "TEST PORT 2",
		},
	},
}
