//go:build rp2040 && !board_pico_telem0

package boards

import "boardcore-go/types"

// Selected is a Pico with status LEDs on GP14/GP15 and telemetry on UART1
// (GP4/GP5). PWM slice 7 runs free at 1 MHz as the timebase.
var Selected = types.BoardConfig{
	Name:     "pico",
	LEDBlue:  14,
	LEDGreen: 15,
	Timer:    types.TimerConfig{Slice: 7, Width: 16, TickUS: 1, Priority: 4 << 6},
	Telemetry: types.TelemetryConfig{
		UART: "uart1",
		Baud: 57_600,
		TX:   4,
		RX:   5,
	},
	USB: types.USBConfig{
		Identity: types.USBIdentity{
			VendorID:     0x16c0,
			ProductID:    0x27dd,
			Manufacturer: "boardcore",
			Product:      "Serial port",
			Serial:       "PICO0",
		},
	},
}
