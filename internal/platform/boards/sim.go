//go:build !rp2040

package boards

import "boardcore-go/types"

// CounterWidth is zero: the simulated counter takes any width.
var CounterWidth uint8

// Selected is the host simulation board. Pin numbers are logical only.
var Selected = types.BoardConfig{
	Name:     "sim",
	LEDBlue:  3,
	LEDGreen: 4,
	Timer:    types.TimerConfig{Slice: 0, Width: 16, TickUS: 1, Priority: 4},
	Telemetry: types.TelemetryConfig{
		UART: "uart1",
		Baud: 57_600,
	},
	USB: types.USBConfig{
		Identity: types.USBIdentity{
			VendorID:     0x16c0,
			ProductID:    0x27dd,
			Manufacturer: "boardcore",
			Product:      "Serial port",
			Serial:       "SIM0",
		},
		TxCapacity: 64,
	},
}
