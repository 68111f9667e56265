package types

import "time"

// ------------------------
// Board configuration
// ------------------------

// USBIdentity is the CDC-ACM device identity advertised to the host.
type USBIdentity struct {
	VendorID     uint16 `json:"vid" yaml:"vid"`
	ProductID    uint16 `json:"pid" yaml:"pid"`
	Manufacturer string `json:"manufacturer" yaml:"manufacturer"`
	Product      string `json:"product" yaml:"product"`
	Serial       string `json:"serial" yaml:"serial"`
}

// TimerConfig describes the free-running counter behind the clock.
type TimerConfig struct {
	Slice    uint8  `json:"slice" yaml:"slice"`         // hardware instance (PWM slice on RP2)
	Width    uint8  `json:"width" yaml:"width"`         // counter bits
	TickUS   uint32 `json:"tick_us" yaml:"tick_us"`     // microseconds per count
	Priority uint8  `json:"priority" yaml:"priority"`   // overflow IRQ priority
	QueueLen int    `json:"queue_len" yaml:"queue_len"` // ISR -> task queue depth
}

// TelemetryConfig is the fixed-baud telemetry UART.
type TelemetryConfig struct {
	UART string `json:"uart" yaml:"uart"` // "uart0" | "uart1"
	Baud uint32 `json:"baud" yaml:"baud"`
	TX   int    `json:"tx" yaml:"tx"`
	RX   int    `json:"rx" yaml:"rx"`
}

// USBConfig tunes the shared USB channel.
type USBConfig struct {
	Identity    USBIdentity   `json:"identity" yaml:"identity"`
	LockTimeout time.Duration `json:"lock_timeout" yaml:"lock_timeout"`
	InboundSize int           `json:"inbound_size" yaml:"inbound_size"`
	TxCapacity  int           `json:"tx_capacity" yaml:"tx_capacity"` // host simulation only
}

// BoardConfig is the logical description of one board variant. Selecting a
// variant rebinds hardware instances; it never changes the core contracts.
type BoardConfig struct {
	Name      string          `json:"name" yaml:"name"`
	LEDBlue   int             `json:"led_blue" yaml:"led_blue"`
	LEDGreen  int             `json:"led_green" yaml:"led_green"`
	Timer     TimerConfig     `json:"timer" yaml:"timer"`
	Telemetry TelemetryConfig `json:"telemetry" yaml:"telemetry"`
	USB       USBConfig       `json:"usb" yaml:"usb"`
	Heartbeat HeartbeatConfig `json:"heartbeat" yaml:"heartbeat"`
}

// HeartbeatConfig is delivered retained on config/heartbeat.
type HeartbeatConfig struct {
	IntervalMS int `json:"interval_ms" yaml:"interval_ms"`
}

// ------------------------
// Bus payloads
// ------------------------

// TimerOverflow is published on board/timer/overflow by the drain task.
type TimerOverflow struct {
	Epoch uint32 `json:"epoch"`
	Drops uint32 `json:"drops"`
}

// USBStatus is published retained on board/usb/state when the device state
// changes.
type USBStatus struct {
	State     string `json:"state"`
	Connected bool   `json:"connected"`
	TSus      uint64 `json:"ts_us"`
}
