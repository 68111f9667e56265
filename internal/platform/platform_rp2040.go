// internal/platform/platform_rp2040.go
//go:build rp2040

package platform

import (
	"device/rp"
	"machine"
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"boardcore-go/errcode"
	"boardcore-go/internal/diag"
	"boardcore-go/internal/halcore"
	"boardcore-go/types"
	"boardcore-go/x/timex"
)

// DiagnosticsOverUSB is set because the builtin print writes to the USB
// CDC port that the shared channel also drives.
const DiagnosticsOverUSB = true

// Bringup configures the RP2040 peripherals named by cfg. It must run once;
// a second call reconfigures the same hardware.
func Bringup(cfg types.BoardConfig) (*Hardware, error) {
	// USB needs the 48 MHz PLL. Without it nothing on the board is usable.
	if !rp.PLL_USB.CS.HasBits(rp.PLL_SYS_CS_LOCK) {
		return nil, errcode.New(errcode.FatalInit, "bringup", "pll_usb not locked")
	}

	blue := newPin(cfg.LEDBlue)
	green := newPin(cfg.LEDGreen)
	blue.Set(true)
	green.Set(true)

	telem, err := newTelemetry(cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	if err := machine.Serial.Configure(machine.UARTConfig{}); err != nil {
		return nil, errcode.Wrap(errcode.FatalInit, "bringup", err)
	}

	ctr, err := newPWMCounter(cfg.Timer)
	if err != nil {
		return nil, err
	}

	return &Hardware{
		Board:     cfg,
		Counter:   ctr,
		Guard:     irqGuard{},
		USB:       usbSerial{},
		USBEngine: usbEngine{},
		LEDBlue:   blue,
		LEDGreen:  green,
		Telem1:    telem,
	}, nil
}

// ----------------------------- IRQ guard -------------------------------------

type irqGuard struct{}

func (irqGuard) Disable() uintptr  { return uintptr(interrupt.Disable()) }
func (irqGuard) Restore(s uintptr) { interrupt.Restore(interrupt.State(s)) }

// ----------------------------- PWM timebase ----------------------------------

// pwmSlice mirrors one slice's register block (CSR, DIV, CTR, CC, TOP).
type pwmSlice struct {
	CSR volatile.Register32
	DIV volatile.Register32
	CTR volatile.Register32
	CC  volatile.Register32
	TOP volatile.Register32
}

const pwmSliceStride = 0x14

func sliceRegs(n uint8) *pwmSlice {
	return (*pwmSlice)(unsafe.Pointer(uintptr(unsafe.Pointer(rp.PWM)) + pwmSliceStride*uintptr(n)))
}

// pwmCounter runs one PWM slice free at 1/tick MHz with TOP=0xFFFF and uses
// its wrap interrupt as the overflow signal.
type pwmCounter struct {
	regs  *pwmSlice
	bit   uint32
	prio  uint8
	armed bool
}

// Only one slice may be armed; the wrap IRQ is shared by all slices.
var wrapISR func()

func handlePWMWrap(interrupt.Interrupt) {
	if wrapISR != nil {
		wrapISR()
	}
}

func newPWMCounter(cfg types.TimerConfig) (*pwmCounter, error) {
	if cfg.Slice > 7 {
		return nil, errcode.New(errcode.InvalidParams, "timer", "pwm slice out of range")
	}
	if cfg.Width != 16 {
		return nil, errcode.New(errcode.InvalidParams, "timer", "pwm counter is 16 bits")
	}
	c := &pwmCounter{regs: sliceRegs(cfg.Slice), bit: 1 << cfg.Slice, prio: cfg.Priority}

	div := timex.ClockDivider(machine.CPUFrequency(), 1_000_000/cfg.TickUS)
	if got := timex.TickPeriodUS(machine.CPUFrequency() / uint32(div)); got != cfg.TickUS {
		diag.Println("[timer] divider", div, "gives", got, "us per tick, wanted", cfg.TickUS)
	}
	c.regs.CSR.Set(0)
	c.regs.DIV.Set(uint32(div) << rp.PWM_CH0_DIV_INT_Pos)
	c.regs.TOP.Set(0xFFFF)
	c.regs.CTR.Set(0)
	rp.PWM.INTR.Set(c.bit)
	return c, nil
}

func (c *pwmCounter) Count() uint32 { return c.regs.CTR.Get() & 0xFFFF }
func (c *pwmCounter) Pending() bool { return rp.PWM.INTR.HasBits(c.bit) }
func (c *pwmCounter) Acknowledge()  { rp.PWM.INTR.Set(c.bit) } // write-1-to-clear
func (c *pwmCounter) Width() uint8  { return 16 }

func (c *pwmCounter) Arm(isr func()) error {
	if c.armed {
		return errcode.New(errcode.InUse, "arm", "pwm wrap irq already armed")
	}
	wrapISR = isr
	irq := interrupt.New(rp.IRQ_PWM_IRQ_WRAP, handlePWMWrap)
	irq.SetPriority(c.prio)
	rp.PWM.INTE.SetBits(c.bit)
	irq.Enable()
	c.regs.CSR.SetBits(rp.PWM_CH0_CSR_EN)
	c.armed = true
	return nil
}

// ----------------------------- USB CDC ---------------------------------------

// usbSerial adapts TinyGo's USB CDC serial to the transport contract.
type usbSerial struct{}

func (usbSerial) Write(p []byte) (int, error) { return machine.Serial.Write(p) }

func (usbSerial) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) && machine.Serial.Buffered() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			return n, err
		}
		p[n] = b
		n++
	}
	return n, nil
}

func (usbSerial) Buffered() int { return machine.Serial.Buffered() }

// usbEngine reports the device state kept by TinyGo's interrupt-driven USB
// stack. Enumeration progresses in the USB IRQ, so Poll has nothing to do.
type usbEngine struct{}

func (usbEngine) Poll() bool { return false }

func (usbEngine) State() halcore.DeviceState {
	return usbStateFromStack(machine.USBDev.InitEndpointComplete)
}

// ----------------------------- GPIO ------------------------------------------

type rp2Pin struct{ p machine.Pin }

func newPin(n int) *rp2Pin {
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &rp2Pin{p: p}
}

func (r *rp2Pin) Set(level bool) { r.p.Set(level) }
func (r *rp2Pin) Get() bool      { return r.p.Get() }
func (r *rp2Pin) Toggle() {
	if r.p.Get() {
		r.p.Low()
	} else {
		r.p.High()
	}
}

// ----------------------------- Telemetry UART --------------------------------

// telemUART adapts uartx to the drivers.UART contract.
type telemUART struct{ u *uartx.UART }

func newTelemetry(cfg types.TelemetryConfig) (*telemUART, error) {
	var hw *uartx.UART
	switch cfg.UART {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, errcode.New(errcode.UnknownBus, "telemetry", cfg.UART)
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: cfg.Baud,
		TX:       machine.Pin(cfg.TX),
		RX:       machine.Pin(cfg.RX),
	}); err != nil {
		return nil, errcode.Wrap(errcode.FatalInit, "telemetry", err)
	}
	return &telemUART{u: hw}, nil
}

func (t *telemUART) Write(p []byte) (int, error) { return t.u.Write(p) }
func (t *telemUART) Read(p []byte) (int, error)  { return t.u.TryRead(p), nil }
func (t *telemUART) Buffered() int               { return t.u.Buffered() }
