// internal/platform/sim_host.go
//go:build !rp2040

package platform

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"boardcore-go/errcode"
	"boardcore-go/internal/halcore"
	"boardcore-go/types"
	"boardcore-go/x/shmring"
)

// DiagnosticsOverUSB is clear: the builtin print goes to stderr.
const DiagnosticsOverUSB = false

// Bringup builds a simulated board with every precondition met.
func Bringup(cfg types.BoardConfig) (*Hardware, error) { return NewSim(cfg).Bringup() }

// Sim is the host stand-in for a board. Tests and the host CLI keep the
// concrete handles to drive the "hardware" side.
type Sim struct {
	Board types.BoardConfig

	Guard    *SimGuard
	Counter  *SimCounter
	USB      *SimUSB
	LEDBlue  *SimPin
	LEDGreen *SimPin
	Telem1   *SimUART

	// USBClockMissing makes Bringup fail the way hardware does when the
	// USB kernel clock never starts.
	USBClockMissing bool
}

// NewSim allocates the simulated peripherals for cfg.
func NewSim(cfg types.BoardConfig) *Sim {
	g := &SimGuard{}
	return &Sim{
		Board:    cfg,
		Guard:    g,
		Counter:  NewSimCounter(cfg.Timer.Width, g),
		USB:      NewSimUSB(cfg.USB.TxCapacity),
		LEDBlue:  &SimPin{number: cfg.LEDBlue},
		LEDGreen: &SimPin{number: cfg.LEDGreen},
		Telem1:   NewSimUART(256),
	}
}

// Bringup runs the same sequence as the hardware bring-up: clock check,
// status LEDs high, telemetry, USB.
func (s *Sim) Bringup() (*Hardware, error) {
	if s.USBClockMissing {
		return nil, errcode.New(errcode.FatalInit, "bringup", "usb clock source not running")
	}
	s.LEDBlue.Set(true)
	s.LEDGreen.Set(true)
	return &Hardware{
		Board:     s.Board,
		Counter:   s.Counter,
		Guard:     s.Guard,
		USB:       s.USB,
		USBEngine: s.USB,
		LEDBlue:   s.LEDBlue,
		LEDGreen:  s.LEDGreen,
		Telem1:    s.Telem1,
	}, nil
}

// ----------------------------- IRQ guard -------------------------------------

// SimGuard excludes task critical sections from the simulated interrupt.
// Not reentrant: interrupt bodies must not call Disable while already inside.
type SimGuard struct{ mu sync.Mutex }

func (g *SimGuard) Disable() uintptr { g.mu.Lock(); return 0 }
func (g *SimGuard) Restore(uintptr)  { g.mu.Unlock() }

// ----------------------------- Counter ---------------------------------------

// SimCounter is a free-running counter advanced explicitly. Each wrap sets
// the pending flag and runs the armed ISR synchronously, the way a
// preempting interrupt would.
type SimCounter struct {
	mu    sync.Mutex // serialises Advance
	guard halcore.IRQGuard
	width uint8

	count   atomic.Uint32
	pending atomic.Bool
	acks    atomic.Uint32
	isr     atomic.Pointer[func()]
}

func NewSimCounter(width uint8, guard halcore.IRQGuard) *SimCounter {
	if width == 0 || width > 32 {
		width = 16
	}
	return &SimCounter{width: width, guard: guard}
}

func (c *SimCounter) Count() uint32 { return c.count.Load() }
func (c *SimCounter) Pending() bool { return c.pending.Load() }
func (c *SimCounter) Width() uint8  { return c.width }

func (c *SimCounter) Acknowledge() {
	c.pending.Store(false)
	c.acks.Add(1)
}

// Acks returns how many times the overflow flag was cleared.
func (c *SimCounter) Acks() uint32 { return c.acks.Load() }

func (c *SimCounter) Arm(isr func()) error {
	if isr == nil {
		return errcode.New(errcode.InvalidParams, "arm", "nil isr")
	}
	c.isr.Store(&isr)
	return nil
}

func (c *SimCounter) max() uint64 { return (uint64(1) << c.width) - 1 }

// Set places the counter at v without wrapping.
func (c *SimCounter) Set(v uint32) {
	s := c.guard.Disable()
	c.count.Store(uint32(uint64(v) & c.max()))
	c.guard.Restore(s)
}

// Advance moves the counter forward by ticks, firing one interrupt per wrap.
func (c *SimCounter) Advance(ticks uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ticks > 0 {
		cur := uint64(c.count.Load())
		room := c.max() - cur + 1
		if ticks < room {
			s := c.guard.Disable()
			c.count.Store(uint32(cur + ticks))
			c.guard.Restore(s)
			return
		}
		ticks -= room
		// Counter reset and flag set are one hardware event.
		s := c.guard.Disable()
		c.count.Store(0)
		c.pending.Store(true)
		c.guard.Restore(s)
		if isr := c.isr.Load(); isr != nil {
			(*isr)()
		}
	}
}

// Run advances the counter in real time at one count per tickUS until ctx
// is done.
func (c *SimCounter) Run(ctx context.Context, tickUS uint32, every time.Duration) {
	if tickUS == 0 {
		tickUS = 1
	}
	if every <= 0 {
		every = time.Millisecond
	}
	t := time.NewTicker(every)
	defer t.Stop()
	last := time.Now()
	var carry time.Duration
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			el := now.Sub(last) + carry
			last = now
			per := time.Duration(tickUS) * time.Microsecond
			n := el / per
			carry = el - n*per
			if n > 0 {
				c.Advance(uint64(n))
			}
		}
	}
}

// ----------------------------- USB -------------------------------------------

// SimUSB is a CDC-ACM endpoint with fixed-size bulk buffers and a device
// state driven by the test (standing in for host-side negotiation).
type SimUSB struct {
	in  *shmring.Ring // device -> host (bulk IN)
	out *shmring.Ring // host -> device (bulk OUT)

	mu     sync.Mutex
	state  halcore.DeviceState
	script []halcore.DeviceState
	polls  uint32
}

func NewSimUSB(txCap int) *SimUSB {
	return &SimUSB{
		in:  shmring.New(nextPow2(txCap)),
		out: shmring.New(512),
	}
}

// SerialTransport

func (u *SimUSB) Write(p []byte) (int, error) { return u.in.TryWriteFrom(p), nil }
func (u *SimUSB) Read(p []byte) (int, error)  { return u.out.TryReadInto(p), nil }
func (u *SimUSB) Buffered() int               { return u.out.Available() }

// DeviceEngine

// Poll applies the next scripted state, if any.
func (u *SimUSB) Poll() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.polls++
	if len(u.script) == 0 {
		return false
	}
	u.state = u.script[0]
	u.script = u.script[1:]
	return true
}

func (u *SimUSB) State() halcore.DeviceState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Host side

// Script queues device states applied one per Poll.
func (u *SimUSB) Script(states ...halcore.DeviceState) {
	u.mu.Lock()
	u.script = append(u.script, states...)
	u.mu.Unlock()
}

// SetState forces the current device state.
func (u *SimUSB) SetState(s halcore.DeviceState) {
	u.mu.Lock()
	u.state = s
	u.mu.Unlock()
}

// Polls returns how many times the engine was stepped.
func (u *SimUSB) Polls() uint32 {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.polls
}

// HostRead drains bytes the device sent.
func (u *SimUSB) HostRead(p []byte) int { return u.in.TryReadInto(p) }

// HostWrite queues bytes for the device to receive.
func (u *SimUSB) HostWrite(p []byte) int { return u.out.TryWriteFrom(p) }

// TxSpace is the instantaneous bulk IN capacity.
func (u *SimUSB) TxSpace() int { return u.in.Space() }

// ----------------------------- GPIO ------------------------------------------

// SimPin is an output pin that records its level.
type SimPin struct {
	number  int
	level   atomic.Bool
	toggles atomic.Uint32
}

func (p *SimPin) Set(level bool) { p.level.Store(level) }
func (p *SimPin) Get() bool      { return p.level.Load() }
func (p *SimPin) Number() int    { return p.number }
func (p *SimPin) Toggles() int   { return int(p.toggles.Load()) }

func (p *SimPin) Toggle() {
	for {
		old := p.level.Load()
		if p.level.CompareAndSwap(old, !old) {
			p.toggles.Add(1)
			return
		}
	}
}

// ----------------------------- UART ------------------------------------------

// SimUART implements the drivers.UART telemetry contract over two rings.
type SimUART struct {
	tx *shmring.Ring
	rx *shmring.Ring
}

func NewSimUART(size int) *SimUART {
	size = nextPow2(size)
	return &SimUART{tx: shmring.New(size), rx: shmring.New(size)}
}

func (u *SimUART) Write(p []byte) (int, error) { return u.tx.TryWriteFrom(p), nil }
func (u *SimUART) Read(p []byte) (int, error)  { return u.rx.TryReadInto(p), nil }
func (u *SimUART) Buffered() int               { return u.rx.Available() }

// Sent drains bytes written by the device.
func (u *SimUART) Sent() []byte {
	buf := make([]byte, u.tx.Available())
	n := u.tx.TryReadInto(buf)
	return buf[:n]
}

// Inject queues bytes as if received on the wire.
func (u *SimUART) Inject(p []byte) int { return u.rx.TryWriteFrom(p) }
