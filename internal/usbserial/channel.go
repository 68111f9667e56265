// Package usbserial shares one USB virtual-serial endpoint between tasks.
//
// The transport and the device state sit behind a bounded-wait mutex. Every
// operation either completes or gives up after the lock timeout; none of
// them blocks indefinitely and none of them is callable from an interrupt.
package usbserial

import (
	"sync/atomic"
	"time"

	"boardcore-go/errcode"
	"boardcore-go/internal/halcore"
)

// DefaultLockTimeout bounds every lock attempt.
const DefaultLockTimeout = 100 * time.Millisecond

// Outcome reports what a best-effort operation actually did.
//
//	errcode.OK        completed
//	errcode.Timeout   lock not acquired in time; nothing happened
//	errcode.Truncated partial: N bytes moved, the rest dropped or left behind
type Outcome struct {
	N    int
	Code errcode.Code
}

func (o Outcome) OK() bool       { return o.Code == errcode.OK }
func (o Outcome) TimedOut() bool { return o.Code == errcode.Timeout }

var timedOut = Outcome{Code: errcode.Timeout}

// Stats are monotonic counters for diagnostics.
type Stats struct {
	Timeouts    uint32
	Truncations uint32
	BytesOut    uint32
	BytesIn     uint32
}

// Config tunes a Channel. Zero fields take defaults.
type Config struct {
	LockTimeout time.Duration
	InboundSize int
}

// Channel owns the USB serial transport and device state.
type Channel struct {
	lock    *TimedMutex
	timeout time.Duration

	// Guarded by lock.
	transport halcore.SerialTransport
	engine    halcore.DeviceEngine
	state     halcore.DeviceState
	inbound   []byte
	inboundN  int

	timeouts    atomic.Uint32
	truncations atomic.Uint32
	bytesOut    atomic.Uint32
	bytesIn     atomic.Uint32
}

// New wraps an initialised transport and protocol engine.
func New(t halcore.SerialTransport, e halcore.DeviceEngine, cfg Config) *Channel {
	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.InboundSize <= 0 {
		cfg.InboundSize = 64
	}
	return &Channel{
		lock:      NewTimedMutex(),
		timeout:   cfg.LockTimeout,
		transport: t,
		engine:    e,
		inbound:   make([]byte, cfg.InboundSize),
	}
}

func (c *Channel) acquire() bool {
	if c.lock.TryLockFor(c.timeout) {
		return true
	}
	c.timeouts.Add(1)
	return false
}

// Send writes as much of p as the transport accepts right now. The
// remainder is dropped without retry.
func (c *Channel) Send(p []byte) Outcome {
	if !c.acquire() {
		return timedOut
	}
	n, err := c.transport.Write(p)
	c.lock.Unlock()

	if n < 0 {
		n = 0
	}
	c.bytesOut.Add(uint32(n))
	if err != nil || n < len(p) {
		c.truncations.Add(1)
		return Outcome{N: n, Code: errcode.Truncated}
	}
	return Outcome{N: n, Code: errcode.OK}
}

// SendString is Send for text.
func (c *Channel) SendString(s string) Outcome { return c.Send([]byte(s)) }

// Poll steps the protocol engine once and reports whether the host has
// configured the device. A lock timeout reports false.
func (c *Channel) Poll() (bool, Outcome) {
	if !c.acquire() {
		return false, timedOut
	}
	c.engine.Poll()
	c.state = c.engine.State()
	st := c.state
	c.lock.Unlock()
	return st == halcore.StateConfigured, Outcome{Code: errcode.OK}
}

// Receive replaces the inbound buffer with newly available bytes. Unread
// previous contents are discarded. Bytes beyond the buffer capacity stay in
// the transport and the outcome is Truncated.
func (c *Channel) Receive() Outcome {
	if !c.acquire() {
		return timedOut
	}
	n, err := c.transport.Read(c.inbound)
	if n < 0 {
		n = 0
	}
	c.inboundN = n
	more := c.transport.Buffered()
	c.lock.Unlock()

	c.bytesIn.Add(uint32(n))
	if err != nil || more > 0 {
		c.truncations.Add(1)
		return Outcome{N: n, Code: errcode.Truncated}
	}
	return Outcome{N: n, Code: errcode.OK}
}

// Inbound copies the current inbound buffer into dst.
func (c *Channel) Inbound(dst []byte) (int, Outcome) {
	if !c.acquire() {
		return 0, timedOut
	}
	n := copy(dst, c.inbound[:c.inboundN])
	c.lock.Unlock()
	if n < c.inboundN {
		return n, Outcome{N: n, Code: errcode.Truncated}
	}
	return n, Outcome{N: n, Code: errcode.OK}
}

// State returns the device state observed by the last Poll.
func (c *Channel) State() (halcore.DeviceState, Outcome) {
	if !c.acquire() {
		return halcore.StateDefault, timedOut
	}
	st := c.state
	c.lock.Unlock()
	return st, Outcome{Code: errcode.OK}
}

// InboundCap is the fixed inbound buffer capacity.
func (c *Channel) InboundCap() int { return len(c.inbound) }

// Stats snapshots the diagnostic counters.
func (c *Channel) Stats() Stats {
	return Stats{
		Timeouts:    c.timeouts.Load(),
		Truncations: c.truncations.Load(),
		BytesOut:    c.bytesOut.Load(),
		BytesIn:     c.bytesIn.Load(),
	}
}
