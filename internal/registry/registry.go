// Package registry publishes hardware handles created during bring-up so
// that tasks can reach them without threading them through every call.
//
// A Cell is written once and read forever after. Nothing here reclaims a
// handle: the hardware outlives every task.
package registry

import (
	"sync"
	"sync/atomic"

	"boardcore-go/errcode"
	"boardcore-go/internal/halcore"
)

// Cell is a publish-once slot for a handle.
//
// Borrow performs no locking and enforces no exclusivity. Two tasks that
// both Borrow the same pin and drive it race on the hardware; keeping one
// user per handle is a convention. Take is the checked alternative: it
// hands the handle to a single owner and refuses everyone after.
type Cell[T any] struct {
	name  string
	ptr   atomic.Pointer[T]
	taken atomic.Bool
}

// NewCell returns an empty cell; name appears in errors.
func NewCell[T any](name string) *Cell[T] { return &Cell[T]{name: name} }

func (c *Cell[T]) Name() string { return c.name }

// Publish stores h. Only the first call succeeds.
func (c *Cell[T]) Publish(h *T) error {
	if h == nil {
		return errcode.New(errcode.InvalidParams, "publish", c.name)
	}
	if !c.ptr.CompareAndSwap(nil, h) {
		return errcode.New(errcode.AlreadyPublished, "publish", c.name)
	}
	return nil
}

// Borrow returns the published handle, or nil before Publish. Safe from any
// context including interrupt handlers.
func (c *Cell[T]) Borrow() *T { return c.ptr.Load() }

// MustBorrow is Borrow for callers that run strictly after bring-up.
func (c *Cell[T]) MustBorrow() *T {
	h := c.ptr.Load()
	if h == nil {
		panic(errcode.New(errcode.HALNotReady, "borrow", c.name))
	}
	return h
}

// Take transfers ownership of the handle to the caller. Later Take calls
// fail with InUse.
func (c *Cell[T]) Take() (*T, error) {
	h := c.ptr.Load()
	if h == nil {
		return nil, errcode.New(errcode.HALNotReady, "take", c.name)
	}
	if !c.taken.CompareAndSwap(false, true) {
		return nil, errcode.New(errcode.InUse, "take", c.name)
	}
	return h, nil
}

// Taken reports whether an owner holds the handle.
func (c *Cell[T]) Taken() bool { return c.taken.Load() }

// Guarded wraps a handle that several tasks genuinely share.
type Guarded[T any] struct {
	mu sync.Mutex
	v  *T
}

func NewGuarded[T any](v *T) *Guarded[T] { return &Guarded[T]{v: v} }

// With runs fn with exclusive access to the handle. Task context only.
func (g *Guarded[T]) With(fn func(*T)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(g.v)
}

// Peripherals are the board handles published after bring-up.
type Peripherals struct {
	LEDBlue  *Cell[halcore.OutputPin]
	LEDGreen *Cell[halcore.OutputPin]
	Telem1   *Cell[halcore.Telemetry]
}

func NewPeripherals() *Peripherals {
	return &Peripherals{
		LEDBlue:  NewCell[halcore.OutputPin]("led_blue"),
		LEDGreen: NewCell[halcore.OutputPin]("led_green"),
		Telem1:   NewCell[halcore.Telemetry]("telem1"),
	}
}

// PublishAll stores every handle. The first failure stops the sequence.
func (p *Peripherals) PublishAll(blue, green halcore.OutputPin, telem halcore.Telemetry) error {
	if err := p.LEDBlue.Publish(&blue); err != nil {
		return err
	}
	if err := p.LEDGreen.Publish(&green); err != nil {
		return err
	}
	return p.Telem1.Publish(&telem)
}
