// Package timebase extends a narrow free-running hardware counter into a
// wide monotonic microsecond clock.
//
// Bridge is the interrupt side: it counts overflow epochs. Clock is the task
// side: it composes the epoch count with the raw counter.
package timebase

import (
	"context"
	"sync"
	"sync/atomic"

	"boardcore-go/bus"
	"boardcore-go/internal/halcore"
	"boardcore-go/types"
)

var topicOverflow = bus.T("board", "timer", "overflow")

// OverflowEvent is queued by the interrupt handler for the drain task.
type OverflowEvent struct {
	Epoch uint32 // overflow count after this wrap
}

// Bridge services the counter's overflow interrupt.
type Bridge struct {
	counter halcore.TimerCounter
	guard   halcore.IRQGuard

	// Written only by HandleOverflow.
	overflows atomic.Uint32

	callback atomic.Pointer[func()]

	// Written by ISR; MUST NOT block the ISR:
	isrQ  chan OverflowEvent
	drops atomic.Uint32

	mu        sync.RWMutex
	listeners []func(OverflowEvent)
}

// NewBridge returns an unarmed bridge. queueLen bounds the ISR queue.
func NewBridge(counter halcore.TimerCounter, guard halcore.IRQGuard, queueLen int) *Bridge {
	if queueLen <= 0 {
		queueLen = 16
	}
	return &Bridge{
		counter: counter,
		guard:   guard,
		isrQ:    make(chan OverflowEvent, queueLen),
	}
}

// Arm binds HandleOverflow to the counter's interrupt.
func (b *Bridge) Arm() error { return b.counter.Arm(b.HandleOverflow) }

// HandleOverflow is the interrupt body. It runs to completion without
// blocking: callback, epoch increment, acknowledge, then a non-blocking
// enqueue for the drain task.
func (b *Bridge) HandleOverflow() {
	if cb := b.callback.Load(); cb != nil {
		(*cb)()
	}

	s := b.guard.Disable()
	epoch := b.overflows.Add(1)
	b.counter.Acknowledge()
	b.guard.Restore(s)

	select {
	case b.isrQ <- OverflowEvent{Epoch: epoch}:
	default:
		b.drops.Add(1) // protect ISR path
	}
}

// SetCallback installs fn to run in interrupt context on every overflow;
// nil clears the slot. fn must not block, take locks or allocate. Prefer
// Listen for anything heavier than a counter bump.
func (b *Bridge) SetCallback(fn func()) {
	if fn == nil {
		b.callback.Store(nil)
		return
	}
	b.callback.Store(&fn)
}

// Listen registers fn to run in the drain task for every dequeued event.
func (b *Bridge) Listen(fn func(OverflowEvent)) {
	b.mu.Lock()
	b.listeners = append(b.listeners, fn)
	b.mu.Unlock()
}

// Overflows returns the number of counter wraps serviced so far.
func (b *Bridge) Overflows() uint32 { return b.overflows.Load() }

// Drops returns events the ISR could not queue.
func (b *Bridge) Drops() uint32 { return b.drops.Load() }

// Run drains the ISR queue until ctx is done, publishing each event on
// board/timer/overflow (when conn is non-nil) and invoking listeners.
func (b *Bridge) Run(ctx context.Context, conn *bus.Connection) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.isrQ:
			b.dispatch(ev, conn)
		}
	}
}

func (b *Bridge) dispatch(ev OverflowEvent, conn *bus.Connection) {
	if conn != nil {
		conn.Publish(conn.NewMessage(topicOverflow, types.TimerOverflow{
			Epoch: ev.Epoch,
			Drops: b.drops.Load(),
		}, false))
	}
	b.mu.RLock()
	ls := b.listeners
	b.mu.RUnlock()
	for _, fn := range ls {
		fn(ev)
	}
}
