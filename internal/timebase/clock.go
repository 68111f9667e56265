package timebase

import "time"

// Clock composes the overflow epoch count with the raw counter into a
// 64-bit microsecond timestamp.
type Clock struct {
	bridge *Bridge
	tickUS uint64
	width  uint8
}

// NewClock returns a clock over b's counter. tickUS is the counter period in
// microseconds; zero is treated as 1.
func NewClock(b *Bridge, tickUS uint32) *Clock {
	if tickUS == 0 {
		tickUS = 1
	}
	return &Clock{
		bridge: b,
		tickUS: uint64(tickUS),
		width:  b.counter.Width(),
	}
}

// Compose returns tickUS * ((overflows << width) + count).
func Compose(tickUS uint32, width uint8, overflows, count uint32) uint64 {
	return uint64(tickUS) * ((uint64(overflows) << width) + uint64(count))
}

// Timestamp returns microseconds since the timer was armed. Successive calls
// never go backwards.
//
// An overflow can land between reading the epoch count and reading the
// counter. The read is retried whenever the epoch count or the pending flag
// changed across the sample, and a wrap the ISR has not serviced yet is
// credited from the pending flag.
func (c *Clock) Timestamp() uint64 {
	b := c.bridge
	for {
		o1 := b.overflows.Load()
		s := b.guard.Disable()
		p1 := b.counter.Pending()
		cnt := b.counter.Count()
		p2 := b.counter.Pending()
		b.guard.Restore(s)
		o2 := b.overflows.Load()

		if o1 != o2 || p1 != p2 {
			continue
		}
		if p1 {
			o1++
		}
		return c.tickUS * ((uint64(o1) << c.width) + uint64(cnt)&c.mask())
	}
}

// Since returns microseconds elapsed since t0, a prior Timestamp.
func (c *Clock) Since(t0 uint64) uint64 { return c.Timestamp() - t0 }

// Micros is Timestamp as a Duration.
func (c *Clock) Micros() time.Duration { return time.Duration(c.Timestamp()) * time.Microsecond }

// Epoch returns the serviced overflow count.
func (c *Clock) Epoch() uint32 { return c.bridge.Overflows() }

// EpochUS is the span of one overflow epoch in microseconds.
func (c *Clock) EpochUS() uint64 { return c.tickUS << c.width }

func (c *Clock) mask() uint64 { return (uint64(1) << c.width) - 1 }
