package usbserial

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// TimedMutex is a mutual-exclusion lock whose acquisition gives up after a
// bounded wait. Task context only: never call from an interrupt handler.
type TimedMutex struct {
	sem *semaphore.Weighted
}

func NewTimedMutex() *TimedMutex {
	return &TimedMutex{sem: semaphore.NewWeighted(1)}
}

// TryLockFor acquires the lock, waiting at most d. d <= 0 tries once.
func (m *TimedMutex) TryLockFor(d time.Duration) bool {
	if m.sem.TryAcquire(1) {
		return true
	}
	if d <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return m.sem.Acquire(ctx, 1) == nil
}

// Lock blocks until the lock is held.
func (m *TimedMutex) Lock() { _ = m.sem.Acquire(context.Background(), 1) }

// Unlock releases the lock. Unlocking an unlocked mutex panics.
func (m *TimedMutex) Unlock() { m.sem.Release(1) }
