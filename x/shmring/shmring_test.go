package shmring

import (
	"testing"
)

func TestOrderAcrossWrapWithPartialProgress(t *testing.T) {
	r := New(64)

	const N = 2000
	src := make([]byte, N)
	for i := range src {
		src[i] = byte(i)
	}

	// Producer offers at most 7 bytes per step, consumer drains 17, forcing
	// frequent wraps and partial first-span progress.
	p := src
	dst := make([]byte, N)
	off := 0
	for off < N {
		if len(p) > 0 {
			step := min(7, len(p))
			step = r.TryWriteFrom(p[:step])
			p = p[step:]
		}
		var tmp [17]byte
		n := r.TryReadInto(tmp[:])
		copy(dst[off:], tmp[:n])
		off += n
	}

	for i := 0; i < N; i++ {
		if dst[i] != src[i] {
			t.Fatalf("mismatch at %d: got=%d want=%d", i, dst[i], src[i])
		}
	}
}

func TestWriteStopsAtCapacity(t *testing.T) {
	r := New(8)
	if n := r.TryWriteFrom([]byte("0123456789")); n != 8 {
		t.Fatalf("write into 8-byte ring accepted %d", n)
	}
	if r.Space() != 0 || r.Available() != 8 {
		t.Fatalf("space=%d avail=%d", r.Space(), r.Available())
	}
	if n := r.TryWriteFrom([]byte("x")); n != 0 {
		t.Fatalf("write into full ring accepted %d", n)
	}
}

func TestReadableWritableEdges(t *testing.T) {
	r := New(8)
	select {
	case <-r.Readable():
		t.Fatal("unexpected Readable on empty ring")
	default:
	}
	if n := r.TryWriteFrom([]byte{1, 2, 3}); n != 3 {
		t.Fatalf("write 3 -> %d", n)
	}
	select {
	case <-r.Readable():
	default:
		t.Fatal("expected Readable")
	}
	select {
	case <-r.Readable():
		t.Fatal("unexpected extra Readable")
	default:
	}

	// Fill, then drain one byte: full -> not-full edge fires Writable.
	r.TryWriteFrom(make([]byte, 5))
	r.TryReadInto(make([]byte, 1))
	select {
	case <-r.Writable():
	default:
		t.Fatal("expected Writable after leaving full")
	}
}

func TestNewRejectsNonPowerOfTwo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for size 48")
		}
	}()
	New(48)
}
