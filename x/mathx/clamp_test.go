package mathx

import (
	"testing"
	"time"
)

func TestClamp(t *testing.T) {
	if got := Clamp(5, 10, 1); got != 5 {
		t.Errorf("swapped bounds: %d", got)
	}
	if got := Clamp(uint8(40), 8, 32); got != 32 {
		t.Errorf("high: %d", got)
	}
	if got := Clamp(10*time.Millisecond, 50*time.Millisecond, time.Minute); got != 50*time.Millisecond {
		t.Errorf("duration: %v", got)
	}
	if Min(3, 4) != 3 || Max(3, 4) != 4 {
		t.Error("min/max")
	}
}
