package timex

import "testing"

func TestTickPeriodUS(t *testing.T) {
	cases := []struct {
		hz   uint32
		want uint32
	}{
		{1_000_000, 1},
		{10_000, 100},
		{0, 1},
		{48_000_000, 1},
	}
	for _, tc := range cases {
		if got := TickPeriodUS(tc.hz); got != tc.want {
			t.Errorf("TickPeriodUS(%d)=%d want %d", tc.hz, got, tc.want)
		}
	}
}

func TestClockDivider(t *testing.T) {
	if got := ClockDivider(125_000_000, 1_000_000); got != 125 {
		t.Fatalf("125 MHz -> 1 MHz divider = %d", got)
	}
	if got := ClockDivider(125_000_000, 100); got != 255 {
		t.Fatalf("clamp high = %d", got)
	}
	if got := ClockDivider(1_000, 1_000_000); got != 1 {
		t.Fatalf("clamp low = %d", got)
	}
}
