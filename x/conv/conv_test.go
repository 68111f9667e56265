package conv

import (
	"math"
	"testing"
)

func TestUtoa(t *testing.T) {
	var buf [20]byte
	for _, tc := range []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{65536, "65536"},
		{math.MaxUint64, "18446744073709551615"},
	} {
		if got := string(Utoa(buf[:], tc.n)); got != tc.want {
			t.Errorf("Utoa(%d)=%q want %q", tc.n, got, tc.want)
		}
	}
}

func TestItoa(t *testing.T) {
	var buf [21]byte
	for _, tc := range []struct {
		n    int64
		want string
	}{
		{0, "0"},
		{-1, "-1"},
		{1234, "1234"},
		{math.MinInt64, "-9223372036854775808"},
	} {
		if got := string(Itoa(buf[:], tc.n)); got != tc.want {
			t.Errorf("Itoa(%d)=%q want %q", tc.n, got, tc.want)
		}
	}
}

func TestAppend(t *testing.T) {
	b := []byte("ts=")
	b = AppendUint(b, 42)
	b = append(b, ' ')
	b = AppendInt(b, -3)
	b = append(b, ' ')
	b = AppendHex16(b, 0x16c0)
	if string(b) != "ts=42 -3 0x16c0" {
		t.Fatalf("got %q", b)
	}
}
