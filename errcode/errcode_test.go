package errcode

import (
	"errors"
	"testing"
)

func TestOf(t *testing.T) {
	cause := errors.New("pll_usb not locked")
	cases := []struct {
		name string
		err  error
		want Code
	}{
		{"nil", nil, OK},
		{"bare code", Timeout, Timeout},
		{"wrapped E", Wrap(FatalInit, "bringup", cause), FatalInit},
		{"foreign", cause, Error},
	}
	for _, tc := range cases {
		if got := Of(tc.err); got != tc.want {
			t.Errorf("%s: Of()=%q want %q", tc.name, got, tc.want)
		}
	}
}

func TestEUnwrapAndMessage(t *testing.T) {
	cause := errors.New("no clock")
	e := Wrap(FatalInit, "bringup", cause)
	if !errors.Is(e, cause) {
		t.Fatal("errors.Is should see the cause")
	}
	if got, want := e.Error(), "bringup: fatal_init: no clock"; got != want {
		t.Fatalf("Error()=%q want %q", got, want)
	}
	if got, want := New(InUse, "take", "led_green").Error(), "take: in_use: led_green"; got != want {
		t.Fatalf("Error()=%q want %q", got, want)
	}
}
