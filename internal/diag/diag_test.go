package diag

import (
	"errors"
	"testing"

	"boardcore-go/errcode"
)

type named struct{}

func (named) String() string { return "configured" }

func TestPrintlnUsesSink(t *testing.T) {
	var got []string
	SetSink(func(line string) { got = append(got, line) })
	defer SetSink(nil)

	Println("[usb] state", named{})
	Println("[board] sim up: tick_us", uint32(1), "width", uint8(16), -3, true)
	Println("[board] fatal:", errors.New("no clock"), 1.5)

	want := []string{
		"[usb] state configured\r\n",
		"[board] sim up: tick_us 1 width 16 -3 true\r\n",
		"[board] fatal: no clock ?\r\n",
	}
	if len(got) != len(want) {
		t.Fatalf("lines %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("line %d=%q want %q", i, got[i], want[i])
		}
	}
}

func TestErrorCodeFormatsAsText(t *testing.T) {
	var got string
	SetSink(func(line string) { got = line })
	defer SetSink(nil)

	Println("[console] reply", errcode.Timeout)
	if got != "[console] reply timeout\r\n" {
		t.Fatalf("got %q", got)
	}
}

func TestClearedSinkFallsBack(t *testing.T) {
	calls := 0
	SetSink(func(string) { calls++ })
	SetSink(nil)
	Println("[test] to stderr")
	if calls != 0 {
		t.Fatal("cleared sink still called")
	}
}
