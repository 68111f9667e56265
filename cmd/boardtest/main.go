//go:build rp2040

// Command boardtest is an on-device smoke test for the board core. It
// checks the timebase across several overflows, the USB channel and the
// telemetry UART, then repeats forever.
package main

import (
	"context"
	"fmt"
	"time"

	"boardcore-go/errcode"
	"boardcore-go/internal/diag"
	"boardcore-go/internal/halcore"
	"boardcore-go/services/board"
)

const (
	cyclePause  = 5 * time.Second
	epochsToSee = 3
)

// ---------- Output to USB and telemetry ----------

type out struct {
	b     *board.Board
	telem halcore.Telemetry
}

func (o *out) printf(format string, a ...any) {
	line := fmt.Sprintf(format, a...)
	// The builtin print shares the CDC port; go through the channel lock.
	o.b.USB().SendString(line)
	if o.telem != nil {
		_, _ = o.telem.Write([]byte(line))
	}
}

func (o *out) result(name string, ok bool, detail string) bool {
	verdict := "PASS"
	if !ok {
		verdict = "FAIL"
	}
	o.printf("[test] %-10s %s %s\r\n", name, verdict, detail)
	return ok
}

// ---------- Checks ----------

func checkTimebase(o *out) bool {
	clk := o.b.Clock()
	startEpoch := clk.Epoch()
	prev := clk.Timestamp()
	samples, backwards := 0, 0

	deadline := time.Now().Add(time.Duration(clk.EpochUS()*(epochsToSee+1)) * time.Microsecond)
	for clk.Epoch()-startEpoch < epochsToSee && time.Now().Before(deadline) {
		ts := clk.Timestamp()
		if ts < prev {
			backwards++
		}
		prev = ts
		samples++
	}
	seen := clk.Epoch() - startEpoch
	ok := backwards == 0 && seen >= epochsToSee && o.b.Bridge().Drops() == 0
	return o.result("timebase", ok,
		fmt.Sprintf("samples=%d backwards=%d epochs=%d drops=%d", samples, backwards, seen, o.b.Bridge().Drops()))
}

func checkWallClock(o *out) bool {
	clk := o.b.Clock()
	t0 := clk.Timestamp()
	time.Sleep(100 * time.Millisecond)
	el := clk.Since(t0)
	ok := el >= 95_000 && el <= 110_000
	return o.result("wallclock", ok, fmt.Sprintf("100ms sleep measured %dus", el))
}

func checkUSB(o *out) bool {
	st, _ := o.b.USB().State()
	res := o.b.USB().SendString("[test] usb check\r\n")
	ok := res.Code == errcode.OK || res.Code == errcode.Truncated
	return o.result("usb", ok, fmt.Sprintf("state=%s n=%d code=%s", st, res.N, res.Code))
}

func checkLED(o *out) bool {
	h := o.b.Peripherals().LEDBlue.Borrow()
	if h == nil {
		return o.result("led", false, "blue not published")
	}
	pin := *h
	before := pin.Get()
	pin.Toggle()
	after := pin.Get()
	pin.Set(before)
	return o.result("led", after != before, "blue toggled")
}

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	diag.Println("[test] boot")

	b := board.Default()
	// Keep the overflow queue drained or the timebase check sees drops.
	go b.Bridge().Run(context.Background(), nil)
	o := &out{b: b}
	if h, err := b.Peripherals().Telem1.Take(); err == nil {
		o.telem = *h
	}

	for cycle := 1; ; cycle++ {
		o.printf("[test] cycle %d ts=%dus\r\n", cycle, b.Timestamp())
		pass := true
		pass = checkTimebase(o) && pass
		pass = checkWallClock(o) && pass
		pass = checkUSB(o) && pass
		pass = checkLED(o) && pass
		if pass {
			o.printf("[test] cycle %d OK\r\n", cycle)
		} else {
			o.printf("[test] cycle %d FAILED\r\n", cycle)
		}
		time.Sleep(cyclePause)
	}
}
