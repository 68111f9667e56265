//go:build !rp2040

package platform

import (
	"testing"

	"boardcore-go/errcode"
	"boardcore-go/internal/halcore"
	"boardcore-go/internal/platform/boards"
)

func TestSimCounterWrapsAndFires(t *testing.T) {
	g := &SimGuard{}
	c := NewSimCounter(8, g)
	fired := 0
	if err := c.Arm(func() {
		if !c.Pending() {
			t.Error("isr ran without pending flag")
		}
		fired++
		c.Acknowledge()
	}); err != nil {
		t.Fatal(err)
	}

	c.Advance(255)
	if c.Count() != 255 || fired != 0 {
		t.Fatalf("count=%d fired=%d", c.Count(), fired)
	}
	c.Advance(1)
	if c.Count() != 0 || fired != 1 || c.Pending() {
		t.Fatalf("after wrap: count=%d fired=%d pending=%v", c.Count(), fired, c.Pending())
	}
	c.Advance(3*256 + 7)
	if fired != 4 || c.Count() != 7 || c.Acks() != 4 {
		t.Fatalf("fired=%d count=%d acks=%d", fired, c.Count(), c.Acks())
	}
	if errcode.Of(c.Arm(nil)) != errcode.InvalidParams {
		t.Fatal("nil isr accepted")
	}
}

func TestSimUSBBuffersAndScript(t *testing.T) {
	u := NewSimUSB(8)
	n, _ := u.Write([]byte("0123456789"))
	if n != 8 || u.TxSpace() != 0 {
		t.Fatalf("n=%d space=%d", n, u.TxSpace())
	}
	var buf [16]byte
	if got := u.HostRead(buf[:]); string(buf[:got]) != "01234567" {
		t.Fatalf("host read %q", buf[:got])
	}

	u.HostWrite([]byte("hi"))
	if u.Buffered() != 2 {
		t.Fatalf("buffered=%d", u.Buffered())
	}

	u.Script(halcore.StateAddressed, halcore.StateConfigured)
	u.Poll()
	u.Poll()
	if u.Poll() || u.State() != halcore.StateConfigured || u.Polls() != 3 {
		t.Fatalf("state=%s polls=%d", u.State(), u.Polls())
	}
}

func TestSimBringup(t *testing.T) {
	s := NewSim(boards.Current())
	hw, err := s.Bringup()
	if err != nil {
		t.Fatal(err)
	}
	if !s.LEDBlue.Get() || !s.LEDGreen.Get() || hw.Telem1 == nil {
		t.Fatal("bring-up incomplete")
	}
	hw.LEDGreen.Toggle()
	if s.LEDGreen.Get() || s.LEDGreen.Toggles() != 1 {
		t.Fatal("toggle not recorded")
	}

	s = NewSim(boards.Current())
	s.USBClockMissing = true
	if _, err := s.Bringup(); errcode.Of(err) != errcode.FatalInit {
		t.Fatalf("err=%v", err)
	}
}

func TestUSBStateFromStack(t *testing.T) {
	if got := usbStateFromStack(false); got != halcore.StateDefault {
		t.Fatalf("not ready -> %s", got)
	}
	if got := usbStateFromStack(true); got != halcore.StateConfigured || !got.Connected() {
		t.Fatalf("ready -> %s", got)
	}
}
