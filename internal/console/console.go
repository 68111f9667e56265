// Package console is a line-oriented debug shell on the USB serial port.
//
// Bytes received over USB arrive on board/usb/rx. Complete lines are
// tokenised shell-style and dispatched; replies go back over USB.
//
//	ts                      timestamp and overflow epoch
//	state                   USB device state
//	stats                   USB channel counters
//	id                      USB identity
//	led blue on|off|toggle  drive the blue status LED
//	telem <text...>         write a line to the telemetry UART
package console

import (
	"context"
	"strings"

	"github.com/google/shlex"

	"boardcore-go/bus"
	"boardcore-go/errcode"
	"boardcore-go/internal/diag"
	"boardcore-go/internal/halcore"
	"boardcore-go/internal/registry"
	"boardcore-go/internal/usbserial"
	"boardcore-go/types"
	"boardcore-go/x/conv"
)

// TopicRx carries inbound USB bytes ([]byte payloads).
var TopicRx = bus.T("board", "usb", "rx")

const maxLine = 128

type USB interface {
	SendString(s string) usbserial.Outcome
	State() (halcore.DeviceState, usbserial.Outcome)
	Stats() usbserial.Stats
}

type Clock interface {
	Timestamp() uint64
	Epoch() uint32
}

type Console struct {
	usb      USB
	clock    Clock
	periph   *registry.Peripherals
	identity types.USBIdentity

	telem halcore.Telemetry // owned once Start succeeds

	line    []byte
	dropped bool
}

func New(usb USB, clock Clock, periph *registry.Peripherals, id types.USBIdentity) *Console {
	return &Console{
		usb:      usb,
		clock:    clock,
		periph:   periph,
		identity: id,
		line:     make([]byte, 0, maxLine),
	}
}

// Feed appends raw input and runs every completed line.
func (c *Console) Feed(p []byte) {
	for _, b := range p {
		switch b {
		case '\r', '\n':
			if c.dropped {
				c.dropped = false
				c.line = c.line[:0]
				c.reply("err line too long")
				continue
			}
			if len(c.line) == 0 {
				continue
			}
			reply := c.Exec(string(c.line))
			c.line = c.line[:0]
			if reply != "" {
				c.reply(reply)
			}
		default:
			if len(c.line) == cap(c.line) {
				c.dropped = true
				continue
			}
			if !c.dropped {
				c.line = append(c.line, b)
			}
		}
	}
}

func (c *Console) reply(s string) {
	if out := c.usb.SendString(s + "\r\n"); !out.OK() {
		diag.Println("[console] reply", out.Code, "n", out.N)
	}
}

// Exec runs one command line and returns the reply text.
func (c *Console) Exec(line string) string {
	args, err := shlex.Split(line)
	if err != nil {
		return "err parse: " + err.Error()
	}
	if len(args) == 0 {
		return ""
	}
	switch args[0] {
	case "help":
		return "cmds: ts state stats id led telem"
	case "ts":
		b := []byte("ts=")
		b = conv.AppendUint(b, c.clock.Timestamp())
		b = append(b, " epoch="...)
		b = conv.AppendUint(b, uint64(c.clock.Epoch()))
		return string(b)
	case "state":
		st, out := c.usb.State()
		if !out.OK() {
			return "err " + string(out.Code)
		}
		return "usb=" + st.String()
	case "stats":
		s := c.usb.Stats()
		b := []byte("timeouts=")
		b = conv.AppendUint(b, uint64(s.Timeouts))
		b = append(b, " trunc="...)
		b = conv.AppendUint(b, uint64(s.Truncations))
		b = append(b, " out="...)
		b = conv.AppendUint(b, uint64(s.BytesOut))
		b = append(b, " in="...)
		b = conv.AppendUint(b, uint64(s.BytesIn))
		return string(b)
	case "id":
		b := []byte("vid=")
		b = conv.AppendHex16(b, c.identity.VendorID)
		b = append(b, " pid="...)
		b = conv.AppendHex16(b, c.identity.ProductID)
		b = append(b, ' ')
		b = append(b, c.identity.Product...)
		return string(b)
	case "led":
		return c.led(args[1:])
	case "telem":
		return c.writeTelem(args[1:])
	default:
		return "err unknown command: " + args[0]
	}
}

func (c *Console) led(args []string) string {
	if len(args) != 2 || args[0] != "blue" {
		return "usage: led blue on|off|toggle"
	}
	// Shared by convention: the blue LED has no single owner task.
	h := c.periph.LEDBlue.Borrow()
	if h == nil {
		return "err " + string(errcode.HALNotReady)
	}
	pin := *h
	switch args[1] {
	case "on":
		pin.Set(true)
	case "off":
		pin.Set(false)
	case "toggle":
		pin.Toggle()
	default:
		return "usage: led blue on|off|toggle"
	}
	if pin.Get() {
		return "led blue on"
	}
	return "led blue off"
}

func (c *Console) writeTelem(args []string) string {
	if c.telem == nil {
		return "err telemetry not owned"
	}
	if len(args) == 0 {
		return "usage: telem <text>"
	}
	msg := strings.Join(args, " ") + "\r\n"
	n, err := c.telem.Write([]byte(msg))
	if err != nil {
		return "err telem: " + err.Error()
	}
	b := []byte("telem n=")
	b = conv.AppendUint(b, uint64(n))
	return string(b)
}

// Start takes the telemetry UART and serves input from board/usb/rx until
// ctx is done. Without the UART the console still runs, minus telem.
func (c *Console) Start(ctx context.Context, conn *bus.Connection) error {
	if h, err := c.periph.Telem1.Take(); err == nil {
		c.telem = *h
	} else {
		diag.Println("[console] telemetry unavailable:", err)
	}
	sub := conn.Subscribe(TopicRx)
	go func() {
		defer conn.Unsubscribe(sub)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-sub.Channel():
				if !ok {
					return
				}
				if p, ok := msg.Payload.([]byte); ok {
					c.Feed(p)
				}
			}
		}
	}()
	return nil
}
