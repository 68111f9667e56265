// Package board is the application context: it brings the hardware up
// once, owns the timebase and the shared USB channel, publishes the
// peripheral handles and starts the service tasks.
package board

import (
	"context"
	"sync"
	"time"

	"boardcore-go/bus"
	"boardcore-go/errcode"
	"boardcore-go/internal/console"
	"boardcore-go/internal/diag"
	"boardcore-go/internal/halcore"
	"boardcore-go/internal/platform"
	"boardcore-go/internal/platform/boards"
	"boardcore-go/internal/registry"
	"boardcore-go/internal/timebase"
	"boardcore-go/internal/usbserial"
	"boardcore-go/services/heartbeat"
	"boardcore-go/types"
)

var topicUSBState = bus.T("board", "usb", "state")

// USBPollEvery is the USB service cycle.
const USBPollEvery = 10 * time.Millisecond

type Board struct {
	cfg types.BoardConfig
	hw  *platform.Hardware

	bridge *timebase.Bridge
	clock  *timebase.Clock
	usb    *usbserial.Channel
	periph *registry.Peripherals
}

// New performs bring-up and arms the timer. It runs once per process;
// failures are FatalInit.
func New(cfg types.BoardConfig, bringup platform.BringupFunc) (*Board, error) {
	cfg = boards.Normalize(cfg)
	if err := boards.Validate(cfg); err != nil {
		return nil, err
	}

	hw, err := bringup(cfg)
	if err != nil {
		if errcode.Of(err) == errcode.FatalInit {
			return nil, err
		}
		return nil, errcode.Wrap(errcode.FatalInit, "bringup", err)
	}

	bridge := timebase.NewBridge(hw.Counter, hw.Guard, cfg.Timer.QueueLen)
	if err := bridge.Arm(); err != nil {
		return nil, errcode.Wrap(errcode.FatalInit, "arm timer", err)
	}

	b := &Board{
		cfg:    cfg,
		hw:     hw,
		bridge: bridge,
		clock:  timebase.NewClock(bridge, cfg.Timer.TickUS),
		usb: usbserial.New(hw.USB, hw.USBEngine, usbserial.Config{
			LockTimeout: cfg.USB.LockTimeout,
			InboundSize: cfg.USB.InboundSize,
		}),
		periph: registry.NewPeripherals(),
	}
	if err := b.periph.PublishAll(hw.LEDBlue, hw.LEDGreen, hw.Telem1); err != nil {
		return nil, errcode.Wrap(errcode.FatalInit, "publish", err)
	}

	if platform.DiagnosticsOverUSB {
		b.routeDiagnostics()
	}
	diag.Println("[board]", cfg.Name, "up: tick_us", cfg.Timer.TickUS, "width", hw.Counter.Width())
	return b, nil
}

var (
	defaultOnce sync.Once
	defaultB    *Board
)

// Default returns the process-wide board, bringing it up on first use.
// A bring-up failure is unrecoverable: it prints a diagnostic and panics.
func Default() *Board {
	defaultOnce.Do(func() {
		b, err := New(boards.Current(), platform.Bringup)
		if err != nil {
			diag.Println("[board] fatal:", err)
			panic(err)
		}
		defaultB = b
	})
	return defaultB
}

func (b *Board) Config() types.BoardConfig          { return b.cfg }
func (b *Board) Clock() *timebase.Clock             { return b.clock }
func (b *Board) Bridge() *timebase.Bridge           { return b.bridge }
func (b *Board) USB() *usbserial.Channel            { return b.usb }
func (b *Board) Peripherals() *registry.Peripherals { return b.periph }

// Timestamp is microseconds since the timer was armed.
func (b *Board) Timestamp() uint64 { return b.clock.Timestamp() }

// Run starts the heartbeat, the console, the overflow drain and the USB
// service. It returns once they are launched. Handle ownership is settled
// first, so a failure leaves no task running.
func (b *Board) Run(ctx context.Context, bs *bus.Bus) error {
	hb := heartbeat.New(b.usb, b.clock, b.periph.LEDGreen,
		time.Duration(b.cfg.Heartbeat.IntervalMS)*time.Millisecond)
	if err := hb.Start(ctx, bs.NewConnection("heartbeat")); err != nil {
		return err
	}
	con := console.New(b.usb, b.clock, b.periph, b.cfg.USB.Identity)
	if err := con.Start(ctx, bs.NewConnection("console")); err != nil {
		return err
	}

	go b.bridge.Run(ctx, bs.NewConnection("timer"))
	go b.usbLoop(ctx, bs.NewConnection("usb"))
	return nil
}

// routeDiagnostics sends diag output through the USB channel lock.
func (b *Board) routeDiagnostics() {
	diag.SetSink(func(line string) { b.usb.SendString(line) })
}

// usbLoop services the device every cycle: Poll first, then Receive.
// Received bytes are forwarded on board/usb/rx and state changes are
// published retained on board/usb/state.
func (b *Board) usbLoop(ctx context.Context, conn *bus.Connection) {
	tick := time.NewTicker(USBPollEvery)
	defer tick.Stop()

	last := halcore.DeviceState(0xFF)
	buf := make([]byte, b.usb.InboundCap())

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}

		if _, out := b.usb.Poll(); out.TimedOut() {
			continue
		}
		if st, out := b.usb.State(); out.OK() && st != last {
			last = st
			diag.Println("[usb] state", st)
			conn.Publish(conn.NewMessage(topicUSBState, types.USBStatus{
				State:     st.String(),
				Connected: st.Connected(),
				TSus:      b.clock.Timestamp(),
			}, true))
		}

		out := b.usb.Receive()
		if out.TimedOut() || out.N == 0 {
			continue
		}
		n, _ := b.usb.Inbound(buf)
		if n > 0 {
			conn.Publish(conn.NewMessage(console.TopicRx, append([]byte(nil), buf[:n]...), false))
		}
	}
}
