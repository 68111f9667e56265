// Package heartbeat blinks the green status LED and reports the board
// timestamp over USB at a configurable interval.
package heartbeat

import (
	"context"
	"time"

	"boardcore-go/bus"
	"boardcore-go/internal/diag"
	"boardcore-go/internal/halcore"
	"boardcore-go/internal/registry"
	"boardcore-go/internal/usbserial"
	"boardcore-go/types"
	"boardcore-go/x/conv"
	"boardcore-go/x/mathx"
)

var topicConfigHeartbeat = bus.T("config", "heartbeat")

const (
	minInterval = 50 * time.Millisecond
	maxInterval = time.Minute
)

type Sender interface {
	Send(p []byte) usbserial.Outcome
}

type Clock interface {
	Timestamp() uint64
}

type Service struct {
	usb      Sender
	clock    Clock
	led      *registry.Cell[halcore.OutputPin]
	interval time.Duration

	beats   uint32
	skipped uint32
}

// New returns a heartbeat that owns the LED in led once started.
func New(usb Sender, clock Clock, led *registry.Cell[halcore.OutputPin], interval time.Duration) *Service {
	return &Service{
		usb:      usb,
		clock:    clock,
		led:      led,
		interval: clampInterval(interval),
	}
}

func clampInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Second
	}
	return mathx.Clamp(d, minInterval, maxInterval)
}

// intervalFrom accepts a typed config or the generic map a JSON decoder
// produces.
func intervalFrom(payload any) (time.Duration, bool) {
	switch v := payload.(type) {
	case types.HeartbeatConfig:
		return time.Duration(v.IntervalMS) * time.Millisecond, v.IntervalMS > 0
	case *types.HeartbeatConfig:
		if v == nil {
			return 0, false
		}
		return time.Duration(v.IntervalMS) * time.Millisecond, v.IntervalMS > 0
	case map[string]any:
		if ms, ok := v["interval_ms"].(float64); ok && ms > 0 {
			return time.Duration(ms) * time.Millisecond, true
		}
	}
	return 0, false
}

func (s *Service) beat(pin halcore.OutputPin) {
	pin.Toggle()
	s.beats++

	line := make([]byte, 0, 48)
	line = append(line, "[hb] ts="...)
	line = conv.AppendUint(line, s.clock.Timestamp())
	line = append(line, " n="...)
	line = conv.AppendUint(line, uint64(s.beats))
	line = append(line, '\r', '\n')

	if out := s.usb.Send(line); out.TimedOut() {
		// USB is busy; the LED still proves liveness.
		s.skipped++
	}
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, pin halcore.OutputPin) {
	cfgSub := conn.Subscribe(topicConfigHeartbeat)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			diag.Println("[hb] stopping")
			return
		case <-tick.C:
			s.beat(pin)
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			d, ok := intervalFrom(msg.Payload)
			if !ok {
				diag.Println("[hb] ignoring malformed config")
				continue
			}
			s.interval = clampInterval(d)
			tick.Reset(s.interval)
			diag.Println("[hb] interval set to", int(s.interval/time.Millisecond), "ms")
		}
	}
}

// Start takes ownership of the LED and runs the heartbeat until ctx is
// done. It fails if another task already owns the LED.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	h, err := s.led.Take()
	if err != nil {
		return err
	}
	go s.serviceLoop(ctx, conn, *h)
	return nil
}
