//go:build !rp2040

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"boardcore-go/bus"
	"boardcore-go/internal/halcore"
	"boardcore-go/internal/platform"
	"boardcore-go/services/board"
	"boardcore-go/types"
)

type runOptions struct {
	*rootOptions
	Duration    time.Duration
	Send        []string
	HeartbeatMS int
}

func newRunCommand(rootOpts *rootOptions) *cobra.Command {
	opts := &runOptions{rootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Bring the simulated board up and stream its USB output",
		Long: `Bring the simulated board up, enumerate it on a scripted USB host and
print everything the device writes to its serial port.

Example:
  boardsim run --duration 5s
  boardsim run --board bench.yaml --send ts --send "led blue toggle"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadBoard(opts.Board)
			if err != nil {
				return err
			}
			if opts.HeartbeatMS > 0 {
				cfg.Heartbeat.IntervalMS = opts.HeartbeatMS
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Duration)
			defer cancel()
			return runSim(ctx, cfg, opts.Send, cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVarP(&opts.Duration, "duration", "d", 3*time.Second, "how long to run")
	cmd.Flags().StringArrayVar(&opts.Send, "send", nil, "console line to send once configured (repeatable)")
	cmd.Flags().IntVar(&opts.HeartbeatMS, "heartbeat-ms", 0, "heartbeat interval override")
	return cmd
}

func runSim(ctx context.Context, cfg types.BoardConfig, sends []string, out io.Writer) error {
	sim := platform.NewSim(cfg)
	sim.USB.Script(halcore.StateDefault, halcore.StateAddressed, halcore.StateConfigured)

	b, err := board.New(cfg, func(types.BoardConfig) (*platform.Hardware, error) { return sim.Bringup() })
	if err != nil {
		return err
	}

	bs := bus.NewBus(16)
	conn := bs.NewConnection("boardsim")
	conn.Publish(conn.NewMessage(bus.T("config", "heartbeat"), cfg.Heartbeat, true))
	states := conn.Subscribe(bus.T("board", "usb", "state"))
	defer conn.Unsubscribe(states)

	go sim.Counter.Run(ctx, cfg.Timer.TickUS, time.Millisecond)
	if err := b.Run(ctx, bs); err != nil {
		return err
	}

	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()
	var buf [256]byte
	drain := func() {
		for {
			n := sim.USB.HostRead(buf[:])
			if n == 0 {
				return
			}
			out.Write(buf[:n])
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain()
			fmt.Fprintf(out, "# done at ts=%dus overflows=%d\n", b.Timestamp(), b.Bridge().Overflows())
			return nil
		case m := <-states.Channel():
			st, _ := m.Payload.(types.USBStatus)
			fmt.Fprintf(out, "# usb %s\n", st.State)
			if st.Connected {
				for _, line := range sends {
					sim.USB.HostWrite([]byte(line + "\r\n"))
				}
				sends = nil
			}
		case <-poll.C:
			drain()
		}
	}
}
