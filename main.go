package main

import (
	"context"
	"time"

	"boardcore-go/bus"
	"boardcore-go/internal/diag"
	"boardcore-go/services/board"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	diag.Println("[main] boot")

	b := board.Default()

	bs := bus.NewBus(8)
	conn := bs.NewConnection("main")
	conn.Publish(conn.NewMessage(bus.T("config", "heartbeat"), b.Config().Heartbeat, true))

	if err := b.Run(context.Background(), bs); err != nil {
		diag.Println("[main] start failed:", err)
	}

	select {}
}
