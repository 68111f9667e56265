//go:build !rp2040

// Command boardsim runs the board core against the host simulation: a
// real-time counter, a scripted USB host and the debug console.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "boardsim:", err)
		os.Exit(1)
	}
}
