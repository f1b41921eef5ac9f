package main

import (
	"os"
	_ "time/tzdata"

	"SignalSentinel/cmd/bot/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
