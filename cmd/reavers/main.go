package main

import (
	"os"

	"github.com/reavers-game/go-reavers/server"
)

func main() {
	server.SetDefaults()
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
