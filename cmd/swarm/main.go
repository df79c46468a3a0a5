package main

import (
	"os"

	"github.com/ppiankov/swarm/internal/cli"
)

// Version information - set during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)

	// Execute prints the error itself
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
