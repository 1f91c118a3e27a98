package main

import (
	"os"

	"github.com/pablasso/planfirst/internal/cli"
)

func main() {
	// no args opens the TUI; anything else is a CLI command
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
