package main

import (
	"os"

	"github.com/atrium-dev/atrium/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
