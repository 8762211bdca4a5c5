package main

import (
	"os"

	"github.com/blackroad/sensor-dashboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
