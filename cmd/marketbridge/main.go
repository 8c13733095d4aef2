package main

import (
	"os"

	"github.com/marketbridge/marketbridge/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
