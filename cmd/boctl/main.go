package main

import (
	"os"

	"github.com/crestline-labs/backoffice/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
