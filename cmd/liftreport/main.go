package main

import (
	"os"

	"github.com/liftreport/liftreport/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
