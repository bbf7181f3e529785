package main

import (
	"os"

	"github.com/existflow/focusboard/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
