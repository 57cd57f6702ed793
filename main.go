package main

import (
	"os"

	"github.com/fraudsight/fraudsight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
