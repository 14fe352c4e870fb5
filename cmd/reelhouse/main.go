// Package main is the entry point for the reelhouse application.
package main

import (
	"os"

	"github.com/reelhouse/reelhouse/cmd/reelhouse/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
