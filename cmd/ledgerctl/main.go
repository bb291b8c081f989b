// Package main is the ledgerctl command line.
package main

import (
	"os"

	"ledgerio/internal/commands"
)

var version = "dev"

func main() {
	if err := commands.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
