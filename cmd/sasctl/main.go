// Package main is the entry point for the sasctl CLI.
package main

import (
	"os"

	"sas-panel/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
