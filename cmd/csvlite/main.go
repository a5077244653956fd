// Package main provides the csvlite CLI.
package main

import (
	"os"

	"github.com/tablehaus/csvlite/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
