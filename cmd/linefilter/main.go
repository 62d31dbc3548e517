// Package main provides the CLI entry point for linefilter.
package main

import (
	"fmt"
	"os"

	"linefilter/internal/output"
)

func main() {
	cmd := newRootCmd(output.DefaultConfig())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
