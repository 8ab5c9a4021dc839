// Package main points at the cachesim command.
// cachesim is a set-associative cache simulator with FIFO replacement.
//
// For the full CLI, use: go run ./cmd/cachesim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "cachesim lives in ./cmd/cachesim; "+
		"run 'go run ./cmd/cachesim --help' for commands and flags.")
	os.Exit(2)
}
