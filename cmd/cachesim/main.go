// Package main provides the entry point for cachesim.
// cachesim replays a byte-address stream through a set-associative cache
// with FIFO replacement and reports every hit and miss.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
