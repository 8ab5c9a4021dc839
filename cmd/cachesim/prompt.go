package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/cachesim/addrlist"
)

// prompter asks questions on out and reads answers line by line from in.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func (p *prompter) askInt(prompt string) (int, error) {
	fmt.Fprint(p.out, prompt)

	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("failed to read answer: %w", err)
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("no answer to %q", strings.TrimSpace(prompt))
	}

	v, err := strconv.Atoi(line)
	if err != nil {
		return 0, fmt.Errorf("answer to %q is not an integer: %q",
			strings.TrimSpace(prompt), line)
	}

	return v, nil
}

func (p *prompter) askAddresses(prompt string, limit int) ([]uint64, error) {
	fmt.Fprint(p.out, prompt)

	return addrlist.ReadLine(p.in, limit)
}
