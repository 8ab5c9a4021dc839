// Package addrlist parses the byte-address streams fed to the simulator.
package addrlist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var (
	// ErrBadAddress is wrapped when an entry is not a non-negative integer.
	ErrBadAddress = errors.New("bad address")

	// ErrTooManyAddresses is wrapped when a list exceeds its cap.
	ErrTooManyAddresses = errors.New("too many addresses")
)

// Parse reads addresses separated by whitespace and/or commas. Entries may be
// decimal, or hexadecimal/octal/binary with a 0x/0o/0b prefix; a bare
// leading zero is still decimal. A limit of 0 means no cap.
func Parse(s string, limit int) ([]uint64, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	return ParseFields(fields, limit)
}

// ParseFields parses one address per field, as given on a command line.
// Fields may themselves contain comma-separated lists.
func ParseFields(fields []string, limit int) ([]uint64, error) {
	addresses := make([]uint64, 0, len(fields))

	for _, field := range fields {
		for _, entry := range strings.Split(field, ",") {
			entry = strings.TrimSpace(entry)
			if entry == "" {
				continue
			}

			addr, err := parseOne(entry)
			if err != nil {
				return nil, err
			}

			addresses = append(addresses, addr)
			if limit > 0 && len(addresses) > limit {
				return nil, fmt.Errorf("%w: more than %d", ErrTooManyAddresses, limit)
			}
		}
	}

	return addresses, nil
}

// ReadLine parses the next line of r. An empty line yields an empty list.
// Pass a *bufio.Reader to keep reading the same stream afterwards.
func ReadLine(r io.Reader, limit int) ([]uint64, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to read addresses: %w", err)
	}

	return Parse(line, limit)
}

func parseOne(entry string) (uint64, error) {
	if strings.HasPrefix(entry, "-") {
		return 0, fmt.Errorf("%w: %q is negative", ErrBadAddress, entry)
	}

	base := 10
	if len(entry) > 2 && entry[0] == '0' && strings.ContainsRune("xXoObB", rune(entry[1])) {
		base = 0
	}

	addr, err := strconv.ParseUint(entry, base, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrBadAddress, entry, err)
	}

	return addr, nil
}
