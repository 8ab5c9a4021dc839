// Package trace records cache accesses to files.
package trace

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cache"
)

// CSVTraceWriter is a cache observer that stores every access into a CSV
// file.
type CSVTraceWriter struct {
	path string
	file *os.File

	records    []record
	bufferSize int
}

type record struct {
	seq     int
	outcome cache.Outcome
}

// NewCSVTraceWriter creates a new CSVTraceWriter. The ".csv" extension is
// appended to path.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the trace file, including the extension. It is
// only known after Init.
func (t *CSVTraceWriter) Path() string {
	return t.path + ".csv"
}

// Init creates the trace file and registers it to be flushed and closed at
// exit. An empty path is replaced with a unique name. It fails if the file
// already exists.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "cachesim_trace_" + xid.New().String()
	}

	filename := t.Path()
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create trace file: %w", err)
	}
	t.file = file

	fmt.Fprintf(file, "Seq, Address, Tag, Set, Offset, Result, Line, EvictedTag\n")

	atexit.Register(func() {
		_ = t.Close()
	})

	return nil
}

// Observe buffers one access.
func (t *CSVTraceWriter) Observe(seq int, outcome cache.Outcome) {
	t.records = append(t.records, record{seq: seq, outcome: outcome})
	if len(t.records) >= t.bufferSize {
		t.Flush()
	}
}

// Flush writes the buffered accesses to the file.
func (t *CSVTraceWriter) Flush() {
	if t.file == nil {
		return
	}

	for _, r := range t.records {
		o := r.outcome

		result := "MISS"
		if o.Hit {
			result = "HIT"
		}

		evicted := ""
		if o.Evicted {
			evicted = fmt.Sprintf("%d", o.EvictedTag)
		}

		fmt.Fprintf(t.file, "%d, %d, %d, %d, %d, %s, %d, %s\n",
			r.seq, o.Address, o.Tag, o.Set, o.Offset, result, o.Line, evicted)
	}

	t.records = nil
}

// Close flushes and closes the file. Calling it more than once is a no-op.
func (t *CSVTraceWriter) Close() error {
	if t.file == nil {
		return nil
	}

	t.Flush()

	err := t.file.Close()
	t.file = nil

	return err
}
