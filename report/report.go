// Package report renders simulation results in the classic text layout.
package report

import (
	"fmt"
	"io"

	"github.com/sarchlab/cachesim/cache"
)

// Access writes one trace line for an outcome.
func Access(w io.Writer, o cache.Outcome) {
	result := "MISS"
	if o.Hit {
		result = "HIT "
	}

	fmt.Fprintf(w, "   %d: %s (Tag/Set#/Offset: %d/%d/%d)\n",
		o.Address, result, o.Tag, o.Set, o.Offset)
}

// Trace writes one line per outcome, in order.
func Trace(w io.Writer, outcomes []cache.Outcome) {
	for _, o := range outcomes {
		Access(w, o)
	}
}

// Contents writes the state of every line.
func Contents(w io.Writer, lines []cache.LineState) {
	fmt.Fprintf(w, "\nCache contents: \n")

	for _, l := range lines {
		valid := 0
		if l.Valid {
			valid = 1
		}

		fmt.Fprintf(w, "   %d: Valid: %d ;  Tag: %d  (Set #:  %d)\n",
			l.Index, valid, l.Tag, l.Set)
	}
}

// Summary writes the access counters.
func Summary(w io.Writer, stats cache.Statistics) {
	fmt.Fprintf(w, "\nAccesses: %d\n", stats.Accesses)
	fmt.Fprintf(w, "Hits: %d\n", stats.Hits)
	fmt.Fprintf(w, "Misses: %d\n", stats.Misses)
	fmt.Fprintf(w, "Evictions: %d\n", stats.Evictions)
	fmt.Fprintf(w, "Hit rate: %.2f%%\n", stats.HitRate()*100)

	if stats.Aliased > 0 {
		fmt.Fprintf(w, "Aliased tags: %d\n", stats.Aliased)
	}
}
