// Package cache models a set-associative cache with FIFO replacement.
//
// A Cache decodes each byte address into tag, set index and offset, looks the
// tag up in the set's resident queue and, on a miss, admits it through the
// SetStore. Addresses must be applied one at a time in program order; the
// resident order after an access depends on every access before it.
package cache

import (
	"log/slog"

	"github.com/sarchlab/cachesim/geometry"
)

// Outcome is the result of one access.
type Outcome struct {
	Address uint64
	Tag     uint64
	Set     int
	Offset  uint64
	Hit     bool

	// Aliased reports that the tag lost high bits to the tag width.
	Aliased bool

	// Line is the physical line that holds the tag after the access.
	Line int

	// Evicted and EvictedTag describe the line replaced by a miss.
	Evicted    bool
	EvictedTag uint64
}

// LineState is one entry of a cache dump.
type LineState struct {
	Index int
	Valid bool
	Tag   uint64
	Set   int
}

// Statistics holds access counters.
type Statistics struct {
	Accesses  uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Aliased   uint64
}

// HitRate returns hits / accesses, or 0 when nothing was accessed.
func (s Statistics) HitRate() float64 {
	if s.Accesses == 0 {
		return 0
	}

	return float64(s.Hits) / float64(s.Accesses)
}

// Observer is notified after every access, in access order.
type Observer interface {
	Observe(seq int, outcome Outcome)
}

// Option configures a Cache.
type Option func(*Cache)

// WithObserver adds an observer. Observers are called in the order they were
// added.
func WithObserver(o Observer) Option {
	return func(c *Cache) {
		c.observers = append(c.observers, o)
	}
}

// WithLogger sets the logger used for eviction and aliasing events.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger
	}
}

// Cache is the access processor. It is not safe for concurrent use.
type Cache struct {
	geometry geometry.Geometry
	decoder  Decoder
	store    *SetStore

	stats     Statistics
	seq       int
	observers []Observer
	logger    *slog.Logger
}

// New creates an empty cache with the given geometry. The geometry must come
// from geometry.Config.Derive.
func New(g geometry.Geometry, opts ...Option) *Cache {
	c := &Cache{
		geometry: g,
		decoder:  NewDecoder(g),
		store:    NewSetStore(g.NumSets, g.Ways),
		logger:   slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Geometry returns the cache geometry.
func (c *Cache) Geometry() geometry.Geometry {
	return c.geometry
}

// Decoder returns the address decoder.
func (c *Cache) Decoder() Decoder {
	return c.decoder
}

// Store returns the underlying set store.
func (c *Cache) Store() *SetStore {
	return c.store
}

// Stats returns cache statistics.
func (c *Cache) Stats() Statistics {
	return c.stats
}

// Access applies one address to the cache.
func (c *Cache) Access(address uint64) Outcome {
	f := c.decoder.Decode(address)

	outcome := Outcome{
		Address: address,
		Tag:     f.Tag,
		Set:     f.Set,
		Offset:  f.Offset,
		Aliased: f.Aliased,
	}

	c.stats.Accesses++
	if f.Aliased {
		c.stats.Aliased++
		c.logger.Warn("tag truncated to configured width",
			"address", address, "tag", f.Tag, "tag_bits", c.geometry.TagBits)
	}

	if line, ok := c.store.Lookup(f.Set, f.Tag); ok {
		c.stats.Hits++
		outcome.Hit = true
		outcome.Line = line
	} else {
		c.stats.Misses++

		adm := c.store.Admit(f.Set, f.Tag)
		outcome.Line = adm.Line
		outcome.Evicted = adm.Evicted
		outcome.EvictedTag = adm.EvictedTag

		if adm.Evicted {
			c.stats.Evictions++
			c.logger.Debug("evicted line",
				"set", f.Set, "line", adm.Line,
				"old_tag", adm.EvictedTag, "new_tag", f.Tag)
		}
	}

	c.seq++
	for _, o := range c.observers {
		o.Observe(c.seq, outcome)
	}

	return outcome
}

// Run applies the addresses in order and returns one outcome per address.
func (c *Cache) Run(addresses []uint64) []Outcome {
	outcomes := make([]Outcome, 0, len(addresses))
	for _, addr := range addresses {
		outcomes = append(outcomes, c.Access(addr))
	}

	return outcomes
}

// Snapshot returns the state of every physical line in line-array order.
func (c *Cache) Snapshot() []LineState {
	lines := c.store.Lines()

	states := make([]LineState, len(lines))
	for i, l := range lines {
		states[i] = LineState{
			Index: i,
			Valid: l.Valid,
			Tag:   l.Tag,
			Set:   c.geometry.SetOf(i),
		}
	}

	return states
}

// Reset invalidates all lines and clears statistics.
func (c *Cache) Reset() {
	c.store.Reset()
	c.stats = Statistics{}
	c.seq = 0
}
