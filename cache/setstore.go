package cache

import "fmt"

// Line is one physical block slot. Lines are allocated once for the
// lifetime of the store; only Valid and Tag change.
type Line struct {
	Valid bool
	Tag   uint64
}

// Admission describes how a missing tag was placed.
type Admission struct {
	// Line is the index of the physical line now holding the tag.
	Line int
	// Evicted is true if the line was taken from the oldest resident
	// instead of the free pool.
	Evicted bool
	// EvictedTag is the tag that was replaced. Only meaningful when
	// Evicted is true.
	EvictedTag uint64
}

// SetStore owns the line array and, per set, a free pool and a resident
// queue of line indices. The resident queue is kept in insertion order with
// the oldest line at the front.
type SetStore struct {
	ways     int
	lines    []Line
	free     []lineQueue
	resident []lineQueue
}

// NewSetStore creates a store with numSets sets of ways lines each. All lines
// start in their set's free pool.
func NewSetStore(numSets, ways int) *SetStore {
	if numSets <= 0 || ways <= 0 {
		panic(fmt.Sprintf("cache: invalid set store shape %dx%d", numSets, ways))
	}

	s := &SetStore{
		ways:     ways,
		lines:    make([]Line, numSets*ways),
		free:     make([]lineQueue, numSets),
		resident: make([]lineQueue, numSets),
	}

	for set := 0; set < numSets; set++ {
		s.free[set] = newLineQueue(ways)
		s.resident[set] = newLineQueue(ways)
	}

	s.Reset()

	return s
}

// Reset invalidates every line and returns it to its set's free pool in
// line-array order.
func (s *SetStore) Reset() {
	for i := range s.lines {
		s.lines[i] = Line{}
	}

	for set := range s.free {
		s.free[set].clear()
		s.resident[set].clear()

		for i := set * s.ways; i < (set+1)*s.ways; i++ {
			s.free[set].PushBack(i)
		}
	}
}

// NumSets returns the number of sets.
func (s *SetStore) NumSets() int {
	return len(s.free)
}

// Ways returns the number of lines per set.
func (s *SetStore) Ways() int {
	return s.ways
}

// Lookup scans the resident queue of a set from oldest to newest and returns
// the first line holding tag.
func (s *SetStore) Lookup(set int, tag uint64) (int, bool) {
	s.mustHaveSet(set)

	q := &s.resident[set]
	for i := 0; i < q.Len(); i++ {
		line := q.At(i)
		if s.lines[line].Tag == tag {
			return line, true
		}
	}

	return 0, false
}

// Admit places tag into set. A free line is used if there is one, otherwise
// the oldest resident line is overwritten in place and moved to the back of
// the queue. Admit must only be called after a failed Lookup.
func (s *SetStore) Admit(set int, tag uint64) Admission {
	s.mustHaveSet(set)

	free := &s.free[set]
	resident := &s.resident[set]

	if free.Len() > 0 {
		line := free.PopFront()
		s.lines[line] = Line{Valid: true, Tag: tag}
		resident.PushBack(line)

		return Admission{Line: line}
	}

	// With an empty free pool the resident queue holds all ways lines.
	line := resident.PopFront()
	evicted := s.lines[line].Tag
	s.lines[line].Tag = tag
	resident.PushBack(line)

	return Admission{Line: line, Evicted: true, EvictedTag: evicted}
}

// FreeLen returns the size of a set's free pool.
func (s *SetStore) FreeLen(set int) int {
	s.mustHaveSet(set)
	return s.free[set].Len()
}

// ResidentLen returns the size of a set's resident queue.
func (s *SetStore) ResidentLen(set int) int {
	s.mustHaveSet(set)
	return s.resident[set].Len()
}

// FreeLines returns the line indices in a set's free pool, front first.
func (s *SetStore) FreeLines(set int) []int {
	s.mustHaveSet(set)
	return indices(&s.free[set])
}

// ResidentLines returns the line indices in a set's resident queue, oldest
// first.
func (s *SetStore) ResidentLines(set int) []int {
	s.mustHaveSet(set)
	return indices(&s.resident[set])
}

// ResidentTags returns the tags resident in a set, oldest first.
func (s *SetStore) ResidentTags(set int) []uint64 {
	lines := s.ResidentLines(set)

	tags := make([]uint64, len(lines))
	for i, line := range lines {
		tags[i] = s.lines[line].Tag
	}

	return tags
}

// Lines returns a copy of the line array.
func (s *SetStore) Lines() []Line {
	lines := make([]Line, len(s.lines))
	copy(lines, s.lines)

	return lines
}

func (s *SetStore) mustHaveSet(set int) {
	if set < 0 || set >= len(s.free) {
		panic(fmt.Sprintf("cache: set index %d out of range [0, %d)",
			set, len(s.free)))
	}
}

func indices(q *lineQueue) []int {
	out := make([]int, q.Len())
	for i := range out {
		out[i] = q.At(i)
	}

	return out
}
