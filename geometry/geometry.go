package geometry

import "fmt"

// Geometry is the read-only shape of a cache, derived from a validated
// Config.
type Geometry struct {
	BlockSize   int
	Ways        int
	NumSets     int
	TotalBlocks int

	OffsetBits int
	SetBits    int
	TagBits    int // 0 means unbounded
}

// String renders the geometry on one line.
func (g Geometry) String() string {
	tagBits := "unbounded"
	if g.TagBits > 0 {
		tagBits = fmt.Sprintf("%d", g.TagBits)
	}

	return fmt.Sprintf(
		"%d sets x %d ways x %dB blocks (%d lines), offset bits %d, set bits %d, tag bits %s",
		g.NumSets, g.Ways, g.BlockSize, g.TotalBlocks,
		g.OffsetBits, g.SetBits, tagBits,
	)
}

// SetOf returns the set that owns the given physical line.
func (g Geometry) SetOf(line int) int {
	return line / g.Ways
}
