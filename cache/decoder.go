package cache

import "github.com/sarchlab/cachesim/geometry"

// Fields are the parts of an address as seen by the cache.
type Fields struct {
	Tag    uint64
	Set    int
	Offset uint64

	// Aliased is set when the tag was wider than the configured tag width
	// and its high bits were dropped. Two addresses that differ only in
	// those bits share a tag.
	Aliased bool
}

// Decoder splits addresses into tag, set index and offset.
type Decoder struct {
	offsetBits uint
	setBits    uint
	tagBits    uint
}

// NewDecoder creates a decoder for the given geometry.
func NewDecoder(g geometry.Geometry) Decoder {
	return Decoder{
		offsetBits: uint(g.OffsetBits),
		setBits:    uint(g.SetBits),
		tagBits:    uint(g.TagBits),
	}
}

// Decode splits an address. It has no side effects.
func (d Decoder) Decode(address uint64) Fields {
	offset := address & mask(d.offsetBits)
	set := (address >> d.offsetBits) & mask(d.setBits)

	var tag uint64
	if shift := d.offsetBits + d.setBits; shift < 64 {
		tag = address >> shift
	}

	aliased := false
	if d.tagBits > 0 && d.tagBits < 64 {
		aliased = tag>>d.tagBits != 0
		tag &= mask(d.tagBits)
	}

	return Fields{
		Tag:     tag,
		Set:     int(set),
		Offset:  offset,
		Aliased: aliased,
	}
}

// Encode rebuilds the address of decoded fields. For fields that were not
// aliased, Encode(Decode(a)) == a.
func (d Decoder) Encode(f Fields) uint64 {
	var tag uint64
	if shift := d.offsetBits + d.setBits; shift < 64 {
		tag = f.Tag << shift
	}

	return tag |
		(uint64(f.Set)&mask(d.setBits))<<d.offsetBits |
		f.Offset&mask(d.offsetBits)
}

func mask(n uint) uint64 {
	if n >= 64 {
		return ^uint64(0)
	}

	return (uint64(1) << n) - 1
}
