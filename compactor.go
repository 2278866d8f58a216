package reqsketch

import (
	"math"
	"math/bits"
)

const (
	// minK is the floor on k; section widths are floored at minK/2.
	minK = 4
	// initNumSections is the starting section count for every new
	// compactor, before any doubling.
	initNumSections = 3
)

// compactor stores the sample buffer for a single weight class 2^h and
// the capacity schedule (section count / section width / compaction
// counter) that governs when it must halve.
type compactor struct {
	lgWeight int
	hra      bool

	sectionSizeFlt float64
	numSections    int
	numCompactions int64
	state          uint64

	buf  *floatBuffer
	bits BitSource
}

func newCompactor(lgWeight int, hra bool, k int, bitSrc BitSource) *compactor {
	return &compactor{
		lgWeight:       lgWeight,
		hra:            hra,
		sectionSizeFlt: float64(k),
		numSections:    initNumSections,
		buf:            newFloatBuffer(2 * initNumSections * sectionSizeOf(float64(k))),
		bits:           bitSrc,
	}
}

func sectionSizeOf(sectionSizeFlt float64) int {
	s := int(math.Round(sectionSizeFlt))
	if s < minK/2 {
		return minK / 2
	}
	return s
}

// sectionSize is the current rounded, floored section width.
func (c *compactor) sectionSize() int { return sectionSizeOf(c.sectionSizeFlt) }

// nomCapacity is the nominal capacity 2*num_sections*section_size at
// which this compactor overflows.
func (c *compactor) nomCapacity() int {
	return 2 * c.numSections * c.sectionSize()
}

func (c *compactor) overflowed() bool {
	return c.buf.Len() >= c.nomCapacity()
}

// advanceSchedule increments num_compactions and, once it has reached
// 2^(num_sections-1), doubles num_sections and shrinks section_size_flt
// by sqrt(2), resetting the section-participation bitfield.
func (c *compactor) advanceSchedule() {
	c.numCompactions++
	if c.numCompactions >= int64(1)<<uint(c.numSections-1) {
		c.numSections *= 2
		c.sectionSizeFlt /= math.Sqrt2
		c.state = 0
	}
}

// compact halves this compactor's buffer and returns the promoted
// (surviving) half, sorted, ready to be merged into the next level up.
//
// Precondition: c.buf is sorted ascending and overflowed() is true.
//
// Of the compactor's current num_sections sections (width section_size
// each, measured in from the hra-far end of the buffer), secsToCompact
// adjacent sections form this round's active span; every other element
// of that span, chosen by a uniformly random starting parity, is
// promoted, the rest discarded. Everything outside the active span is
// left untouched at this level. secsToCompact follows a binary counter
// derived from the trailing-ones count of the section-participation
// state (state starts at 0, so the first compaction of every
// super-round touches just one section), so that across 2^num_sections
// calls every section takes part with geometrically decreasing
// frequency — the mechanism that keeps per-insertion amortized
// compaction cost O(1).
func (c *compactor) compact() *floatBuffer {
	secsToCompact := bits.TrailingZeros64(^c.state) + 1
	if secsToCompact > c.numSections {
		secsToCompact = c.numSections
	}
	c.state++
	c.advanceSchedule()

	sectionSize := c.sectionSize()
	span := 2 * sectionSize * secsToCompact
	n := c.buf.Len()
	if span > n {
		span = n - n%2
	}

	items := c.buf.Slice()
	var activeSpan []float32
	var retain []float32
	if c.hra {
		// High rank accuracy: the low end is residue, the high end is
		// the active span submitted to halving.
		boundary := n - span
		retain = items[:boundary]
		activeSpan = items[boundary:]
	} else {
		retain = items[span:]
		activeSpan = items[:span]
	}

	startParity := 0
	if c.bits.NextBit() {
		startParity = 1
	}
	promoted := newFloatBuffer(len(activeSpan)/2 + 1)
	for i := startParity; i < len(activeSpan); i += 2 {
		promoted.Append(activeSpan[i])
	}
	promoted.sorted = true

	kept := make([]float32, len(retain))
	copy(kept, retain)
	c.buf.SetItems(kept)

	return promoted
}

// merge absorbs other's buffer and capacity schedule into c. Called
// level-by-level by the sketch's merge operation.
func (c *compactor) merge(other *compactor) {
	c.buf.Sort()
	other.buf.Sort()
	c.buf.MergeSortIn(other.buf)
	c.state |= other.state
	if other.numCompactions > c.numCompactions {
		c.numCompactions = other.numCompactions
	}
	if other.numSections > c.numSections {
		c.numSections = other.numSections
		c.sectionSizeFlt = other.sectionSizeFlt
	}
}

func (c *compactor) clone() *compactor {
	return &compactor{
		lgWeight:       c.lgWeight,
		hra:            c.hra,
		sectionSizeFlt: c.sectionSizeFlt,
		numSections:    c.numSections,
		numCompactions: c.numCompactions,
		state:          c.state,
		buf:            c.buf.Clone(),
		bits:           c.bits,
	}
}
