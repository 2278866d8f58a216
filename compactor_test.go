package reqsketch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompactorCapacitySchedule(t *testing.T) {
	c := newCompactor(0, true, 8, &alternatingBitSource{})
	assert.Equal(t, 8, c.sectionSize())
	assert.Equal(t, 48, c.nomCapacity())
}

func TestCompactorSectionSizeFloor(t *testing.T) {
	c := newCompactor(0, true, 4, &alternatingBitSource{})
	c.sectionSizeFlt = 0.1
	assert.Equal(t, minK/2, c.sectionSize())
}

func TestCompactorCompactHRAOneSectionSpan(t *testing.T) {
	c := newCompactor(0, true, 8, newScriptedBitSource(false))
	for i := 1; i <= 48; i++ {
		c.buf.Append(float32(i))
	}
	c.buf.Sort()
	require.Equal(t, c.nomCapacity(), c.buf.Len())

	// state starts at 0 (trailing-ones count 0), so the first compaction
	// of a super-round only touches one section (width 8): the top 16
	// of the 48 buffered items (33..48) under hra, promoting every other
	// one starting at parity 0.
	promoted := c.compact()

	assert.Equal(t, 32, c.buf.Len())
	require.Equal(t, 8, promoted.Len())
	for i, v := range promoted.Slice() {
		assert.Equal(t, float32(2*i+33), v)
	}
	assert.Equal(t, int64(1), c.numCompactions)
}

func TestCompactorCompactLRAResidueAtHighEnd(t *testing.T) {
	c := newCompactor(0, false, 8, newScriptedBitSource(true))
	for i := 1; i <= 48; i++ {
		c.buf.Append(float32(i))
	}
	c.buf.Sort()

	// Same one-section active span as above, but mirrored to the low
	// end (1..16) since hra is false; startParity=1 here.
	promoted := c.compact()

	assert.Equal(t, 32, c.buf.Len())
	require.Equal(t, 8, promoted.Len())
	for i, v := range promoted.Slice() {
		assert.Equal(t, float32(2*i+2), v)
	}
}

func TestCompactorCompactFullSpanWhenStateAllOnes(t *testing.T) {
	// state = numSections-1 ones set (0b011) has trailing-ones count 2,
	// one below numSections(3), so secsToCompact caps at numSections and
	// the whole buffer (48 items = 3 sections of 8) becomes the active
	// span.
	c := newCompactor(0, true, 8, newScriptedBitSource(false))
	c.state = 0b011
	for i := 1; i <= 48; i++ {
		c.buf.Append(float32(i))
	}
	c.buf.Sort()

	promoted := c.compact()

	assert.Equal(t, 0, c.buf.Len())
	require.Equal(t, 24, promoted.Len())
	for i, v := range promoted.Slice() {
		assert.Equal(t, float32(2*i+1), v)
	}
}

func TestCompactorAdvanceScheduleDoublesAfterFourCompactions(t *testing.T) {
	c := newCompactor(0, true, 4, &alternatingBitSource{})
	for i := 0; i < 4; i++ {
		c.compact()
	}
	assert.Equal(t, int64(4), c.numCompactions)
	assert.Equal(t, 6, c.numSections)
	assert.Equal(t, uint64(0), c.state)
	assert.InDelta(t, 4.0/math.Sqrt2, c.sectionSizeFlt, 1e-9)
}

func TestCompactorMergeTakesFinerSchedule(t *testing.T) {
	a := newCompactor(2, true, 8, &alternatingBitSource{})
	b := newCompactor(2, true, 8, &alternatingBitSource{})
	for i := 0; i < 4; i++ {
		b.compact() // advances b past the doubling threshold
	}
	a.buf.Append(1)
	a.buf.Sort()
	b.buf.Append(2)
	b.buf.Sort()

	a.merge(b)

	assert.Equal(t, []float32{1, 2}, a.buf.Slice())
	assert.Equal(t, b.numSections, a.numSections)
	assert.Equal(t, b.sectionSizeFlt, a.sectionSizeFlt)
	assert.Equal(t, b.numCompactions, a.numCompactions)
}

func TestCompactorClone(t *testing.T) {
	c := newCompactor(1, true, 8, &alternatingBitSource{})
	c.buf.Append(1)
	c.buf.Sort()

	clone := c.clone()
	clone.buf.Append(2)

	assert.Equal(t, 1, c.buf.Len())
	assert.Equal(t, 2, clone.buf.Len())
	assert.Equal(t, c.lgWeight, clone.lgWeight)
}
