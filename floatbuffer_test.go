package reqsketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFloatBufferAppendAndSort(t *testing.T) {
	b := newFloatBuffer(4)
	b.Append(3)
	b.Append(1)
	b.Append(2)
	assert.False(t, b.IsSorted())
	assert.Equal(t, 3, b.Len())

	b.Sort()
	assert.True(t, b.IsSorted())
	assert.Equal(t, []float32{1, 2, 3}, b.Slice())
}

func TestFloatBufferSortIsIdempotent(t *testing.T) {
	b := newFloatBuffer(0)
	b.Append(5)
	b.Append(4)
	b.Sort()
	first := b.Slice()
	b.Sort()
	assert.Equal(t, first, b.Slice())
}

func TestFloatBufferMergeSortIn(t *testing.T) {
	a := newFloatBuffer(0)
	for _, v := range []float32{1, 3, 5} {
		a.Append(v)
	}
	a.Sort()

	other := newFloatBuffer(0)
	for _, v := range []float32{2, 4, 6} {
		other.Append(v)
	}
	other.Sort()

	a.MergeSortIn(other)
	require.True(t, a.IsSorted())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, a.Slice())
	// other is left untouched
	assert.Equal(t, []float32{2, 4, 6}, other.Slice())
}

func TestFloatBufferMergeSortInEmptyOther(t *testing.T) {
	a := newFloatBuffer(0)
	a.Append(1)
	a.Sort()
	a.MergeSortIn(nil)
	assert.Equal(t, []float32{1}, a.Slice())
	a.MergeSortIn(newFloatBuffer(0))
	assert.Equal(t, []float32{1}, a.Slice())
}

func TestFloatBufferCountWithCriterion(t *testing.T) {
	b := newFloatBuffer(0)
	for _, v := range []float32{1, 2, 2, 3, 4} {
		b.Append(v)
	}
	b.Sort()

	assert.Equal(t, 1, b.CountWithCriterion(2, LT))
	assert.Equal(t, 3, b.CountWithCriterion(2, LE))
	assert.Equal(t, 2, b.CountWithCriterion(2, GT))
	assert.Equal(t, 4, b.CountWithCriterion(2, GE))
	assert.Equal(t, 0, b.CountWithCriterion(0, LT))
	assert.Equal(t, 5, b.CountWithCriterion(10, LE))
}

func TestFloatBufferClone(t *testing.T) {
	b := newFloatBuffer(0)
	b.Append(1)
	b.Append(2)
	b.Sort()

	c := b.Clone()
	c.Append(3)

	assert.Equal(t, []float32{1, 2}, b.Slice())
	assert.Equal(t, 3, c.Len())
}
