package reqsketch

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	s := NewBuilder().Build()
	assert.Equal(t, 12, s.GetK())
	assert.True(t, s.GetHighRankAccuracy())
	assert.True(t, s.IsCompatible())
	assert.Equal(t, LT, s.GetCriterion())
}

func TestBuilderOverrides(t *testing.T) {
	s := NewBuilder(
		WithK(20),
		WithHighRankAccuracy(false),
		WithCompatible(false),
		WithCriterion(GE),
	).Build()

	assert.Equal(t, 20, s.GetK())
	assert.False(t, s.GetHighRankAccuracy())
	assert.False(t, s.IsCompatible())
	assert.Equal(t, GE, s.GetCriterion())
}

func TestBuilderKFlooredAndRoundedEven(t *testing.T) {
	s := NewBuilder(WithK(1)).Build()
	assert.Equal(t, minK, s.GetK())

	s = NewBuilder(WithK(13)).Build()
	assert.Equal(t, 12, s.GetK())
}

func TestBuilderWithDebugIsInvoked(t *testing.T) {
	var buf bytes.Buffer
	s := NewBuilder(WithDebug(PrintDebug{W: &buf})).Build()
	require.Positive(t, buf.Len())

	s.Update(1)
	s.Update(2)
	assert.Contains(t, buf.String(), "reqsketch: start")
}
