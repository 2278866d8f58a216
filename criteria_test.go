package reqsketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriterionString(t *testing.T) {
	assert.Equal(t, "LT", LT.String())
	assert.Equal(t, "LE", LE.String())
	assert.Equal(t, "GT", GT.String())
	assert.Equal(t, "GE", GE.String())
	assert.Equal(t, "UNKNOWN", Criterion(99).String())
}

func TestCriterionLowerComplement(t *testing.T) {
	assert.Equal(t, LT, LT.lowerComplement())
	assert.Equal(t, LE, LE.lowerComplement())
	assert.Equal(t, LE, GT.lowerComplement())
	assert.Equal(t, LT, GE.lowerComplement())
}

func TestCriterionIsUpper(t *testing.T) {
	assert.False(t, LT.isUpper())
	assert.False(t, LE.isUpper())
	assert.True(t, GT.isUpper())
	assert.True(t, GE.isUpper())
}
