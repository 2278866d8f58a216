package reqsketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axiomhq/reqsketch/internal/refstream"
)

// TestSketchAgreesWithIndependentOracle cross-checks GetQuantile against
// a Greenwald-Khanna style summary built independently of the
// compactor-stack algorithm. The two algorithms have unrelated error
// models, so the tolerance here is generous: it catches gross
// regressions (a broken compaction or aux-view bug), not tight
// agreement with the advertised relative-error bound.
func TestSketchAgreesWithIndependentOracle(t *testing.T) {
	s := NewSketch(24, true)
	oracle := refstream.New()

	const n = 20000
	for i := 1; i <= n; i++ {
		v := float32(i)
		s.Update(v)
		oracle.Insert(float64(v))
	}

	for _, r := range []float64{0.1, 0.25, 0.5, 0.75, 0.9, 0.99} {
		got, err := s.GetQuantile(r)
		require.NoError(t, err)
		want := oracle.Query(r)
		assert.InDelta(t, want, float64(got), 0.05*n, "rank %v", r)
	}
}

// TestSketchRankBoundsWidenFartherFromTheAccurateTail checks that the
// advertised rank confidence interval is narrower near the accurate
// tail (rank 1 under hra=true) than near the opposite tail, per the
// asymmetric error model hra is supposed to produce.
func TestSketchRankBoundsWidenFartherFromTheAccurateTail(t *testing.T) {
	s := NewSketch(12, true)
	for i := 1; i <= 50000; i++ {
		s.Update(float32(i))
	}

	nearTail := s.GetRank(49000)
	farFromTail := s.GetRank(1000)

	widthNearTail := s.GetRankUpperBound(nearTail, 2) - s.GetRankLowerBound(nearTail, 2)
	widthFarFromTail := s.GetRankUpperBound(farFromTail, 2) - s.GetRankLowerBound(farFromTail, 2)

	assert.LessOrEqual(t, widthNearTail, widthFarFromTail)
}

func TestSketchRetainedInvariantAcrossMergeChain(t *testing.T) {
	shards := make([]*Sketch, 10)
	for i := range shards {
		shards[i] = NewSketch(8, true)
		for j := 1; j <= 1000; j++ {
			shards[i].Update(float32(i*1000 + j))
		}
	}

	merged := shards[0]
	for _, sh := range shards[1:] {
		merged.Merge(sh)
	}

	assert.Less(t, merged.GetRetainedItems(), merged.GetMaxNominalSize())
	assert.Equal(t, uint64(10000), merged.GetN())
}
