package reqsketch

import (
	"math"

	"github.com/pkg/errors"
)

// GetQuantile returns the value at normalized rank normRank under the
// active criterion, built from a lazily-constructed auxiliary view.
// If the aux search yields no row (e.g. normRank == 1 under a GT/GE
// style search) and the sketch is in compatible mode, the extreme
// value (min for LT/LE, max for GT/GE) is returned instead of NaN.
func (s *Sketch) GetQuantile(normRank float64) (float32, error) {
	if s.IsEmpty() {
		return 0, ErrEmptySketch
	}
	if normRank < 0 || normRank > 1.0 {
		return 0, errors.Wrapf(ErrRankOutOfRange, "got %v", normRank)
	}
	q, ok := s.ensureAux().quantile(normRank, s.criterion)
	if !ok {
		if s.compatible {
			if s.criterion == LT || s.criterion == LE {
				return s.minValue, nil
			}
			return s.maxValue, nil
		}
		return float32(math.NaN()), nil
	}
	return q, nil
}

// GetQuantiles answers every rank in normRanks against a single
// auxiliary view build.
func (s *Sketch) GetQuantiles(normRanks []float64) ([]float32, error) {
	out := make([]float32, len(normRanks))
	for i, r := range normRanks {
		q, err := s.GetQuantile(r)
		if err != nil {
			return nil, err
		}
		out[i] = q
	}
	return out, nil
}

func validateSplitPoints(splits []float32) error {
	for i, v := range splits {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return errors.Wrapf(ErrInvalidSplitPoints, "non-finite value at index %d", i)
		}
		if i < len(splits)-1 && v >= splits[i+1] {
			return errors.Wrapf(ErrInvalidSplitPoints, "not strictly increasing at index %d", i)
		}
	}
	return nil
}

// getBucketCounts returns, for sorted strictly-increasing splits, the
// raw counts buckets = [count(s0), ..., count(s_{m-1}), totalN].
func (s *Sketch) getBucketCounts(splits []float32) ([]uint64, error) {
	if err := validateSplitPoints(splits); err != nil {
		return nil, err
	}
	buckets := make([]uint64, len(splits)+1)
	for i, sp := range splits {
		buckets[i] = s.countWithCriterion(sp, s.criterion)
	}
	buckets[len(splits)] = s.totalN
	return buckets, nil
}

// GetCDF returns the cumulative distribution function evaluated at
// each split point, plus a trailing 1.0 bucket for the whole stream.
// Split points must be finite, unique and strictly increasing. An
// empty sketch returns an empty slice.
func (s *Sketch) GetCDF(splits []float32) ([]float64, error) {
	if s.IsEmpty() {
		return []float64{}, nil
	}
	buckets, err := s.getBucketCounts(splits)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(buckets))
	for i, b := range buckets {
		out[i] = float64(b) / float64(s.totalN)
	}
	return out, nil
}

// GetPMF returns the probability mass function across the buckets
// formed by splits: the first bucket is everything up to splits[0],
// each subsequent bucket is the increment between consecutive splits,
// and the last bucket covers everything above the final split point.
func (s *Sketch) GetPMF(splits []float32) ([]float64, error) {
	if s.IsEmpty() {
		return []float64{}, nil
	}
	buckets, err := s.getBucketCounts(splits)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(buckets))
	out[0] = float64(buckets[0]) / float64(s.totalN)
	for i := 1; i < len(buckets); i++ {
		out[i] = float64(buckets[i]-buckets[i-1]) / float64(s.totalN)
	}
	return out, nil
}

// sortedValues returns the auxiliary view's rows: every retained sample
// in ascending order alongside its cumulative weight and normalized rank.
func (s *Sketch) sortedValues() []auxEntry {
	return s.ensureAux().entries
}
