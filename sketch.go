package reqsketch

import (
	"math"

	"github.com/pkg/errors"
)

const (
	// familyID identifies this sketch family on the wire.
	familyID = 17

	relRSEFactorBase = 0.0512
	fixRSEFactor     = 0.06
)

var relRSEFactor = math.Sqrt(relRSEFactorBase / float64(initNumSections))

// Sketch is a relative error quantiles sketch over float32 values. It
// is not safe for concurrent use; callers that want parallel ingestion
// must shard into independent sketches and Merge the results.
type Sketch struct {
	k   int
	hra bool

	compatible bool
	criterion  Criterion

	totalN   uint64
	minValue float32
	maxValue float32
	hasSeen  bool

	retained       int
	maxNominalSize int

	compactors []*compactor
	aux        *auxiliaryView

	debug    Debug
	rootSeed uint64
	bitGen   func(level int) BitSource
}

// NewSketch constructs an empty sketch. k is rounded down to the
// nearest even number and floored at minK; the default k (12) targets
// about 1% relative error at 95% confidence. hra selects which tail is
// prioritized for accuracy: true favors high ranks, false low ranks.
func NewSketch(k int, hra bool) *Sketch {
	return newSketchWithOptions(k, hra, true, LT, noopDebug{}, 0, nil)
}

func newSketchWithOptions(k int, hra, compatible bool, criterion Criterion, debug Debug, seed uint64, bitGen func(level int) BitSource) *Sketch {
	if k < minK {
		k = minK
	}
	k &^= 1 // round down to even
	if debug == nil {
		debug = noopDebug{}
	}
	s := &Sketch{
		k:          k,
		hra:        hra,
		compatible: compatible,
		criterion:  criterion,
		minValue:   float32(math.NaN()),
		maxValue:   float32(math.NaN()),
		debug:      debug,
		rootSeed:   seed,
		bitGen:     bitGen,
	}
	s.grow()
	return s
}

func (s *Sketch) newBitSource(level int) BitSource {
	if s.bitGen != nil {
		return s.bitGen(level)
	}
	return newRandBitSource(s.rootSeed + uint64(level)*0xD1B54A32D192ED03)
}

// grow appends a new top-level compactor and updates max nominal size.
func (s *Sketch) grow() {
	lgWeight := len(s.compactors)
	if lgWeight == 0 {
		s.debug.Start(s.k, s.hra)
	}
	s.compactors = append(s.compactors, newCompactor(lgWeight, s.hra, s.k, s.newBitSource(lgWeight)))
	s.updateMaxNominalSize()
	s.debug.NewCompactor(lgWeight)
}

func (s *Sketch) updateMaxNominalSize() {
	total := 0
	for _, c := range s.compactors {
		total += c.nomCapacity()
	}
	s.maxNominalSize = total
}

func (s *Sketch) updateRetainedItems() {
	n := 0
	for _, c := range s.compactors {
		n += c.buf.Len()
	}
	s.retained = n
}

// NumLevels returns the number of compactor levels currently in the
// stack.
func (s *Sketch) NumLevels() int { return len(s.compactors) }

// Update ingests one value. NaN is silently dropped.
func (s *Sketch) Update(item float32) {
	if math.IsNaN(float64(item)) {
		return
	}
	if !s.hasSeen {
		s.minValue = item
		s.maxValue = item
		s.hasSeen = true
	} else {
		if item < s.minValue {
			s.minValue = item
		}
		if item > s.maxValue {
			s.maxValue = item
		}
	}
	s.compactors[0].buf.Append(item)
	s.retained++
	s.totalN++
	if s.retained >= s.maxNominalSize {
		s.compactors[0].buf.Sort()
		s.compress()
	}
	s.aux = nil
}

// compress walks the stack bottom-up, halving any overflowing
// compactor and promoting survivors upward, stopping as soon as the
// retained count drops below the max nominal size.
func (s *Sketch) compress() {
	s.debug.CompressStart(s.retained, s.maxNominalSize)
	for h := 0; h < len(s.compactors); h++ {
		c := s.compactors[h]
		if c.buf.Len() < c.nomCapacity() {
			continue
		}
		if h+1 >= len(s.compactors) {
			s.debug.MustAddCompactor(h)
			s.grow()
		}
		promoted := c.compact()
		s.compactors[h+1].buf.MergeSortIn(promoted)
		s.updateRetainedItems()
		if s.retained < s.maxNominalSize {
			break
		}
	}
	s.updateMaxNominalSize()
	s.aux = nil
	s.debug.CompressDone(s.retained, s.maxNominalSize)
}

// Merge folds other's stream into s and returns s. A nil or empty
// other is a no-op.
func (s *Sketch) Merge(other *Sketch) *Sketch {
	if other == nil || other.IsEmpty() {
		return s
	}
	s.totalN += other.totalN
	if !s.hasSeen || other.minValue < s.minValue {
		s.minValue = other.minValue
	}
	if !s.hasSeen || other.maxValue > s.maxValue {
		s.maxValue = other.maxValue
	}
	s.hasSeen = true

	for len(s.compactors) < len(other.compactors) {
		s.grow()
	}
	for i := range other.compactors {
		s.compactors[i].merge(other.compactors[i])
	}
	s.updateMaxNominalSize()
	s.updateRetainedItems()
	for s.retained >= s.maxNominalSize {
		s.compress()
		s.updateMaxNominalSize()
		s.updateRetainedItems()
	}
	assertf(s.retained < s.maxNominalSize, errors.Wrap(errRetainedInvariant, "merge"))
	s.aux = nil
	return s
}

// Reset clears the sketch back to a single empty level.
func (s *Sketch) Reset() *Sketch {
	s.totalN = 0
	s.retained = 0
	s.maxNominalSize = 0
	s.hasSeen = false
	s.minValue = float32(math.NaN())
	s.maxValue = float32(math.NaN())
	s.aux = nil
	s.compactors = nil
	s.grow()
	return s
}

// Clone returns an independent deep copy of s.
func (s *Sketch) Clone() *Sketch {
	out := &Sketch{
		k:              s.k,
		hra:            s.hra,
		compatible:     s.compatible,
		criterion:      s.criterion,
		totalN:         s.totalN,
		minValue:       s.minValue,
		maxValue:       s.maxValue,
		hasSeen:        s.hasSeen,
		retained:       s.retained,
		maxNominalSize: s.maxNominalSize,
		debug:          s.debug,
		rootSeed:       s.rootSeed,
		bitGen:         s.bitGen,
	}
	out.compactors = make([]*compactor, len(s.compactors))
	for i, c := range s.compactors {
		out.compactors[i] = c.clone()
	}
	return out
}

// IsEmpty reports whether the sketch has seen any update.
func (s *Sketch) IsEmpty() bool { return s.totalN == 0 }

// IsEstimationMode reports whether rank/quantile answers carry
// estimation error, i.e. the stack has grown past a single level.
func (s *Sketch) IsEstimationMode() bool { return len(s.compactors) > 1 }

// GetN returns the total number of (non-NaN) values ever seen.
func (s *Sketch) GetN() uint64 { return s.totalN }

// GetRetainedItems returns the number of samples currently retained
// across all levels.
func (s *Sketch) GetRetainedItems() int { return s.retained }

// GetMinValue returns the smallest value ever seen by Update.
func (s *Sketch) GetMinValue() float32 { return s.minValue }

// GetMaxValue returns the largest value ever seen by Update.
func (s *Sketch) GetMaxValue() float32 { return s.maxValue }

// GetHighRankAccuracy reports the hra orientation fixed at construction.
func (s *Sketch) GetHighRankAccuracy() bool { return s.hra }

// GetK returns the configured k.
func (s *Sketch) GetK() int { return s.k }

// GetMaxNominalSize returns the sum of nominal capacities across levels.
func (s *Sketch) GetMaxNominalSize() int { return s.maxNominalSize }

// SetCriterion sets the comparator used by rank/quantile queries.
func (s *Sketch) SetCriterion(c Criterion) *Sketch {
	s.criterion = c
	return s
}

// GetCriterion returns the active comparator.
func (s *Sketch) GetCriterion() Criterion { return s.criterion }

// SetCompatible sets whether out-of-table quantile lookups fall back to
// min/max rather than returning NaN.
func (s *Sketch) SetCompatible(compatible bool) *Sketch {
	s.compatible = compatible
	return s
}

// IsCompatible reports the compatible-mode flag.
func (s *Sketch) IsCompatible() bool { return s.compatible }

// SetDebug installs (or clears, with nil) a Debug observer.
func (s *Sketch) SetDebug(d Debug) *Sketch {
	if d == nil {
		d = noopDebug{}
	}
	s.debug = d
	return s
}

func (s *Sketch) countWithCriterion(value float32, crit Criterion) uint64 {
	lower := crit.lowerComplement()
	var cum uint64
	for _, c := range s.compactors {
		w := uint64(1) << uint(c.lgWeight)
		cum += uint64(c.buf.CountWithCriterion(value, lower)) * w
	}
	if crit.isUpper() {
		return s.totalN - cum
	}
	return cum
}

// GetRank returns the normalized rank of value under the active
// criterion: the fraction of the stream that compares to value the way
// the criterion demands.
func (s *Sketch) GetRank(value float32) float64 {
	if s.totalN == 0 {
		return 0
	}
	return float64(s.countWithCriterion(value, s.criterion)) / float64(s.totalN)
}

// GetRanks returns GetRank applied to each value, sharing a single
// O(levels) scan per value (no auxiliary view is built).
func (s *Sketch) GetRanks(values []float32) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.GetRank(v)
	}
	return out
}

func rankLowerUpperBound(k, levels int, rank float64, numStdDev int, hra bool, totalN uint64, upper bool) float64 {
	if levels == 1 {
		return rank
	}
	thresh := float64(k) * float64(initNumSections) / float64(totalN)
	if hra && rank >= 1.0-thresh {
		return rank
	}
	if !hra && rank <= thresh {
		return rank
	}
	relative := relRSEFactor / float64(k) * boolSelect(hra, 1.0-rank, rank)
	fixed := fixRSEFactor / float64(k)
	if upper {
		ub := math.Min(rank+float64(numStdDev)*relative, rank+float64(numStdDev)*fixed)
		return ub
	}
	lb := math.Max(rank-float64(numStdDev)*relative, rank-float64(numStdDev)*fixed)
	return lb
}

func boolSelect(cond bool, a, b float64) float64 {
	if cond {
		return a
	}
	return b
}

// GetRankLowerBound returns the advertised lower confidence bound on
// rank at the given number of standard deviations. It is an analytic
// estimate, never computed from the live sketch state beyond k,
// level count, hra and totalN.
func (s *Sketch) GetRankLowerBound(rank float64, numStdDev int) float64 {
	return rankLowerUpperBound(s.k, len(s.compactors), rank, numStdDev, s.hra, s.totalN, false)
}

// GetRankUpperBound returns the advertised upper confidence bound on
// rank at the given number of standard deviations.
func (s *Sketch) GetRankUpperBound(rank float64, numStdDev int) float64 {
	return rankLowerUpperBound(s.k, len(s.compactors), rank, numStdDev, s.hra, s.totalN, true)
}

// RSE returns the relative standard error quoted for this sketch's
// shape: the upper rank bound at two levels and one standard deviation,
// the conservative assumption that the sketch has entered estimation
// mode.
func RSE(k int, rank float64, hra bool, totalN uint64) float64 {
	return rankLowerUpperBound(k, 2, rank, 1, hra, totalN, true)
}

func (s *Sketch) ensureAux() *auxiliaryView {
	if s.aux == nil {
		s.aux = buildAuxiliaryView(s.compactors, s.totalN)
	}
	return s.aux
}

// String returns a short human-readable summary of the sketch's state.
func (s *Sketch) String() string {
	return s.summaryString()
}
