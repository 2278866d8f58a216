// Package refstream provides a cross-check oracle for tests: a
// Greenwald-Khanna style quantile summary, entirely independent of the
// compactor-stack algorithm under test, that property tests can compare
// against within its own known epsilon.
package refstream

import "github.com/beorn7/perks/quantile"

// Oracle wraps a beorn7/perks targeted quantile stream pre-configured
// for a fixed epsilon at a handful of representative ranks; good enough
// to sanity-check that a sketch's GetQuantile answers land within a
// generous combined error budget, not to reproduce its exact bounds.
type Oracle struct {
	stream *quantile.Stream
	n      int
}

// defaultEpsilon is intentionally looser than any single sketch
// configuration's advertised error, since this oracle is a second
// independent algorithm, not a golden re-implementation.
const defaultEpsilon = 0.01

var defaultTargets = map[float64]float64{
	0.01: defaultEpsilon,
	0.10: defaultEpsilon,
	0.25: defaultEpsilon,
	0.50: defaultEpsilon,
	0.75: defaultEpsilon,
	0.90: defaultEpsilon,
	0.99: defaultEpsilon,
}

// New returns an empty Oracle.
func New() *Oracle {
	return &Oracle{stream: quantile.NewTargeted(defaultTargets)}
}

// Insert feeds one value into the oracle stream.
func (o *Oracle) Insert(v float64) {
	o.stream.Insert(v)
	o.n++
}

// Query returns the oracle's estimate for normalized rank q in [0, 1].
func (o *Oracle) Query(q float64) float64 {
	return o.stream.Query(q)
}

// Count returns the number of values inserted.
func (o *Oracle) Count() int { return o.n }

// Reset clears the oracle back to empty.
func (o *Oracle) Reset() {
	o.stream.Reset()
	o.n = 0
}
