package reqsketch

import "github.com/pkg/errors"

// Argument errors: user-caused, returned immediately to the caller.
var (
	// ErrEmptySketch is returned by quantile/quantiles queries against a
	// sketch that has not seen any update yet.
	ErrEmptySketch = errors.New("reqsketch: sketch is empty")
	// ErrRankOutOfRange is returned when a normalized rank outside [0, 1]
	// is passed to GetQuantile/GetQuantiles.
	ErrRankOutOfRange = errors.New("reqsketch: normalized rank must be in [0.0, 1.0]")
	// ErrInvalidSplitPoints is returned by GetCDF/GetPMF when the split
	// points are not finite, not unique, or not monotonically increasing.
	ErrInvalidSplitPoints = errors.New("reqsketch: split points must be finite, unique and monotonically increasing")
	// ErrInvalidK is returned by Heapify when the decoded k is below minK.
	// The builder and NewSketch floor k at minK instead of failing.
	ErrInvalidK = errors.New("reqsketch: k must be >= 4")
)

// Structural assertions: implementation-contract violations.
// errBadHeader is returned (wrapped) by Heapify and FromCompressedByteArray
// when a serialized image is malformed; errRetainedInvariant is never
// returned and panics via assertf instead.
var (
	errBadHeader         = errors.New("reqsketch: serialized header does not match expected constants")
	errRetainedInvariant = errors.New("reqsketch: retained count did not drop below max nominal size after compress")
)

func assertf(cond bool, err error) {
	if !cond {
		panic(err)
	}
}
