package reqsketch

// Option configures a Sketch built via Build. The pattern follows the
// functional-options style used elsewhere in the example pack's
// constructors (e.g. the LRU cache's WithMaxEntries-style options):
// each Option mutates a private settings struct before construction.
type Option func(*settings)

type settings struct {
	k          int
	hra        bool
	compatible bool
	criterion  Criterion
	debug      Debug
	seed       uint64
	bitGen     func(level int) BitSource
}

func defaultSettings() settings {
	return settings{
		k:          12,
		hra:        true,
		compatible: true,
		criterion:  LT,
		debug:      noopDebug{},
	}
}

// WithK sets the sketch's k parameter (rounded down to even, floored
// at minK=4). Default 12.
func WithK(k int) Option {
	return func(s *settings) { s.k = k }
}

// WithHighRankAccuracy sets the hra orientation. Default true.
func WithHighRankAccuracy(hra bool) Option {
	return func(s *settings) { s.hra = hra }
}

// WithCompatible sets the compatible-mode flag. Default true.
func WithCompatible(compatible bool) Option {
	return func(s *settings) { s.compatible = compatible }
}

// WithCriterion sets the initial rank/quantile comparator. Default LT.
func WithCriterion(c Criterion) Option {
	return func(s *settings) { s.criterion = c }
}

// WithDebug installs a Debug observer. Default is a no-op observer.
func WithDebug(d Debug) Option {
	return func(s *settings) { s.debug = d }
}

// withRandSeed pins the root seed used to derive each compactor's
// default BitSource; exposed for deterministic tests, not part of the
// public builder surface.
func withRandSeed(seed uint64) Option {
	return func(s *settings) { s.seed = seed }
}

// withBitSourceFactory overrides how each compactor's BitSource is
// constructed; exposed for deterministic tests.
func withBitSourceFactory(f func(level int) BitSource) Option {
	return func(s *settings) { s.bitGen = f }
}

// Builder is a thin constructor helper over NewSketch, recognizing the
// options above. It is not part of the hard core: every Option just
// sets a field NewSketch otherwise defaults.
type Builder struct {
	opts []Option
}

// NewBuilder returns an empty Builder; k=12, hra=true, compatible=true,
// criterion=LT and no debug observer unless overridden by options.
func NewBuilder(opts ...Option) *Builder {
	return &Builder{opts: opts}
}

// Build constructs the configured Sketch.
func (b *Builder) Build() *Sketch {
	s := defaultSettings()
	for _, opt := range b.opts {
		opt(&s)
	}
	return newSketchWithOptions(s.k, s.hra, s.compatible, s.criterion, s.debug, s.seed, s.bitGen)
}
