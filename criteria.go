package reqsketch

// Criterion is the comparator used by rank queries. It is modeled as a
// small tagged variant rather than as a type hierarchy: every consumer
// that needs comparator behavior switches on the four cases directly.
type Criterion uint8

const (
	// LT selects strictly-less-than: rank(v) counts items < v.
	LT Criterion = iota
	// LE selects less-than-or-equal: rank(v) counts items <= v.
	LE
	// GT selects strictly-greater-than: rank(v) counts items > v.
	GT
	// GE selects greater-than-or-equal: rank(v) counts items >= v.
	GE
)

func (c Criterion) String() string {
	switch c {
	case LT:
		return "LT"
	case LE:
		return "LE"
	case GT:
		return "GT"
	case GE:
		return "GE"
	default:
		return "UNKNOWN"
	}
}

// lowerComplement returns the LT/LE criterion that getCount should use
// internally: LT and LE pass through unchanged. GT and LE partition the
// stream into exactly two halves (x>v or x<=v), as do GE and LT (x>=v
// or x<v), so GT complements to LE and GE complements to LT — the
// pairing that keeps rank(v,GT)+rank(v,LE)=1 and rank(v,GE)+rank(v,LT)=1
// exactly, independent of v's multiplicity in the stream.
func (c Criterion) lowerComplement() Criterion {
	switch c {
	case GT:
		return LE
	case GE:
		return LT
	default:
		return c
	}
}

// isUpper reports whether this criterion requires the "total - count"
// complement step after summing counts under the lower criterion.
func (c Criterion) isUpper() bool {
	return c == GT || c == GE
}
