package reqsketch

import (
	"fmt"
	"strings"
)

// summaryString renders a fixed set of fields: N, retained items, max
// nominal size, extrema, estimation mode, criterion, hra and level count.
func (s *Sketch) summaryString() string {
	var b strings.Builder
	b.WriteString("**********Relative Error Quantiles Sketch Summary**********\n")
	fmt.Fprintf(&b, "  N               : %d\n", s.totalN)
	fmt.Fprintf(&b, "  Retained Items  : %d\n", s.retained)
	fmt.Fprintf(&b, "  Max Nominal Size: %d\n", s.maxNominalSize)
	fmt.Fprintf(&b, "  Min Value       : %v\n", s.minValue)
	fmt.Fprintf(&b, "  Max Value       : %v\n", s.maxValue)
	fmt.Fprintf(&b, "  Estimation Mode : %v\n", s.IsEstimationMode())
	fmt.Fprintf(&b, "  Criterion       : %v\n", s.criterion)
	fmt.Fprintf(&b, "  High Rank Acc   : %v\n", s.hra)
	fmt.Fprintf(&b, "  Levels          : %d\n", len(s.compactors))
	b.WriteString("************************End Summary************************\n")
	return b.String()
}

// DebugString renders a per-compactor detail view: retained items,
// nominal capacity and section geometry for every level, and
// optionally (allData) the contents of each compactor's buffer in stored
// order (the bottom level may be unsorted).
func (s *Sketch) DebugString(allData bool) string {
	var b strings.Builder
	b.WriteString("*********Relative Error Quantiles Compactor Detail*********\n")
	fmt.Fprintf(&b, "Compactor Detail: Ret Items: %d  N: %d\n", s.retained, s.totalN)
	for _, c := range s.compactors {
		fmt.Fprintf(&b, "level=%d numSections=%d sectionSize=%d nomCapacity=%d numCompactions=%d retained=%d\n",
			c.lgWeight, c.numSections, c.sectionSize(), c.nomCapacity(), c.numCompactions, c.buf.Len())
		if allData {
			fmt.Fprintf(&b, "  %v\n", c.buf.Slice())
		}
	}
	b.WriteString("************************End Detail*************************\n")
	return b.String()
}
