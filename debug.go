package reqsketch

import (
	"fmt"
	"io"
)

// Debug is an optional observer notified at key lifecycle events,
// letting a caller opt into ad hoc progress logging without the
// library printing anything by default. No method may mutate sketch
// state; implementations are called synchronously on the goroutine
// driving the sketch.
type Debug interface {
	// Start fires once, when the sketch's first compactor is created.
	Start(k int, hra bool)
	// NewCompactor fires whenever the stack grows a new top level.
	NewCompactor(lgWeight int)
	// CompressStart fires at the beginning of a compress cycle.
	CompressStart(retained, maxNominalSize int)
	// CompressDone fires at the end of a compress cycle.
	CompressDone(retained, maxNominalSize int)
	// MustAddCompactor fires when compress() finds the top compactor
	// overflowing and has to grow the stack mid-cycle.
	MustAddCompactor(level int)
	// Serialize fires once per ToByteArray call with the resulting size.
	Serialize(bytesWritten int)
}

// noopDebug is the default Debug: every method is a no-op.
type noopDebug struct{}

func (noopDebug) Start(int, bool)        {}
func (noopDebug) NewCompactor(int)       {}
func (noopDebug) CompressStart(int, int) {}
func (noopDebug) CompressDone(int, int)  {}
func (noopDebug) MustAddCompactor(int)   {}
func (noopDebug) Serialize(int)          {}

// PrintDebug is a Debug implementation that writes one line per event
// to w with fmt.Fprintf, in the same unceremonious style as the
// teacher's fmt.Println debug lines.
type PrintDebug struct {
	W io.Writer
}

func (p PrintDebug) Start(k int, hra bool) {
	fmt.Fprintf(p.W, "reqsketch: start k=%d hra=%v\n", k, hra)
}

func (p PrintDebug) NewCompactor(lgWeight int) {
	fmt.Fprintf(p.W, "reqsketch: new compactor lgWeight=%d\n", lgWeight)
}

func (p PrintDebug) CompressStart(retained, maxNominalSize int) {
	fmt.Fprintf(p.W, "reqsketch: compress start retained=%d maxNominalSize=%d\n", retained, maxNominalSize)
}

func (p PrintDebug) CompressDone(retained, maxNominalSize int) {
	fmt.Fprintf(p.W, "reqsketch: compress done retained=%d maxNominalSize=%d\n", retained, maxNominalSize)
}

func (p PrintDebug) MustAddCompactor(level int) {
	fmt.Fprintf(p.W, "reqsketch: must add compactor at level=%d\n", level)
}

func (p PrintDebug) Serialize(bytesWritten int) {
	fmt.Fprintf(p.W, "reqsketch: serialized %d bytes\n", bytesWritten)
}
