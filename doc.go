// Package reqsketch implements a relative error quantiles sketch: a
// single-pass streaming summary over float32 values that answers rank,
// quantile, CDF and PMF queries with error that scales with the rank
// itself rather than with a fixed absolute budget.
//
// The sketch is a stack of compactors, one per power-of-two weight
// class. New values enter the bottom compactor; once the sketch's
// total retained count reaches its nominal capacity, a compress pass
// walks the stack bottom-up, randomly halving any compactor that has
// overflowed its own capacity and promoting the surviving half to the
// next level up.
//
// The algorithm follows the paper "Relative Error Streaming Quantiles"
// (https://arxiv.org/abs/2004.01668): no fixed stream-length bound, a
// capacity schedule that tightens as compactions accumulate, and
// separate high/low rank accuracy modes.
package reqsketch
