// Package round describes the geometry of odd-even transposition rounds: which
// adjacent index pairs a round compares, how many there are, and how a round's
// pending pairs are cut into chunks for the worker pool.
//
// A sort of n elements runs exactly n rounds. Parity alternates strictly and
// the first round is odd:
//
//	odd  round: (1,2) (3,4) (5,6) ...
//	even round: (0,1) (2,3) (4,5) ...
//
// Pairs in one round never share an index, so every pair of a chunk can be
// compared by a different worker at the same time.
//
// The package is pure: it holds no state and performs no I/O.
package round
