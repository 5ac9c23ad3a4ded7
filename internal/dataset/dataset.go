// Package dataset generates the arrays the coordinator sorts.
package dataset

import (
	"math"
	"math/rand/v2"
)

// Generate returns n integers drawn uniformly from [min, max]. A zero seed
// picks a random one; any other seed makes the array reproducible.
func Generate(n, min, max int, seed uint64) []int {
	if n <= 0 {
		return []int{}
	}
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	// Two's-complement subtraction gives the true width even when
	// max-min overflows int.
	width := uint64(max) - uint64(min)
	arr := make([]int, n)
	for i := range arr {
		var off uint64
		if width == math.MaxUint64 {
			off = rng.Uint64()
		} else {
			off = rng.Uint64N(width + 1)
		}
		arr[i] = int(uint64(min) + off)
	}
	return arr
}
