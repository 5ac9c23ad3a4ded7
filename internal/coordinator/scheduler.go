package coordinator

import (
	"fmt"

	"github.com/dreamware/oddeven/internal/config"
)

// Scheduler decides how many of the pairs still pending in a round go out
// in the next chunk. It never returns more than pool, and returns 0 only
// when nothing is pending.
type Scheduler func(pairs, pool int) int

// Greedy fills the whole pool whenever enough pairs remain. The last chunk
// of a round picks up the remainder.
func Greedy(pairs, pool int) int {
	if pairs <= 0 || pool <= 0 {
		return 0
	}
	return min(pairs, pool)
}

// Balanced splits the pending pairs into the fewest chunks that fit the
// pool, all of nearly equal size, so no chunk leaves most workers idle.
func Balanced(pairs, pool int) int {
	if pairs <= 0 || pool <= 0 {
		return 0
	}
	for i := 1; i <= pairs; i++ {
		if size := ceilDiv(pairs, i); size <= pool {
			return size
		}
	}
	return 1
}

// Plan returns the chunk sizes a round with the given pair count would
// dispatch, in order.
func Plan(pairs, pool int, s Scheduler) []int {
	var sizes []int
	for pairs > 0 {
		size := s(pairs, pool)
		if size <= 0 {
			break
		}
		sizes = append(sizes, size)
		pairs -= size
	}
	return sizes
}

// ParsePolicy returns the scheduler registered under name.
func ParsePolicy(name string) (Scheduler, error) {
	switch name {
	case config.PolicyGreedy, "":
		return Greedy, nil
	case config.PolicyBalanced:
		return Balanced, nil
	}
	return nil, fmt.Errorf("%w: unknown policy %q", config.ErrInvalidArgs, name)
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
