package round

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParityFlip verifies that parity alternates strictly.
func TestParityFlip(t *testing.T) {
	assert.Equal(t, Even, Odd.Flip())
	assert.Equal(t, Odd, Even.Flip())
	assert.Equal(t, Odd, First)
	assert.Equal(t, "odd", Odd.String())
}

// TestPairCount checks the pending pair count for both parities.
func TestPairCount(t *testing.T) {
	tests := []struct {
		n    int
		even int
		odd  int
	}{
		{n: 0, even: 0, odd: 0},
		{n: 1, even: 0, odd: 0},
		{n: 2, even: 1, odd: 0},
		{n: 3, even: 1, odd: 1},
		{n: 4, even: 2, odd: 1},
		{n: 5, even: 2, odd: 2},
		{n: 10, even: 5, odd: 4},
		{n: 11, even: 5, odd: 5},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.even, PairCount(tt.n, Even), "even n=%d", tt.n)
		assert.Equal(t, tt.odd, PairCount(tt.n, Odd), "odd n=%d", tt.n)
		if tt.n >= 2 && tt.n%2 == 0 {
			assert.Equal(t, tt.n/2-1, PairCount(tt.n, Odd), "odd n=%d", tt.n)
		}
	}
}

// TestPairs verifies the pending pair set layout.
func TestPairs(t *testing.T) {
	t.Run("odd round of even length", func(t *testing.T) {
		assert.Equal(t, []Pair{{1, 2}, {3, 4}}, Pairs(6, Odd))
	})

	t.Run("odd round of odd length pairs the last element", func(t *testing.T) {
		assert.Equal(t, []Pair{{1, 2}, {3, 4}}, Pairs(5, Odd))
	})

	t.Run("even round", func(t *testing.T) {
		assert.Equal(t, []Pair{{0, 1}, {2, 3}}, Pairs(5, Even))
	})

	t.Run("pairs never share an index", func(t *testing.T) {
		for n := 0; n < 40; n++ {
			for _, p := range []Parity{Odd, Even} {
				seen := make(map[int]bool)
				for _, pair := range Pairs(n, p) {
					assert.Equal(t, pair.Left+1, pair.Right)
					assert.Less(t, pair.Right, n)
					assert.False(t, seen[pair.Left])
					assert.False(t, seen[pair.Right])
					seen[pair.Left] = true
					seen[pair.Right] = true
				}
			}
		}
	})
}

// TestChunk verifies chunk slot to pair mapping and advancing.
func TestChunk(t *testing.T) {
	c := Chunk{Start: Start(Odd), Size: 2}
	assert.Equal(t, Pair{1, 2}, c.Pair(0))
	assert.Equal(t, Pair{3, 4}, c.Pair(1))

	next := c.Next(3)
	assert.Equal(t, 5, next.Start)
	assert.Equal(t, 3, next.Size)
	assert.Equal(t, Pair{9, 10}, next.Pair(2))
}

// TestTotalComparisons checks the whole-sort comparison count.
func TestTotalComparisons(t *testing.T) {
	assert.Equal(t, 0, TotalComparisons(0))
	assert.Equal(t, 0, TotalComparisons(1))
	assert.Equal(t, 1, TotalComparisons(2)) // 0 + 1
	assert.Equal(t, 6, TotalComparisons(4)) // 1 + 2 + 1 + 2
	assert.Equal(t, 10, TotalComparisons(5))
}

// TestOddRoundReachesLastPair covers the final pair of odd-length arrays,
// which the first round of a three-element sort must compare.
func TestOddRoundReachesLastPair(t *testing.T) {
	for _, n := range []int{3, 5, 7, 9} {
		pairs := Pairs(n, Odd)
		require.NotEmpty(t, pairs)
		assert.Equal(t, Pair{Left: n - 2, Right: n - 1}, pairs[len(pairs)-1], "n=%d", n)
	}
	assert.Equal(t, []Pair{{Left: 1, Right: 2}}, Pairs(3, Odd))
}
