package coordinator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/oddeven/internal/config"
)

// TestGreedy verifies the greedy chunk sizes.
func TestGreedy(t *testing.T) {
	tests := []struct {
		pairs, pool, want int
	}{
		{pairs: 0, pool: 3, want: 0},
		{pairs: -1, pool: 3, want: 0},
		{pairs: 1, pool: 3, want: 1},
		{pairs: 3, pool: 3, want: 3},
		{pairs: 7, pool: 3, want: 3},
		{pairs: 7, pool: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.pairs, tt.pool), func(t *testing.T) {
			assert.Equal(t, tt.want, Greedy(tt.pairs, tt.pool))
		})
	}
}

// TestBalanced verifies the balanced chunk sizes.
func TestBalanced(t *testing.T) {
	tests := []struct {
		pairs, pool, want int
	}{
		{pairs: 0, pool: 3, want: 0},
		{pairs: 2, pool: 3, want: 2},
		{pairs: 5, pool: 3, want: 3},
		{pairs: 7, pool: 3, want: 3},
		{pairs: 4, pool: 3, want: 2},
		{pairs: 10, pool: 1, want: 1},
		{pairs: 9, pool: 4, want: 3},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d/%d", tt.pairs, tt.pool), func(t *testing.T) {
			assert.Equal(t, tt.want, Balanced(tt.pairs, tt.pool))
		})
	}
}

// TestPlan checks that every policy covers each pair exactly once and never
// exceeds the pool.
func TestPlan(t *testing.T) {
	policies := map[string]Scheduler{"greedy": Greedy, "balanced": Balanced}

	for name, s := range policies {
		t.Run(name, func(t *testing.T) {
			for pairs := 0; pairs <= 40; pairs++ {
				for pool := 1; pool <= 8; pool++ {
					sizes := Plan(pairs, pool, s)
					sum := 0
					for _, size := range sizes {
						assert.Greater(t, size, 0)
						assert.LessOrEqual(t, size, pool)
						sum += size
					}
					assert.Equal(t, pairs, sum, "pairs=%d pool=%d", pairs, pool)
				}
			}
		})
	}

	assert.Equal(t, []int{3, 3, 1}, Plan(7, 3, Greedy))
	assert.Equal(t, []int{3, 2, 2}, Plan(7, 3, Balanced))
	assert.Empty(t, Plan(0, 3, Greedy))
}

// TestPlanChunkCount shows both policies need the same number of chunks.
func TestPlanChunkCount(t *testing.T) {
	for pairs := 1; pairs <= 30; pairs++ {
		for pool := 1; pool <= 6; pool++ {
			assert.Len(t, Plan(pairs, pool, Balanced), len(Plan(pairs, pool, Greedy)))
		}
	}
}

// TestParsePolicy maps names to schedulers.
func TestParsePolicy(t *testing.T) {
	s, err := ParsePolicy(config.PolicyGreedy)
	require.NoError(t, err)
	assert.Equal(t, 3, s(7, 3))

	s, err = ParsePolicy(config.PolicyBalanced)
	require.NoError(t, err)
	assert.Equal(t, 2, s(4, 3))

	_, err = ParsePolicy("fastest")
	assert.ErrorIs(t, err, config.ErrInvalidArgs)
}
