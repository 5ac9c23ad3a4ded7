package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegistryRegister verifies the rank registration rules.
func TestRegistryRegister(t *testing.T) {
	tests := []struct {
		name    string
		rank    int
		session string
		wantErr error
	}{
		{name: "valid first rank", rank: 1, session: "s1"},
		{name: "valid last rank", rank: 3, session: "s1"},
		{name: "coordinator rank", rank: 0, session: "s1", wantErr: ErrRankOutOfRange},
		{name: "rank past pool", rank: 4, session: "s1", wantErr: ErrRankOutOfRange},
		{name: "negative rank", rank: -1, session: "s1", wantErr: ErrRankOutOfRange},
		{name: "wrong session", rank: 2, session: "other", wantErr: ErrSessionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRegistry(3, "s1")
			err := r.Register(tt.rank, tt.session, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, 0, r.Len())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 1, r.Len())
		})
	}
}

// TestRegistryDuplicate verifies that a rank can only join once.
func TestRegistryDuplicate(t *testing.T) {
	r := NewRegistry(2, "")
	require.NoError(t, r.Register(1, "anything", nil))
	assert.ErrorIs(t, r.Register(1, "anything", nil), ErrDuplicateRank)
	assert.Equal(t, 1, r.Len())
}

// TestRegistryCompletion tracks missing ranks until the pool is complete.
func TestRegistryCompletion(t *testing.T) {
	r := NewRegistry(3, "")
	assert.False(t, r.Complete())
	assert.Equal(t, []int{1, 2, 3}, r.Missing())

	c2 := &Conn{}
	require.NoError(t, r.Register(2, "", c2))
	assert.Equal(t, []int{1, 3}, r.Missing())
	assert.Equal(t, []int{2}, r.Ranks())

	require.NoError(t, r.Register(3, "", nil))
	require.NoError(t, r.Register(1, "", nil))
	assert.True(t, r.Complete())
	assert.Empty(t, r.Missing())
	assert.Equal(t, []int{1, 2, 3}, r.Ranks())

	members := r.Members()
	require.Len(t, members, 3)
	assert.Same(t, c2, members[1])
}
