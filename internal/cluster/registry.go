package cluster

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"
)

// Registry tracks which worker ranks have joined the group, serving as the
// authoritative rank-to-link table for the coordinator.
//
// Registration rules:
//   - Ranks are 1..workers; rank 0 is the coordinator itself
//   - A rank registers at most once per group
//   - When the registry has a session id, workers must present the same id
//
// Thread Safety:
// All methods are safe for concurrent use. Members returns a copy.
type Registry struct {
	// members maps a worker rank to its link.
	members map[int]*Conn

	// session is the id workers must present; empty accepts any.
	session string

	// mu protects members.
	mu sync.RWMutex

	// workers is the expected pool size, fixed for the group lifetime.
	workers int
}

// NewRegistry creates a registry expecting ranks 1..workers.
func NewRegistry(workers int, session string) *Registry {
	return &Registry{
		members: make(map[int]*Conn, workers),
		session: session,
		workers: workers,
	}
}

// Register records c as the link of rank.
//
// Returns:
//   - ErrRankOutOfRange if rank is not in 1..workers
//   - ErrSessionMismatch if session differs from the registry's session
//   - ErrDuplicateRank if rank is already registered
func (r *Registry) Register(rank int, session string, c *Conn) error {
	if rank < 1 || rank > r.workers {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrRankOutOfRange, rank, r.workers)
	}
	if r.session != "" && session != r.session {
		return fmt.Errorf("%w: rank %d", ErrSessionMismatch, rank)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[rank]; exists {
		return fmt.Errorf("%w: %d", ErrDuplicateRank, rank)
	}
	r.members[rank] = c
	return nil
}

// Len returns the number of registered ranks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Complete reports whether every rank has registered.
func (r *Registry) Complete() bool {
	return r.Len() == r.workers
}

// Missing returns the ranks that have not registered yet, ascending.
func (r *Registry) Missing() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	missing := make([]int, 0, r.workers-len(r.members))
	for rank := 1; rank <= r.workers; rank++ {
		if _, ok := r.members[rank]; !ok {
			missing = append(missing, rank)
		}
	}
	return missing
}

// Members returns the registered links ordered by rank; index i holds rank i+1.
// Ranks that have not registered are nil.
func (r *Registry) Members() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Conn, r.workers)
	for rank, c := range r.members {
		out[rank-1] = c
	}
	return out
}

// Ranks returns the registered ranks, ascending.
func (r *Registry) Ranks() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ranks := make([]int, 0, len(r.members))
	for rank := range r.members {
		ranks = append(ranks, rank)
	}
	slices.Sort(ranks)
	return ranks
}
