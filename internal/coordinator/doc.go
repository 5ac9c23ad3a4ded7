// Package coordinator runs odd-even transposition sort on rank 0, handing
// every compare-exchange to a pool of workers and keeping the array to
// itself.
//
// # Overview
//
// A sort of n elements takes exactly n rounds. Rounds alternate parity,
// starting with an odd one:
//
//	index:   0   1   2   3   4   5
//	odd:         └─┬─┘   └─┬─┘          (1,2) (3,4)
//	even:    └─┬─┘   └─┬─┘   └─┬─┘      (0,1) (2,3) (4,5)
//
// Pairs within a round never share an index, so they can be compared in any
// order. The Sorter cuts them into chunks of at most Size() pairs and sends
// slot i of a chunk to worker rank i+1:
//
//	┌─────────────┐  Compare(a,b)  ┌──────────┐
//	│   Sorter    │ ─────────────► │ rank 1.. │
//	│  (rank 0)   │ ◄───────────── │ rank c   │
//	└─────────────┘    {min,max}   └──────────┘
//
// All sends of a chunk go out before the first receive, and replies are
// read back in rank order. Min lands on the lower index, max on the higher.
// A chunk finishes before the next one starts, and a round finishes before
// the parity flips.
//
// # Scheduling
//
// The Scheduler picks the size of the next chunk from the pairs still
// pending in the round:
//
//	Greedy    min(pairs, pool)          7 pairs, pool 3 → 3 3 1
//	Balanced  fewest near-equal chunks  7 pairs, pool 3 → 3 2 2
//
// Both dispatch the same number of chunks per round; Balanced keeps the
// chunks even so the last one does not run a nearly idle pool.
//
// # Termination
//
// Shutdown sends one Exit to every worker and then closes the group, which
// blocks until the exits have been delivered. It is safe to call more than
// once.
//
// # Limitations
//
// There are no per-message timeouts. A worker that never replies stalls
// Sort until the context passed to it is cancelled.
package coordinator
