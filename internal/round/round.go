package round

// Parity selects which adjacent index pairs a round compares.
type Parity string

const (
	// Odd rounds compare (1,2), (3,4), ...
	Odd Parity = "odd"
	// Even rounds compare (0,1), (2,3), ...
	Even Parity = "even"
)

// First is the parity of the opening round of every sort.
const First = Odd

// String returns the parity name.
func (p Parity) String() string {
	return string(p)
}

// Flip returns the parity of the following round.
func (p Parity) Flip() Parity {
	if p == Odd {
		return Even
	}
	return Odd
}

// Start returns the left index of the first pair compared in a round.
func Start(p Parity) int {
	if p == Odd {
		return 1
	}
	return 0
}

// PairCount returns how many adjacent pairs a round of parity p compares in
// an array of length n. An odd round never touches element 0, and leaves the
// last element unpaired when n is even. For odd n the odd round still
// reaches the final pair (n-2, n-1), so it compares (n-1)/2 pairs rather
// than n/2-1.
func PairCount(n int, p Parity) int {
	if n < 2 {
		return 0
	}
	if p == Even {
		return n / 2
	}
	return (n - 1) / 2
}

// Pair is a compare-exchange target; Left is always Right-1.
type Pair struct {
	Left  int // Receives the smaller value
	Right int // Receives the larger value
}

// Pairs returns the pending pair set of a round, ordered left to right.
func Pairs(n int, p Parity) []Pair {
	count := PairCount(n, p)
	pairs := make([]Pair, 0, count)
	left := Start(p)
	for i := 0; i < count; i++ {
		pairs = append(pairs, Pair{Left: left, Right: left + 1})
		left += 2
	}
	return pairs
}

// Chunk is a contiguous window of a round's pending pairs handed to the
// worker pool at once. Slot i of the chunk goes to worker rank i+1.
type Chunk struct {
	Start int // Left index of the first pair in the chunk
	Size  int // Number of pairs, one per worker
}

// Pair returns the pair handled by chunk slot i.
func (c Chunk) Pair(i int) Pair {
	left := c.Start + 2*i
	return Pair{Left: left, Right: left + 1}
}

// Next returns the chunk that starts right after c with the given size.
func (c Chunk) Next(size int) Chunk {
	return Chunk{Start: c.Start + 2*c.Size, Size: size}
}

// TotalComparisons returns the comparison count of a full sort of n
// elements: n rounds, alternating parity from First.
func TotalComparisons(n int) int {
	total := 0
	p := First
	for pass := 0; pass < n; pass++ {
		total += PairCount(n, p)
		p = p.Flip()
	}
	return total
}
