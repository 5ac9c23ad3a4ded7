package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/dreamware/oddeven/internal/cluster"
	"github.com/dreamware/oddeven/internal/round"
	"github.com/dreamware/oddeven/internal/tracing"
)

// Result summarises a finished sort.
type Result struct {
	Comparisons int // Pairs handed to workers, summed over every round
	Rounds      int // Always the array length
	Chunks      int // Dispatch batches across all rounds
	Swaps       int // Pairs that came back in the opposite order
}

// Option configures a Sorter.
type Option func(*Sorter)

// WithScheduler sets the chunk scheduling policy. Greedy is the default.
func WithScheduler(s Scheduler) Option {
	return func(st *Sorter) {
		if s != nil {
			st.schedule = s
		}
	}
}

// WithVerbose sets the progress log level: 1 logs every round, 2 also logs
// every chunk and the array after each round.
func WithVerbose(level int) Option {
	return func(st *Sorter) {
		st.verbose = level
	}
}

// WithLogger redirects progress logging.
func WithLogger(l *log.Logger) Option {
	return func(st *Sorter) {
		if l != nil {
			st.logger = l
		}
	}
}

// Sorter drives odd-even transposition sort over a worker group. It owns
// the array for the duration of Sort; workers only ever see value pairs.
type Sorter struct {
	group    cluster.Group
	schedule Scheduler
	verbose  int
	logger   *log.Logger

	exitOnce sync.Once
	exitErr  error
}

// NewSorter returns a Sorter dispatching to group.
func NewSorter(group cluster.Group, opts ...Option) (*Sorter, error) {
	if group == nil {
		return nil, errors.New("coordinator: nil worker group")
	}
	if group.Size() < 1 {
		return nil, fmt.Errorf("coordinator: worker group is empty")
	}
	s := &Sorter{
		group:    group,
		schedule: Greedy,
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Sort sorts arr in place in exactly len(arr) rounds, the first one odd.
// It returns early only when a send or receive fails, leaving arr
// partially sorted.
func (s *Sorter) Sort(ctx context.Context, arr []int) (res Result, err error) {
	ctx, span := tracing.StartSpan(ctx, "oddeven.sort")
	span.SetInt("size", len(arr)).SetInt("workers", s.group.Size())
	defer func() {
		span.SetInt("comparisons", res.Comparisons).SetInt("swaps", res.Swaps)
		tracing.EndSpan(span, err)
	}()

	p := round.First
	for pass := 0; pass < len(arr); pass++ {
		if err := s.round(ctx, arr, pass, p, &res); err != nil {
			return res, fmt.Errorf("pass %d (%s): %w", pass, p, err)
		}
		res.Rounds++

		if s.verbose >= 1 {
			s.logger.Printf("Pass %d, %s", pass, p)
		}
		if s.verbose >= 2 {
			s.logger.Printf("%v", arr)
		}
		p = p.Flip()
	}
	return res, nil
}

// round runs one pass: it cuts the pending pairs into chunks and dispatches
// them one after another.
func (s *Sorter) round(ctx context.Context, arr []int, pass int, p round.Parity, res *Result) (err error) {
	pairs := round.PairCount(len(arr), p)
	res.Comparisons += pairs

	ctx, span := tracing.StartSpan(ctx, "oddeven.round")
	span.SetInt("round", pass).SetString("parity", p.String()).SetInt("pairs", pairs)
	chunks := 0
	defer func() {
		span.SetInt("chunks", chunks)
		tracing.EndSpan(span, err)
	}()

	pool := s.group.Size()
	chunk := round.Chunk{Start: round.Start(p)}
	for pending := pairs; pending > 0; pending -= chunk.Size {
		size := s.schedule(pending, pool)
		if size <= 0 || size > pool || size > pending {
			return fmt.Errorf("scheduler chose %d pairs out of %d for a pool of %d", size, pending, pool)
		}
		chunk = chunk.Next(size)

		if s.verbose >= 2 {
			s.logger.Printf("processing %d pairs, starting from %d index.", chunk.Size, chunk.Start)
		}
		if err := s.dispatch(ctx, arr, chunk, res); err != nil {
			return err
		}
		chunks++
		res.Chunks++
	}
	return nil
}

// dispatch sends slot i of chunk to rank i+1, then collects the replies in
// rank order and writes them back.
func (s *Sorter) dispatch(ctx context.Context, arr []int, chunk round.Chunk, res *Result) error {
	for i := 0; i < chunk.Size; i++ {
		pr := chunk.Pair(i)
		if err := s.group.Send(ctx, i+1, cluster.Compare(arr[pr.Left], arr[pr.Right])); err != nil {
			return err
		}
	}
	for i := 0; i < chunk.Size; i++ {
		resp, err := s.group.Recv(ctx, i+1)
		if err != nil {
			return err
		}
		pr := chunk.Pair(i)
		if arr[pr.Left] > arr[pr.Right] {
			res.Swaps++
		}
		arr[pr.Left], arr[pr.Right] = resp.Min, resp.Max
	}
	return nil
}

// Shutdown tells every worker to exit, then closes the group, which waits
// for the exit requests to be delivered. Only the first call does anything;
// later calls return the same error.
func (s *Sorter) Shutdown(ctx context.Context) error {
	s.exitOnce.Do(func() {
		var errs []error
		for rank := 1; rank <= s.group.Size(); rank++ {
			if err := s.group.Send(ctx, rank, cluster.Exit()); err != nil {
				errs = append(errs, fmt.Errorf("exit rank %d: %w", rank, err))
			}
		}
		if err := s.group.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("close group: %w", err))
		}
		s.exitErr = errors.Join(errs...)
	})
	return s.exitErr
}
