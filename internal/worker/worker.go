package worker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/dreamware/oddeven/internal/cluster"
)

// ErrUnknownOp is returned by Serve when a request carries an unrecognised tag.
var ErrUnknownOp = errors.New("worker: unknown op")

// Worker is a stateless compare-exchange responder. Nothing a request carries
// outlives the reply; the only state is the diagnostic request counter.
type Worker struct {
	// Rank is the worker's address in the pool, used for logging.
	Rank int

	// Delay is the busy-wait spent on every compare to emulate heavy work.
	Delay time.Duration

	// handled counts compare requests answered.
	handled atomic.Uint64
}

// New creates a worker for rank that spends delay on every compare.
func New(rank int, delay time.Duration) *Worker {
	return &Worker{Rank: rank, Delay: delay}
}

// Serve answers requests from ep until it receives an exit request, which
// ends the loop without a reply. Receive and send failures end the loop with
// the error.
func (w *Worker) Serve(ctx context.Context, ep cluster.Endpoint) error {
	for {
		req, err := ep.Recv(ctx)
		if err != nil {
			return fmt.Errorf("worker[%d] recv: %w", w.Rank, err)
		}

		switch req.Op {
		case cluster.OpCompare:
			spin(w.Delay)
			if err := ep.Send(ctx, Compare(req.A, req.B)); err != nil {
				return fmt.Errorf("worker[%d] send: %w", w.Rank, err)
			}
			w.handled.Add(1)
		case cluster.OpExit:
			log.Printf("worker[%d]: exit after %d compares", w.Rank, w.Handled())
			return nil
		default:
			return fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
		}
	}
}

// Handled returns the number of compare requests answered so far.
func (w *Worker) Handled() uint64 {
	return w.handled.Load()
}

// Compare orders a and b, smaller first.
func Compare(a, b int) cluster.Response {
	if a > b {
		return cluster.Response{Min: b, Max: a}
	}
	return cluster.Response{Min: a, Max: b}
}

// spin keeps the core busy for d, the way a compute-bound compare would.
func spin(d time.Duration) {
	if d <= 0 {
		return
	}
	start := time.Now()
	for time.Since(start) < d {
	}
}

// ServeFunc adapts workers with the given delay to cluster.NewLocalGroup.
func ServeFunc(delay time.Duration) cluster.ServeFunc {
	return func(ctx context.Context, rank int, ep cluster.Endpoint) error {
		return New(rank, delay).Serve(ctx, ep)
	}
}
