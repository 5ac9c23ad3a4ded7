package cluster

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// mailbox is a one-directional in-memory link between two ranks.
type mailbox[T any] struct {
	ch chan T
}

func newMailbox[T any](size int) *mailbox[T] {
	return &mailbox[T]{ch: make(chan T, size)}
}

func (m *mailbox[T]) publish(ctx context.Context, v T) error {
	select {
	case m.ch <- v:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mailbox[T]) consume(ctx context.Context) (T, error) {
	select {
	case v := <-m.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// ServeFunc runs one worker against its endpoint until the worker returns.
type ServeFunc func(ctx context.Context, rank int, ep Endpoint) error

// LocalGroup runs the worker pool as goroutines in the coordinator's process,
// linked by in-memory mailboxes. Messages are copied by value, so workers
// still never share the coordinator's array.
type LocalGroup struct {
	requests  []*mailbox[Request]
	responses []*mailbox[Response]
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	errs      []error
	closeOnce sync.Once
	closeErr  error
}

// NewLocalGroup starts workers goroutines, each running serve with its own
// endpoint. Workers stop when they return from serve, normally after
// receiving an exit request.
func NewLocalGroup(ctx context.Context, workers int, serve ServeFunc) *LocalGroup {
	ctx, cancel := context.WithCancel(ctx)
	g := &LocalGroup{
		requests:  make([]*mailbox[Request], workers),
		responses: make([]*mailbox[Response], workers),
		cancel:    cancel,
	}

	for i := 0; i < workers; i++ {
		g.requests[i] = newMailbox[Request](1)
		g.responses[i] = newMailbox[Response](1)

		rank := i + 1
		ep := &localEndpoint{in: g.requests[i], out: g.responses[i]}
		g.wg.Add(1)
		go func() {
			defer g.wg.Done()
			if err := serve(ctx, rank, ep); err != nil {
				g.mu.Lock()
				g.errs = append(g.errs, fmt.Errorf("worker %d: %w", rank, err))
				g.mu.Unlock()
			}
		}()
	}
	return g
}

// Size returns the number of workers.
func (g *LocalGroup) Size() int {
	return len(g.requests)
}

// Send delivers req to the worker with the given rank.
func (g *LocalGroup) Send(ctx context.Context, rank int, req Request) error {
	if rank < 1 || rank > len(g.requests) {
		return fmt.Errorf("%w: %d", ErrRankOutOfRange, rank)
	}
	return g.requests[rank-1].publish(ctx, req)
}

// Recv waits for the next response from the worker with the given rank.
func (g *LocalGroup) Recv(ctx context.Context, rank int) (Response, error) {
	if rank < 1 || rank > len(g.responses) {
		return Response{}, fmt.Errorf("%w: %d", ErrRankOutOfRange, rank)
	}
	return g.responses[rank-1].consume(ctx)
}

// Close waits for every worker goroutine to return. If ctx ends first the
// remaining workers are cancelled and ctx's error is returned.
func (g *LocalGroup) Close(ctx context.Context) error {
	g.closeOnce.Do(func() {
		done := make(chan struct{})
		go func() {
			g.wg.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-ctx.Done():
			g.cancel()
			<-done
			g.closeErr = ctx.Err()
			return
		}
		g.cancel()

		g.mu.Lock()
		defer g.mu.Unlock()
		g.closeErr = errors.Join(g.errs...)
	})
	return g.closeErr
}

type localEndpoint struct {
	in  *mailbox[Request]
	out *mailbox[Response]
}

func (e *localEndpoint) Recv(ctx context.Context) (Request, error) {
	return e.in.consume(ctx)
}

func (e *localEndpoint) Send(ctx context.Context, resp Response) error {
	return e.out.publish(ctx, resp)
}

var _ Group = (*LocalGroup)(nil)
