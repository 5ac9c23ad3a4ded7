package cluster

import "context"

// Group is the coordinator's view of the worker pool. Workers are addressed
// by rank, 1..Size(). Every call blocks until the message is handed off or
// ctx ends; there are no per-message timeouts.
type Group interface {
	// Size returns the number of workers in the pool.
	Size() int

	// Send delivers req to the worker with the given rank.
	Send(ctx context.Context, rank int, req Request) error

	// Recv waits for the next response from the worker with the given rank.
	Recv(ctx context.Context, rank int) (Response, error)

	// Close releases the pool after the termination requests were sent,
	// waiting until everything queued has been delivered.
	Close(ctx context.Context) error
}

// Endpoint is a worker's link to the coordinator.
type Endpoint interface {
	// Recv waits for the next request.
	Recv(ctx context.Context) (Request, error)

	// Send replies to the coordinator.
	Send(ctx context.Context, resp Response) error
}
