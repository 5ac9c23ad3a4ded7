package cluster

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

const (
	// handshakeTimeout bounds how long a connecting peer may take to say Hello.
	handshakeTimeout = 5 * time.Second

	// drainTimeout bounds how long Close waits for a worker to hang up after
	// its exit request.
	drainTimeout = 5 * time.Second
)

// TCPGroup is a worker pool of separate processes connected over TCP. The
// coordinator listens; each worker dials in and registers its rank.
type TCPGroup struct {
	ln        net.Listener
	registry  *Registry
	welcome   Welcome
	joinMu    sync.Mutex // Serialises Register with its Welcome
	conns     []*Conn
	closeOnce sync.Once
	closeErr  error
}

// Listen opens addr and prepares a group of workers ranks. Workers must
// present session when it is non-empty. delay is handed to every worker in
// its Welcome so the pool agrees on the compare cost.
func Listen(addr string, workers int, session string, delay time.Duration) (*TCPGroup, error) {
	if workers < 1 {
		return nil, fmt.Errorf("cluster: need at least one worker, got %d", workers)
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}
	return &TCPGroup{
		ln:       ln,
		registry: NewRegistry(workers, session),
		welcome: Welcome{
			Workers: workers,
			DelayMs: int(delay / time.Millisecond),
		},
	}, nil
}

// Addr returns the address workers should dial.
func (g *TCPGroup) Addr() string {
	return g.ln.Addr().String()
}

// Accept blocks until every rank has registered or ctx ends. Handshakes run
// concurrently, so a peer that never says Hello only holds up itself.
// Rejected registrations are answered with the reason and do not count.
func (g *TCPGroup) Accept(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() { _ = g.ln.Close() })
	defer stop()

	complete := make(chan struct{})
	acceptErr := make(chan error, 1)
	var (
		once sync.Once
		wg   sync.WaitGroup
	)
	go func() {
		for {
			raw, err := g.ln.Accept()
			if err != nil {
				acceptErr <- err
				return
			}
			wg.Add(1)
			go func() {
				defer wg.Done()
				if g.handshake(ctx, NewConn(raw)) {
					once.Do(func() { close(complete) })
				}
			}()
		}
	}()

	select {
	case <-complete:
		g.conns = g.registry.Members()
		// All ranks are in; nobody else may join.
		_ = g.ln.Close()
		log.Printf("coordinator: ranks %v registered", g.registry.Ranks())
		return nil
	case err := <-acceptErr:
		_ = g.ln.Close()
		wg.Wait()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("waiting for ranks %v: %w", g.registry.Missing(), ctxErr)
		}
		return fmt.Errorf("accept: %w", err)
	}
}

// handshake registers the peer on c and reports whether that made the
// registry complete.
func (g *TCPGroup) handshake(ctx context.Context, c *Conn) bool {
	_ = c.SetDeadline(time.Now().Add(handshakeTimeout))

	var hello Hello
	if err := c.Read(ctx, &hello); err != nil {
		log.Printf("coordinator: bad hello from %s: %v", c.RemoteAddr(), err)
		_ = c.Close()
		return false
	}

	// Registration and Welcome happen together so Accept never hands out a
	// link whose Welcome is still being written.
	g.joinMu.Lock()
	defer g.joinMu.Unlock()

	if err := g.registry.Register(hello.Rank, hello.Session, c); err != nil {
		log.Printf("coordinator: rejected %s: %v", c.RemoteAddr(), err)
		_ = c.Write(ctx, Welcome{Rank: hello.Rank, Error: err.Error()})
		_ = c.Close()
		return false
	}

	welcome := g.welcome
	welcome.Rank = hello.Rank
	if err := c.Write(ctx, welcome); err != nil {
		// The rank stays registered; the first Send to it will fail.
		log.Printf("coordinator: welcome to rank %d failed: %v", hello.Rank, err)
	}
	_ = c.SetDeadline(time.Time{})
	log.Printf("coordinator: worker %d registered from %s (%d/%d)",
		hello.Rank, c.RemoteAddr(), g.registry.Len(), g.welcome.Workers)
	return g.registry.Complete()
}

// Size returns the number of workers.
func (g *TCPGroup) Size() int {
	return g.welcome.Workers
}

// Send delivers req to the worker with the given rank.
func (g *TCPGroup) Send(ctx context.Context, rank int, req Request) error {
	c, err := g.conn(rank)
	if err != nil {
		return err
	}
	if err := c.Write(ctx, req); err != nil {
		return fmt.Errorf("send to worker %d: %w", rank, err)
	}
	return nil
}

// Recv waits for the next response from the worker with the given rank.
func (g *TCPGroup) Recv(ctx context.Context, rank int) (Response, error) {
	c, err := g.conn(rank)
	if err != nil {
		return Response{}, err
	}
	var resp Response
	if err := c.Read(ctx, &resp); err != nil {
		return Response{}, fmt.Errorf("recv from worker %d: %w", rank, err)
	}
	return resp, nil
}

func (g *TCPGroup) conn(rank int) (*Conn, error) {
	if rank < 1 || rank > len(g.conns) {
		return nil, fmt.Errorf("%w: %d", ErrRankOutOfRange, rank)
	}
	c := g.conns[rank-1]
	if c == nil {
		return nil, ErrClosed
	}
	return c, nil
}

// Close half-closes every worker link, waits for each worker to hang up so
// no flushed frame is lost in flight, then closes the links. Workers that do
// not hang up within the drain timeout (or before ctx ends) are cut off.
// After a failed Accept it closes the links of the ranks that did register.
func (g *TCPGroup) Close(ctx context.Context) error {
	g.closeOnce.Do(func() {
		_ = g.ln.Close()
		if g.conns == nil {
			g.joinMu.Lock()
			g.conns = g.registry.Members()
			g.joinMu.Unlock()
		}

		timeout := drainTimeout
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		for i, c := range g.conns {
			if c == nil {
				continue
			}
			wg.Add(1)
			go func(rank int, c *Conn) {
				defer wg.Done()
				err := errors.Join(c.CloseWrite(), c.Drain(timeout), c.Close())
				if err != nil {
					mu.Lock()
					errs = append(errs, fmt.Errorf("close worker %d: %w", rank, err))
					mu.Unlock()
				}
			}(i+1, c)
		}
		wg.Wait()
		g.conns = make([]*Conn, len(g.conns))
		g.closeErr = errors.Join(errs...)
	})
	return g.closeErr
}

var _ Group = (*TCPGroup)(nil)

// TCPEndpoint is a worker's registered link to the coordinator.
type TCPEndpoint struct {
	conn    *Conn
	welcome Welcome
}

// Dial connects to the coordinator at addr and registers hello. A refused
// registration returns an error wrapping ErrRejected.
func Dial(ctx context.Context, addr string, hello Hello) (*TCPEndpoint, error) {
	var d net.Dialer
	raw, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	c := NewConn(raw)

	if err := c.Write(ctx, hello); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("hello: %w", err)
	}
	var welcome Welcome
	if err := c.Read(ctx, &welcome); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("welcome: %w", err)
	}
	if welcome.Error != "" {
		_ = c.Close()
		return nil, fmt.Errorf("%w: %s", ErrRejected, welcome.Error)
	}
	return &TCPEndpoint{conn: c, welcome: welcome}, nil
}

// Register dials the coordinator, retrying up to attempts times with wait in
// between to ride out coordinator startup. Rejections are not retried.
func Register(ctx context.Context, addr string, hello Hello, attempts int, wait time.Duration) (*TCPEndpoint, error) {
	var lastErr error
	for i := 0; i < attempts; i++ {
		ep, err := Dial(ctx, addr, hello)
		if err == nil {
			return ep, nil
		}
		if errors.Is(err, ErrRejected) {
			return nil, err
		}
		lastErr = err
		log.Printf("worker[%d]: register retry %d: %v", hello.Rank, i+1, err)

		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, fmt.Errorf("register with %s: %w", addr, lastErr)
}

// Welcome returns the coordinator's answer to this worker's registration.
func (e *TCPEndpoint) Welcome() Welcome {
	return e.welcome
}

// Recv waits for the next request.
func (e *TCPEndpoint) Recv(ctx context.Context) (Request, error) {
	var req Request
	err := e.conn.Read(ctx, &req)
	return req, err
}

// Send replies to the coordinator.
func (e *TCPEndpoint) Send(ctx context.Context, resp Response) error {
	return e.conn.Write(ctx, resp)
}

// Close hangs up.
func (e *TCPEndpoint) Close() error {
	return e.conn.Close()
}

var _ Endpoint = (*TCPEndpoint)(nil)
