// Package cluster provides the message-passing layer between the sort
// coordinator (rank 0) and its worker pool (ranks 1..W): the wire protocol,
// rank registration, and the transports that carry it.
//
// # Overview
//
// Processes share no memory. The coordinator addresses each worker by rank
// and exchanges small fixed-shape messages with it:
//
//	coordinator                       worker r
//	    │  Request{op:"compare",a,b}     │
//	    ├───────────────────────────────►│
//	    │        Response{min,max}       │
//	    │◄───────────────────────────────┤
//	    │  Request{op:"exit"}            │
//	    ├───────────────────────────────►│  (no reply, worker stops)
//
// Compare work and termination share one link and one tag namespace; the
// Op field is the single dispatch point a worker switches on.
//
// # Core Types
//
// Group: the coordinator's side of the pool
//   - Send(ctx, rank, req) and Recv(ctx, rank) address one worker
//   - Close(ctx) drains every link after the exit requests went out
//
// Endpoint: a worker's side of its link
//   - Recv(ctx) waits for the next request
//   - Send(ctx, resp) replies
//
// Registry: rank bookkeeping for process topologies
//   - Ranks must be in 1..W, unique, and carry the group's session id
//
// # Topologies
//
// The pool shape is configuration, not code:
//
// static: a fixed world of N processes started by the operator. The
// coordinator listens (Listen), workers dial in with their rank (Register),
// and Accept returns once every rank 1..N-1 has joined.
//
// spawn: the coordinator listens on an ephemeral loopback port, picks a
// session id, and starts the W workers itself (SpawnWorkers). The workers
// then register exactly as in the static topology.
//
// local: the W workers run as goroutines linked by in-memory mailboxes
// (NewLocalGroup). Messages are still copied values, so the ownership rules
// are the same as across processes.
//
// # Wire Format
//
// TCP links carry newline-delimited JSON frames (Conn). A session starts with
// Hello from the worker and Welcome from the coordinator; Welcome carries the
// pool size and the compare delay so all workers agree on it. A rejected
// registration gets a Welcome with Error set and the link is closed.
//
// # Failure Handling
//
// There is no fault tolerance. Send and Recv block until the peer acts or the
// context is cancelled; a worker that hangs stalls the coordinator forever.
// A worker that dies surfaces as an I/O error on its link, which callers
// treat as fatal. Registration dialing is the only operation that retries.
//
// # Shutdown
//
// Exit is fire-and-forget: workers do not acknowledge it. TCPGroup.Close
// half-closes each link and waits for the worker to hang up, so a coordinator
// that returns from Close has not left frames undelivered.
package cluster
