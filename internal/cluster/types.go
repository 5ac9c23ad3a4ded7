package cluster

import (
	"errors"
	"time"
)

// Environment variables a spawned or externally started worker reads.
const (
	EnvCoordinatorAddr = "COORDINATOR_ADDR"
	EnvWorkerRank      = "WORKER_RANK"
	EnvSessionID       = "SESSION_ID"
)

var (
	// ErrClosed is returned by operations on a group after Close.
	ErrClosed = errors.New("cluster: group closed")
	// ErrRankOutOfRange is returned for ranks outside 1..workers.
	ErrRankOutOfRange = errors.New("cluster: rank out of range")
	// ErrDuplicateRank is returned when a rank registers twice.
	ErrDuplicateRank = errors.New("cluster: rank already registered")
	// ErrSessionMismatch is returned when a worker presents the wrong session id.
	ErrSessionMismatch = errors.New("cluster: session mismatch")
	// ErrRejected is returned to a worker whose registration was refused.
	ErrRejected = errors.New("cluster: registration rejected")
)

// Op tags a request so workers can tell compare work from termination on
// the same link.
type Op string

const (
	OpCompare Op = "compare"
	OpExit    Op = "exit"
)

// Request is the coordinator-to-worker message. A and B are only meaningful
// for OpCompare.
type Request struct {
	Op Op  `json:"op"`
	A  int `json:"a,omitempty"`
	B  int `json:"b,omitempty"`
}

// Compare builds a compare-exchange request for the values a and b.
func Compare(a, b int) Request {
	return Request{Op: OpCompare, A: a, B: b}
}

// Exit builds the termination request.
func Exit() Request {
	return Request{Op: OpExit}
}

// Response carries a compared pair back, smaller value first.
type Response struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Hello is the first frame a worker sends after connecting.
type Hello struct {
	Rank    int    `json:"rank"`
	Session string `json:"session,omitempty"`
}

// Welcome answers a Hello. A non-empty Error means the registration was
// refused and the coordinator will close the link.
type Welcome struct {
	Rank    int    `json:"rank"`
	Workers int    `json:"workers"`
	DelayMs int    `json:"delay_ms"`
	Error   string `json:"error,omitempty"`
}

// Delay returns the artificial compare cost workers must emulate.
func (w Welcome) Delay() time.Duration {
	return time.Duration(w.DelayMs) * time.Millisecond
}
