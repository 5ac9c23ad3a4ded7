// Package main implements the sort worker: one of ranks 1..W in a pool that
// performs compare-exchange operations for the coordinator.
//
// The worker is stateless. It dials the coordinator, registers its rank,
// then answers Compare requests until it receives Exit:
//
//	┌──────────────────────────────────────┐
//	│               Worker                  │
//	├──────────────────────────────────────┤
//	│  1. dial COORDINATOR_ADDR (retries)  │
//	│  2. Hello{rank, session} → Welcome   │
//	│  3. loop: Compare(a,b) → {min,max}   │
//	│  4. Exit → close link, exit 0        │
//	└──────────────────────────────────────┘
//
// The compare delay comes from the coordinator's Welcome, so every worker in
// a pool simulates the same cost.
//
// Configuration:
//   - COORDINATOR_ADDR: host:port of the coordinator (required)
//   - WORKER_RANK: rank in 1..W (required)
//   - SESSION_ID: session the coordinator expects (optional)
//
// In the spawn topology the coordinator sets all three. In the static
// topology start one worker per rank by hand:
//
//	COORDINATOR_ADDR=10.0.0.1:7070 WORKER_RANK=1 ./worker
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dreamware/oddeven/internal/cluster"
	"github.com/dreamware/oddeven/internal/worker"
)

// logFatal is a variable to allow mocking log.Fatal in tests.
var logFatal = log.Fatalf

const (
	registerAttempts = 10
	registerWait     = 400 * time.Millisecond
)

func main() {
	coord := mustGetenv(cluster.EnvCoordinatorAddr)
	rank, err := strconv.Atoi(mustGetenv(cluster.EnvWorkerRank))
	if err != nil || rank < 1 {
		logFatal("invalid %s %q", cluster.EnvWorkerRank, os.Getenv(cluster.EnvWorkerRank))
		return
	}
	session := getenv(cluster.EnvSessionID, "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, coord, rank, session); err != nil {
		logFatal("worker[%d]: %v", rank, err)
	}
}

// run registers with the coordinator at addr and serves until told to exit.
func run(ctx context.Context, addr string, rank int, session string) error {
	ep, err := cluster.Register(ctx, addr, cluster.Hello{Rank: rank, Session: session}, registerAttempts, registerWait)
	if err != nil {
		return err
	}
	defer ep.Close()

	welcome := ep.Welcome()
	log.Printf("worker[%d]: registered with coordinator @ %s (pool of %d, delay %s)",
		rank, addr, welcome.Workers, welcome.Delay())

	w := worker.New(rank, welcome.Delay())
	return w.Serve(ctx, ep)
}

// getenv returns the environment variable k, or def when it is unset or
// empty.
func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// mustGetenv returns the environment variable k or calls logFatal.
func mustGetenv(k string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	logFatal("missing env %s", k)
	return ""
}
