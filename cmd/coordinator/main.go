// Package main implements the sort coordinator, rank 0 of the pool. It
// generates a random array, sorts it with odd-even transposition sort on a
// pool of workers and reports how long that took compared with doing every
// comparison in one process.
//
// Usage:
//
//	coordinator ARRAY_SIZE [--delay MS] [-v LEVEL] [--log] [--min V] [--max V]
//	            [--procs N] [--topology spawn|static|local] ...
//
// Topologies:
//   - spawn: start N-1 worker processes and wait for them to register
//   - static: listen on --listen and wait for N-1 externally started workers
//   - local: run the workers as goroutines
//
// Exit codes:
//   - 0: sorted, or help requested
//   - 1: invalid arguments, workers unavailable, or sort failure
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slices"

	"github.com/dreamware/oddeven/internal/cluster"
	"github.com/dreamware/oddeven/internal/config"
	"github.com/dreamware/oddeven/internal/coordinator"
	"github.com/dreamware/oddeven/internal/dataset"
	"github.com/dreamware/oddeven/internal/stats"
	"github.com/dreamware/oddeven/internal/tracing"
	"github.com/dreamware/oddeven/internal/worker"
)

// version is stamped into trace resources.
var version = "dev"

const (
	// spawnAcceptTimeout bounds how long spawned workers get to register.
	spawnAcceptTimeout = 30 * time.Second
	shutdownTimeout    = 10 * time.Second
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr, os.Getenv))
}

// pool is an open worker group plus the processes behind it, if the
// coordinator started them.
type pool struct {
	group cluster.Group
	procs *cluster.Procs
}

func run(args []string, stdout, stderr io.Writer, getenv func(string) string) int {
	cfg, err := config.Parse(args, getenv)
	if errors.Is(err, config.ErrHelp) {
		config.Usage(stdout)
		return 0
	}
	if err != nil {
		return invalidArgs(stdout, err)
	}
	schedule, err := coordinator.ParsePolicy(cfg.Policy)
	if err != nil {
		return invalidArgs(stdout, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TraceFile != "" {
		shutdown, err := tracing.Init("oddeven-coordinator", version, cfg.TraceFile)
		if err != nil {
			log.Printf("coordinator: tracing disabled: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Printf("coordinator: trace flush: %v", err)
				}
			}()
		}
	}

	p, err := openPool(ctx, cfg, stderr)
	if err != nil {
		if errors.Is(err, config.ErrInvalidArgs) {
			return invalidArgs(stdout, err)
		}
		log.Printf("coordinator: %v", err)
		return 1
	}

	sorter, err := coordinator.NewSorter(p.group,
		coordinator.WithScheduler(schedule),
		coordinator.WithVerbose(cfg.Verbose),
		coordinator.WithLogger(log.New(stdout, "", 0)),
	)
	if err != nil {
		log.Printf("coordinator: %v", err)
		p.abort()
		return 1
	}

	arr := dataset.Generate(cfg.ArraySize, cfg.Min, cfg.Max, cfg.Seed)
	fmt.Fprintf(stdout, "This is the unsorted array: %s\n", join(arr, " "))

	start := time.Now()
	res, err := sorter.Sort(ctx, arr)
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		log.Printf("coordinator: sort failed: %v", err)
		p.abort()
		return 1
	}
	if !slices.IsSorted(arr) {
		log.Printf("coordinator: result is not sorted")
	}

	workers := cfg.Workers()
	single := int64(cfg.DelayMs) * int64(res.Comparisons)
	multi := single / int64(workers)

	fmt.Fprintln(stdout)
	fmt.Fprintf(stdout, "Result array: %s\n", join(arr, ", "))
	fmt.Fprintf(stdout, "Performed %d comparisons.\n", res.Comparisons)
	fmt.Fprintf(stdout, "Approx single process time:\t%d ms\n", single)
	fmt.Fprintf(stdout, "Approx multiprocess time:\t%d ms\n", multi)
	fmt.Fprintf(stdout, "Sorting time:\t%d ms.\n", elapsed)
	fmt.Fprintf(stdout, "Multiprocess overhead time:\t%d ms.\n", elapsed-multi)

	code := 0
	if cfg.Log {
		rec := stats.NewFileRecorder(cfg.LogFile)
		err := rec.Append(stats.Record{
			ArraySize:      cfg.ArraySize,
			Workers:        workers,
			CompareDelayMs: cfg.DelayMs,
			Comparisons:    res.Comparisons,
			ElapsedMs:      elapsed,
		})
		if err != nil {
			log.Printf("coordinator: %v", err)
			code = 1
		}
	}

	fmt.Fprint(stdout, "Exiting...")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := sorter.Shutdown(sctx); err != nil {
		log.Printf("coordinator: shutdown: %v", err)
		code = 1
	}
	if p.procs != nil {
		if err := p.procs.Wait(); err != nil {
			log.Printf("coordinator: %v", err)
			code = 1
		}
	}
	fmt.Fprintln(stdout, " success.")
	return code
}

// openPool builds the worker group for cfg.Topology and waits until every
// worker is ready. Errors raised before any worker was contacted wrap
// config.ErrInvalidArgs.
func openPool(ctx context.Context, cfg *config.Config, stderr io.Writer) (*pool, error) {
	workers := cfg.Workers()
	delay := time.Duration(cfg.DelayMs) * time.Millisecond

	switch cfg.Topology {
	case config.TopologyLocal:
		return &pool{group: cluster.NewLocalGroup(ctx, workers, worker.ServeFunc(delay))}, nil

	case config.TopologyStatic:
		g, err := cluster.Listen(cfg.Listen, workers, cfg.Session, delay)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidArgs, err)
		}
		log.Printf("coordinator: waiting for %d workers on %s", workers, g.Addr())
		if err := g.Accept(ctx); err != nil {
			_ = g.Close(ctx)
			return nil, err
		}
		return &pool{group: g}, nil

	case config.TopologySpawn:
		bin, err := workerBin(cfg.WorkerBin)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidArgs, err)
		}
		session := cfg.Session
		if session == "" {
			session = uuid.NewString()
		}
		g, err := cluster.Listen("127.0.0.1:0", workers, session, delay)
		if err != nil {
			return nil, err
		}
		procs, err := cluster.SpawnWorkers(ctx, bin, g.Addr(), session, workers, stderr, stderr)
		if err != nil {
			_ = g.Close(ctx)
			return nil, fmt.Errorf("%w: %v", config.ErrInvalidArgs, err)
		}

		actx, cancel := context.WithTimeout(ctx, spawnAcceptTimeout)
		defer cancel()
		if err := g.Accept(actx); err != nil {
			procs.Kill()
			_ = procs.Wait()
			_ = g.Close(ctx)
			return nil, err
		}
		return &pool{group: g, procs: procs}, nil
	}
	return nil, fmt.Errorf("%w: unknown topology %q", config.ErrInvalidArgs, cfg.Topology)
}

// abort tears the pool down after a failure without waiting for workers to
// finish cleanly.
func (p *pool) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for rank := 1; rank <= p.group.Size(); rank++ {
		_ = p.group.Send(ctx, rank, cluster.Exit())
	}
	_ = p.group.Close(ctx)
	if p.procs != nil {
		p.procs.Kill()
		_ = p.procs.Wait()
	}
}

// workerBin resolves the worker binary: the configured path, or "worker"
// next to this executable.
func workerBin(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("worker binary: %w", err)
		}
		return configured, nil
	}
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("locate worker binary: %w", err)
	}
	bin := filepath.Join(filepath.Dir(exe), "worker")
	if _, err := os.Stat(bin); err != nil {
		return "", fmt.Errorf("worker binary: %w (set --worker-bin)", err)
	}
	return bin, nil
}

func invalidArgs(w io.Writer, err error) int {
	reason := strings.TrimPrefix(err.Error(), config.ErrInvalidArgs.Error()+": ")
	fmt.Fprintf(w, "Invalid arguments! %s\n", reason)
	config.Usage(w)
	return 1
}

func join(arr []int, sep string) string {
	parts := make([]string, len(arr))
	for i, v := range arr {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
