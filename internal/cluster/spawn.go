package cluster

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
)

// Procs is a dynamically spawned group of worker processes.
type Procs struct {
	cmds []*exec.Cmd
}

// SpawnWorkers starts workers copies of the worker binary bin, telling each
// its rank, the coordinator address and the session id through the
// environment. Worker output is forwarded to stdout and stderr. If any start
// fails the already started workers are killed.
func SpawnWorkers(ctx context.Context, bin, addr, session string, workers int, stdout, stderr io.Writer) (*Procs, error) {
	p := &Procs{cmds: make([]*exec.Cmd, 0, workers)}
	for rank := 1; rank <= workers; rank++ {
		cmd := exec.CommandContext(ctx, bin)
		cmd.Env = append(os.Environ(),
			EnvCoordinatorAddr+"="+addr,
			EnvWorkerRank+"="+strconv.Itoa(rank),
			EnvSessionID+"="+session,
		)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
		if err := cmd.Start(); err != nil {
			p.Kill()
			_ = p.Wait()
			return nil, fmt.Errorf("start worker %d (%s): %w", rank, bin, err)
		}
		p.cmds = append(p.cmds, cmd)
	}
	return p, nil
}

// Len returns the number of started workers.
func (p *Procs) Len() int {
	return len(p.cmds)
}

// Wait reaps every worker and reports the ones that did not exit cleanly.
func (p *Procs) Wait() error {
	var errs []error
	for i, cmd := range p.cmds {
		if err := cmd.Wait(); err != nil {
			errs = append(errs, fmt.Errorf("worker %d: %w", i+1, err))
		}
	}
	return errors.Join(errs...)
}

// Kill stops every worker that is still running.
func (p *Procs) Kill() {
	for _, cmd := range p.cmds {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}
}
