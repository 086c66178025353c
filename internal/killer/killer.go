// Package killer sends termination signals to processes and reports the
// result as a display-ready outcome.
package killer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

var (
	// ErrProcessNotFound means the PID does not exist (any more)
	ErrProcessNotFound = errors.New("process not found")
	// ErrPermission means the caller may not signal or inspect the process
	ErrPermission = errors.New("permission denied")
	// ErrStillRunning is returned by WaitForExit when the process outlives the timeout
	ErrStillRunning = errors.New("process still running")
)

const unknownProcess = "unknown"

// Outcome is the result of one termination attempt
type Outcome struct {
	Success bool   `json:"success" yaml:"success"`
	Message string `json:"message" yaml:"message"`
	PID     int    `json:"pid" yaml:"pid"`
	Process string `json:"process,omitempty" yaml:"process,omitempty"`
}

// ProcessTable is the view of the OS process table the terminator needs.
// Errors should wrap ErrProcessNotFound or ErrPermission where they apply.
type ProcessTable interface {
	Exists(ctx context.Context, pid int) (bool, error)
	Name(ctx context.Context, pid int) (string, error)
	Signal(ctx context.Context, pid int, m Method) error
}

// Terminator kills processes by PID
type Terminator struct {
	procs ProcessTable
}

// New returns a terminator backed by the OS process table
func New() *Terminator {
	return &Terminator{procs: osProcessTable{}}
}

// NewWithTable returns a terminator backed by procs
func NewWithTable(procs ProcessTable) *Terminator {
	return &Terminator{procs: procs}
}

// Terminate sends a single termination signal to pid. It never returns an
// error: every failure is reported in the outcome.
func (t *Terminator) Terminate(ctx context.Context, pid int, m Method) Outcome {
	if pid <= 0 {
		return Outcome{Message: "Invalid process ID", PID: pid}
	}

	exists, err := t.procs.Exists(ctx, pid)
	if err != nil {
		return failure(pid, err)
	}
	if !exists {
		return failure(pid, ErrProcessNotFound)
	}

	name, err := t.procs.Name(ctx, pid)
	if err != nil {
		if errors.Is(err, ErrProcessNotFound) {
			return failure(pid, err)
		}
		log.Debug().Err(err).Int("pid", pid).Msg("could not resolve process name")
		name = unknownProcess
	}
	if name == "" {
		name = unknownProcess
	}

	if err := t.procs.Signal(ctx, pid, m); err != nil {
		out := failure(pid, err)
		out.Process = name
		return out
	}

	log.Info().Int("pid", pid).Str("process", name).Stringer("signal", m).Msg("sent termination signal")

	return Outcome{
		Success: true,
		Message: fmt.Sprintf("Successfully killed %s (PID: %d)", name, pid),
		PID:     pid,
		Process: name,
	}
}

func failure(pid int, err error) Outcome {
	var msg string
	switch {
	case errors.Is(err, ErrProcessNotFound):
		msg = fmt.Sprintf("Process %d not found", pid)
	case errors.Is(err, ErrPermission):
		msg = fmt.Sprintf("Permission denied to kill process %d", pid)
	default:
		msg = fmt.Sprintf("Error killing process %d: %v", pid, err)
	}

	log.Warn().Err(err).Int("pid", pid).Msg("kill failed")
	return Outcome{Message: msg, PID: pid}
}

// WaitForExit polls until pid is gone or timeout elapses. It only observes:
// no signal is sent.
func (t *Terminator) WaitForExit(ctx context.Context, pid int, timeout time.Duration) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = 500 * time.Millisecond
	b.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		exists, err := t.procs.Exists(ctx, pid)
		if err != nil {
			return backoff.Permanent(err)
		}
		if exists {
			return ErrStillRunning
		}
		return nil
	}, backoff.WithContext(b, ctx))
}
