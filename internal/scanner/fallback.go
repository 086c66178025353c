package scanner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"
)

// FallbackTimeout bounds the external diagnostic command
const FallbackTimeout = 5 * time.Second

// ErrNoFallback is returned when the platform has no diagnostic command
var ErrNoFallback = errors.New("no fallback command for this platform")

// runFunc executes a command and returns its stdout
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// parseFunc turns diagnostic command output into ports
type parseFunc func(output []byte, includeSystem bool) []Port

// commandFallback runs an OS diagnostic command and parses its table output
type commandFallback struct {
	name    string
	args    []string
	timeout time.Duration
	// okExitCodes are non-zero exit codes that still mean "no results"
	okExitCodes []int
	parse       parseFunc
	run         runFunc
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Scan runs the command and parses its output. A missing command, a timeout
// or a failing exit code yields an empty result and a warning.
func (f *commandFallback) Scan(ctx context.Context, includeSystem bool) []Port {
	if f == nil || f.name == "" {
		log.Warn().Err(ErrNoFallback).Msg("fallback port scanning failed")
		return []Port{}
	}

	output, err := f.output(ctx)
	if err != nil {
		log.Warn().Err(err).Str("command", f.name).Msg("fallback port scanning failed")
		return []Port{}
	}

	ports := f.parse(output, includeSystem)
	if ports == nil {
		ports = []Port{}
	}
	return ports
}

func (f *commandFallback) output(ctx context.Context) ([]byte, error) {
	timeout := f.timeout
	if timeout <= 0 {
		timeout = FallbackTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	run := f.run
	if run == nil {
		run = runCommand
	}

	output, err := run(ctx, f.name, f.args...)
	if err == nil {
		return output, nil
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("%s timed out after %s: %w", f.name, timeout, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		for _, code := range f.okExitCodes {
			if exitErr.ExitCode() == code {
				return nil, nil
			}
		}
	}
	return nil, fmt.Errorf("%s failed: %w", f.name, err)
}
