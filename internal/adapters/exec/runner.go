// Package exec provides the process-execution adapter for build commands.
package exec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	osexec "os/exec"
	"time"

	"github.com/MyCarrier-DevOps/build-docs/internal/domain"
)

// interruptGrace is how long a child gets to exit after an interrupt before it is killed.
const interruptGrace = 10 * time.Second

// Logger defines the logging interface for the runner.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
}

// Runner implements domain.CommandRunner using os/exec.
type Runner struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger Logger
}

// NewRunner creates a Runner whose children inherit the process's standard streams.
func NewRunner(log Logger) *Runner {
	return NewRunnerWithStreams(os.Stdin, os.Stdout, os.Stderr, log)
}

// NewRunnerWithStreams creates a Runner with explicit standard streams.
// This is useful for testing.
func NewRunnerWithStreams(stdin io.Reader, stdout, stderr io.Writer, log Logger) *Runner {
	return &Runner{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		logger: log,
	}
}

// Run executes cmd and waits for it to finish.
// When ctx is cancelled the child receives an interrupt, then a kill after a grace period.
func (r *Runner) Run(ctx context.Context, cmd domain.BuildCommand) error {
	if len(cmd) == 0 {
		return domain.ErrEmptyCommand
	}

	// G204: running the constructed build command is the purpose of this adapter.
	c := osexec.CommandContext(ctx, cmd.Program(), cmd.Args()...) //nolint:gosec // Intentional subprocess execution
	c.Stdin = r.stdin
	c.Stdout = r.stdout
	c.Stderr = r.stderr
	c.Cancel = func() error {
		return c.Process.Signal(os.Interrupt)
	}
	c.WaitDelay = interruptGrace

	r.logger.Debug(ctx, "running command", map[string]interface{}{
		"program": cmd.Program(),
		"args":    cmd.Args(),
	})

	err := c.Run()
	if err == nil {
		return nil
	}

	var exitErr *osexec.ExitError
	if errors.As(err, &exitErr) {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %s interrupted: %w", domain.ErrCommandFailed, cmd.Program(), ctx.Err())
		}
		return fmt.Errorf("%w: %s exited with status %d", domain.ErrCommandFailed, cmd.Program(), exitErr.ExitCode())
	}

	return fmt.Errorf("%w: %s: %w", domain.ErrCommandFailed, cmd.Program(), err)
}
