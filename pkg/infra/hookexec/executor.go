package hookexec

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
)

const (
	// StatusFile is written by a hook to choose its own status description
	StatusFile = "status.txt"

	DefaultTimeout = 10 * time.Minute

	// maxOutputSize caps captured output; the rest is discarded
	maxOutputSize = 1 << 20

	// waitDelay bounds how long Wait keeps draining pipes after the process is killed
	waitDelay = 5 * time.Second
)

// config holds internal executor configuration
type config struct {
	timeout time.Duration
	env     []string
}

// Option is a functional option for Executor configuration
type Option func(*config)

// WithTimeout sets the per-hook execution bound
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithEnv adds environment variables passed to every hook
func WithEnv(env ...string) Option {
	return func(c *config) {
		c.env = append(c.env, env...)
	}
}

// Executor runs hook programs
type Executor struct {
	cfg config
}

// New creates an Executor
func New(opts ...Option) *Executor {
	cfg := config{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Executor{cfg: cfg}
}

// Run executes hook in workDir. A non-zero exit is returned as a result, not an error.
// Only a program that cannot be started yields types.ErrExecutionFault.
func (e *Executor) Run(ctx context.Context, hook *model.HookDescriptor, event *model.EventInfo, workDir string) (*model.HookResult, error) {
	logger := ctxlog.From(ctx)

	statusPath := filepath.Join(workDir, StatusFile)
	if err := os.Remove(statusPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, goerr.Wrap(types.ErrExecutionFault, "failed to remove stale status file",
			goerr.V("path", statusPath), goerr.V("cause", err.Error()))
	}

	runCtx, cancel := context.WithTimeout(ctx, e.cfg.timeout)
	defer cancel()

	output := &limitedBuffer{limit: maxOutputSize}
	cmd := exec.CommandContext(runCtx, hook.Path)
	cmd.Dir = workDir
	cmd.Stdout = output
	cmd.Stderr = output
	cmd.WaitDelay = waitDelay
	cmd.Env = append(os.Environ(), e.cfg.env...)
	cmd.Env = append(cmd.Env, event.Env()...)
	cmd.Env = append(cmd.Env, "GAKOCI_WORKDIR="+workDir, "GAKOCI_HOOK="+hook.Name)

	logger.Debug("Starting hook", "hook", hook.Name, "work_dir", workDir)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return nil, goerr.Wrap(types.ErrExecutionFault, "failed to start hook",
			goerr.V("hook", hook.Name), goerr.V("path", hook.Path), goerr.V("cause", err.Error()))
	}
	waitErr := cmd.Wait()

	result := &model.HookResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stdout:   output.String(),
		Duration: time.Since(start),
	}

	switch {
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		result.TimedOut = true
		result.ExitCode = -1
		logger.Warn("Hook timed out", "hook", hook.Name, "timeout", e.cfg.timeout)
		return result, nil
	case waitErr != nil && !isExitError(waitErr):
		// Killed by cancellation of ctx or failed to drain output
		logger.Warn("Hook did not exit cleanly", "hook", hook.Name, "error", waitErr)
		if result.ExitCode == 0 {
			result.ExitCode = -1
		}
	}

	if data, err := os.ReadFile(statusPath); err == nil {
		desc := string(data)
		result.DescriptionOverride = &desc
	} else if !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Failed to read status file", "path", statusPath, "error", err)
	}

	logger.Info("Hook finished",
		"hook", hook.Name,
		"exit_code", result.ExitCode,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// limitedBuffer keeps the first limit bytes written to it.
// Stdout and Stderr share one buffer, so writes are serialized.
type limitedBuffer struct {
	mu    sync.Mutex
	buf   bytes.Buffer
	limit int
}

func (b *limitedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if remain := b.limit - b.buf.Len(); remain > 0 {
		if len(p) > remain {
			b.buf.Write(p[:remain])
		} else {
			b.buf.Write(p)
		}
	}
	// Report the full length so the child never sees a short write
	return len(p), nil
}

func (b *limitedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
