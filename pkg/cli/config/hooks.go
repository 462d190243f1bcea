package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/gakoci/pkg/infra/hookexec"
)

// Hooks holds hook discovery and execution configuration
type Hooks struct {
	Dir     string
	WorkDir string
	Timeout time.Duration
}

// Flags returns CLI flags for hooks configuration
func (c *Hooks) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "hooks-dir",
			Usage:       "Directory holding <event>-<owner>-<repo>[suffix] hook programs",
			Destination: &c.Dir,
			Sources:     cli.EnvVars("GAKOCI_HOOKS_DIR"),
		},
		&cli.StringFlag{
			Name:        "work-dir",
			Usage:       "Root of the per-repository working directories",
			Value:       filepath.Join(os.TempDir(), "gakoci"),
			Destination: &c.WorkDir,
			Sources:     cli.EnvVars("GAKOCI_WORK_DIR"),
		},
		&cli.DurationFlag{
			Name:        "hook-timeout",
			Usage:       "Maximum run time of a single hook",
			Value:       hookexec.DefaultTimeout,
			Destination: &c.Timeout,
			Sources:     cli.EnvVars("GAKOCI_HOOK_TIMEOUT"),
		},
	}
}

// Validate checks values that have no usable default
func (c *Hooks) Validate() error {
	if c.Dir == "" {
		return goerr.New("hooks-dir is required")
	}
	if c.WorkDir == "" {
		return goerr.New("work-dir is required")
	}
	if c.Timeout <= 0 {
		return goerr.New("hook-timeout must be positive", goerr.V("timeout", c.Timeout))
	}
	return nil
}

// Executor builds the hook executor
func (c *Hooks) Executor() *hookexec.Executor {
	return hookexec.New(hookexec.WithTimeout(c.Timeout))
}
