package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/cli/config"
	"github.com/m-mizutani/gakoci/pkg/domain/model"
	"github.com/m-mizutani/gakoci/pkg/infra/hookdir"
	"github.com/urfave/cli/v3"
)

func cmdHooks(fileCfg *config.File) *cli.Command {
	var (
		hooksCfg config.Hooks
		event    string
		owner    string
		repo     string
	)

	flags := append(hooksCfg.Flags(),
		&cli.StringFlag{
			Name:        "event",
			Aliases:     []string{"e"},
			Usage:       "Event kind (push, pull_request)",
			Value:       "push",
			Destination: &event,
		},
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Repository owner",
			Destination: &owner,
		},
		&cli.StringFlag{
			Name:        "repo",
			Usage:       "Repository name",
			Destination: &repo,
		},
	)

	return &cli.Command{
		Name:  "hooks",
		Usage: "List the hooks that would run for an event",
		Flags: flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, fileCfg.Apply(c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if hooksCfg.Dir == "" {
				return goerr.New("hooks-dir is required")
			}
			if owner == "" || repo == "" {
				return goerr.New("owner and repo are required")
			}

			kind := model.ParseEventKind(event)
			if kind == model.EventKindOther {
				return goerr.New("event must be push or pull_request", goerr.V("event", event))
			}

			hooks, err := hookdir.Find(hooksCfg.Dir, kind, owner, repo)
			if err != nil {
				return err
			}

			w := c.Root().Writer
			if len(hooks) == 0 {
				_, _ = color.New(color.FgYellow).Fprintf(w, "no hooks match %s\n", model.HookPrefix(kind, owner, repo))
				return nil
			}

			name := color.New(color.FgGreen, color.Bold)
			for _, h := range hooks {
				_, _ = name.Fprint(w, h.Name)
				if h.RequiresCheckout {
					_, _ = color.New(color.FgCyan).Fprint(w, " (checkout)")
				}
				_, _ = fmt.Fprintln(w)
			}
			return nil
		},
	}
}
