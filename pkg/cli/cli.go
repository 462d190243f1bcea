package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gakoci/pkg/cli/config"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var logger *slog.Logger

	app := newApp(&logger)
	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		return err
	}

	return nil
}

func newApp(logger **slog.Logger) *cli.Command {
	var (
		fileCfg   config.File
		loggerCfg config.Logger
	)

	return &cli.Command{
		Name:    types.ServiceName,
		Usage:   "Run repository hooks for GitHub webhooks and report commit statuses",
		Version: types.Version,
		Flags:   append(fileCfg.Flags(), loggerCfg.Flags()...),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := fileCfg.Apply(c); err != nil {
				return nil, err
			}

			l, err := loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			*logger = l

			slog.SetDefault(l)
			ctx = ctxlog.With(ctx, l)
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmdServe(&fileCfg),
			cmdDecode(),
			cmdHooks(&fileCfg),
		},
	}
}
