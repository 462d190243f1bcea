package cli

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gakoci/pkg/cli/config"
	githubcontroller "github.com/m-mizutani/gakoci/pkg/controller/github"
	controller "github.com/m-mizutani/gakoci/pkg/controller/http"
	"github.com/m-mizutani/gakoci/pkg/domain/types"
	"github.com/m-mizutani/gakoci/pkg/infra/deliverylog"
	gitinfra "github.com/m-mizutani/gakoci/pkg/infra/git"
	"github.com/m-mizutani/gakoci/pkg/infra/hookdir"
	"github.com/m-mizutani/gakoci/pkg/usecase"
	"github.com/m-mizutani/gakoci/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

const (
	httpShutdownTimeout = 10 * time.Second
	sentryFlushTimeout  = 2 * time.Second
)

func cmdServe(fileCfg *config.File) *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
		hooksCfg  config.Hooks
		sentryCfg config.Sentry
	)

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, hooksCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			return ctx, fileCfg.Apply(c)
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			if err := hooksCfg.Validate(); err != nil {
				return err
			}
			if err := hookdir.Check(hooksCfg.Dir); err != nil {
				return goerr.Wrap(err, "hooks directory is not usable", goerr.V("dir", hooksCfg.Dir))
			}

			logger.Info("Starting gakoci server",
				slog.Any("server", &serverCfg),
				slog.Any("github", &githubCfg),
				slog.Any("hooks", &hooksCfg),
			)

			enabled, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			if enabled {
				defer errutil.Flush(sentryFlushTimeout)
			}

			client, err := githubCfg.NewClient(ctx)
			if err != nil {
				return err
			}

			dispatcher, err := usecase.NewDispatcher(usecase.Dependencies{
				Decoder: githubcontroller.Decoder{},
				Locator: hookdir.New(hooksCfg.Dir),
				Checkout: gitinfra.NewCoordinator(hooksCfg.WorkDir,
					gitinfra.WithBaseURL(githubCfg.GitURL),
					gitinfra.WithTokenSource(client),
				),
				Runner:   hooksCfg.Executor(),
				Reporter: client,
				Store:    deliverylog.New(),
			}, usecase.WithStatusContextPrefix(types.ServiceName))
			if err != nil {
				return goerr.Wrap(err, "failed to create dispatcher")
			}

			if githubCfg.WebhookSecret == "" {
				logger.Warn("Webhook signature verification is disabled")
			}

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				dispatcher,
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(githubCfg.WebhookSecret),
				controller.WithAdminToken(serverCfg.AdminToken),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			listener, err := net.Listen("tcp", serverCfg.Addr)
			if err != nil {
				return goerr.Wrap(err, "failed to listen", goerr.V("addr", serverCfg.Addr))
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", listener.Addr().String()))
				if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case <-dispatcher.ShutdownRequested():
				logger.Info("Shutdown requested, shutting down...")
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed")
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), httpShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				logger.Warn("HTTP server did not shut down gracefully", slog.Any("error", err))
			}

			graceCtx, cancelGrace := context.WithTimeout(context.WithoutCancel(ctx), serverCfg.ShutdownGrace)
			defer cancelGrace()

			if err := dispatcher.Shutdown(graceCtx); err != nil {
				logger.Warn("Deliveries did not finish within the grace period", slog.Any("error", err))
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
