package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pushdeploy/pkg/cli/config"
	controller "github.com/m-mizutani/pushdeploy/pkg/controller/http"
	"github.com/m-mizutani/pushdeploy/pkg/metrics"
	"github.com/m-mizutani/pushdeploy/pkg/usecase"
	"github.com/m-mizutani/pushdeploy/pkg/utils/errutil"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var (
		serverCfg     config.Server
		githubCfg     config.GitHub
		deployCfg     config.Deploy
		classifierCfg config.Classifier
		storeCfg      config.Store
		sentryCfg     config.Sentry
		slackCfg      config.Slack
	)

	var flags []cli.Flag
	flags = append(flags, serverCfg.Flags()...)
	flags = append(flags, githubCfg.Flags()...)
	flags = append(flags, deployCfg.Flags()...)
	flags = append(flags, classifierCfg.Flags()...)
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, slackCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting pushdeploy server",
				slog.String("addr", serverCfg.Addr),
				slog.Any("github", githubCfg),
				slog.Any("deploy", deployCfg),
				slog.Any("store", storeCfg),
				slog.Any("sentry", sentryCfg),
				slog.Any("slack", slackCfg),
			)

			flush, err := sentryCfg.Configure()
			if err != nil {
				return err
			}
			defer flush()

			store, err := storeCfg.Configure(ctx, deployCfg.BaseDir)
			if err != nil {
				return goerr.Wrap(err, "failed to set up event store")
			}
			defer func() {
				if err := store.Close(); err != nil {
					errutil.Handle(ctx, "Failed to close event store", err)
				}
			}()

			spawner, output, err := deployCfg.NewSpawner()
			if err != nil {
				return goerr.Wrap(err, "failed to set up deploy script")
			}
			defer output.Close()

			classifier, err := classifierCfg.Build()
			if err != nil {
				return err
			}

			githubClient, err := githubCfg.NewClient()
			if err != nil {
				return goerr.Wrap(err, "failed to create GitHub client")
			}

			if githubCfg.WebhookSecret == "" {
				logger.Warn("Webhook secret is not configured, signature verification is disabled")
			}
			if githubClient == nil {
				logger.Info("GitHub token is not configured, update check is disabled")
			}

			reg := metrics.NewRegistry()

			// Create use cases
			deployer := usecase.NewDeployer(store, spawner,
				usecase.WithHoldUntilExit(deployCfg.HoldUntilExit),
				usecase.WithQueueWhenBusy(deployCfg.Queue),
				usecase.WithNotifier(slackCfg.NewNotifier(githubCfg.RepoDisplayName())),
				usecase.WithDeployMetrics(reg),
			)

			poller, err := usecase.NewPoller(githubClient, store, githubCfg.Repository,
				usecase.WithPollBranch(githubCfg.Branch),
				usecase.WithPollTimeout(githubCfg.PollTimeout),
				usecase.WithPollMetrics(reg),
			)
			if err != nil {
				return err
			}

			webhookUC := usecase.NewWebhook(githubCfg.WebhookSecret, classifier, deployer, store,
				usecase.WithStrictPushTimestamp(deployCfg.StrictPushTimestamp),
				usecase.WithWebhookMetrics(reg),
			)

			dashboardUC := usecase.NewDashboard(store, githubCfg.RepoDisplayName(), deployCfg.OutputLogPath(),
				usecase.WithUpstreamChecker(poller),
			)

			// Create HTTP server with options
			server, err := controller.NewServer(
				ctx,
				webhookUC,
				controller.WithAddr(serverCfg.Addr),
				controller.WithMaxBodyBytes(serverCfg.MaxBodyBytes),
				controller.WithDeployUseCase(deployer),
				controller.WithDashboardUseCase(dashboardUC),
				controller.WithMetrics(reg),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					serverErr <- err
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-serverErr:
				return goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), serverCfg.ShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			// Deployments are never cancelled; give a running one the rest of
			// the grace period.
			if err := deployer.WaitIdle(shutdownCtx); err != nil {
				logger.Warn("Deployment still running at shutdown", "error", err)
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
