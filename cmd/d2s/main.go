// Command d2s is the operator CLI: run one sync by hand and inspect or reset
// the stored change cursor.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"basegraph.app/dropbox2slack/common/id"
	"basegraph.app/dropbox2slack/common/logger"
	"basegraph.app/dropbox2slack/core/config"
	"basegraph.app/dropbox2slack/internal/cursor"
	"basegraph.app/dropbox2slack/internal/service"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "d2s",
		Short:         "Relay Dropbox file changes to Slack channels",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSyncCmd(), newCursorCmd())
	return root
}

// app holds what every subcommand needs once config is loaded.
type app struct {
	cfg      config.Config
	services *service.Services
	close    func()
}

func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg)

	if err := id.Init(cfg.NodeID); err != nil {
		return nil, fmt.Errorf("initializing id generator: %w", err)
	}

	store, closeStore, err := cursor.Open(ctx, cfg.Cursor)
	if err != nil {
		return nil, fmt.Errorf("opening cursor store: %w", err)
	}

	return &app{
		cfg: cfg,
		services: service.NewServices(service.ServicesConfig{
			Config: cfg,
			Store:  store,
			Logger: slog.Default(),
		}),
		close: closeStore,
	}, nil
}

// runE adapts a subcommand body to cobra, loading the app and reporting
// errors through slog.
func runE(fn func(ctx context.Context, cmd *cobra.Command, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			slog.ErrorContext(ctx, "startup failed", "error", err)
			return err
		}
		defer a.close()

		if err := fn(ctx, cmd, a); err != nil {
			slog.ErrorContext(ctx, cmd.CommandPath()+" failed", "error", err)
			return err
		}
		return nil
	}
}

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch pending Dropbox changes and post them to Slack once",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, cmd *cobra.Command, a *app) error {
			result, err := a.services.Sync().Run(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(),
				"run %d: %d entries, %d files, %d messages sent, %d fallbacks, %d failed\n",
				result.RunID, result.Entries, result.Files,
				result.Dispatch.Sent, result.Dispatch.Fallbacks, result.Dispatch.Failed,
			)
			return nil
		}),
	}
}

func newCursorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cursor",
		Short: "Inspect or reset the stored change cursor",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Print the stored cursor",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, cmd *cobra.Command, a *app) error {
			value, err := a.services.Cursors().Get(ctx, cursor.Key)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		}),
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Skip all pending changes by storing the latest cursor for the target dir",
		Args:  cobra.NoArgs,
		RunE: runE(func(ctx context.Context, cmd *cobra.Command, a *app) error {
			latest, err := a.services.Dropbox().GetLatestCursor(ctx, a.cfg.Dropbox.TargetDir)
			if err != nil {
				return err
			}
			if err := a.services.Cursors().Put(ctx, cursor.Key, latest); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), latest)
			return nil
		}),
	}

	cmd.AddCommand(get, reset)
	return cmd
}
