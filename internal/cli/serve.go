package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fekuna/omnipos-pos-agent/internal/status"
	"github.com/fekuna/omnipos-pos-agent/internal/syncer"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sync agent until interrupted",
		Long: `Watches connectivity to the remote and pushes pending sales whenever it
becomes reachable, and on the retry schedule while it stays reachable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
				defer stop()
				return serve(ctx, a)
			})
		},
	}
}

func serve(ctx context.Context, a *app) error {
	r, err := a.openRemote()
	if err != nil {
		return err
	}
	defer func() { _ = r.close() }()

	go r.run(ctx)

	coordinator := syncer.NewCoordinator(a.transactions, r.sink, r.monitor, syncer.Config{
		PushTimeout:   a.cfg.Sync.PushTimeout,
		RetrySchedule: a.cfg.Sync.RetrySchedule,
	}, a.logger)

	reporter, err := status.NewReporter(a.transactions, r.monitor, coordinator, a.cfg.Terminal.Locale)
	if err != nil {
		return err
	}
	report := func() {
		snapshot, err := reporter.Snapshot(ctx)
		if err != nil {
			a.logger.Warn("failed to build status", zap.Error(err))
			return
		}
		a.logger.Info(snapshot.Message, zap.Int("pending", snapshot.Pending), zap.Int("rejected", snapshot.Rejected))
	}
	unsubscribe := r.monitor.OnChange(func(bool) { report() })
	defer unsubscribe()

	if err := coordinator.Start(ctx); err != nil {
		return err
	}
	report()

	a.logger.Info("POS agent running", zap.String("sink", a.cfg.Sync.Sink), zap.String("store", a.cfg.Store.Path))
	<-ctx.Done()

	a.logger.Info("Shutting down sync agent...")
	coordinator.Stop()
	a.logger.Info("Sync agent stopped")
	return nil
}
