package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-pos-agent/internal/connectivity"
	"github.com/fekuna/omnipos-pos-agent/internal/status"
	"github.com/fekuna/omnipos-pos-agent/internal/syncer"
	"github.com/spf13/cobra"
)

func newSyncCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Push pending sales to the remote once",
		Long: `Runs a single sync pass now, regardless of the connectivity monitor.
Sales the remote cannot take right now stay pending for the next pass.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.openRemote()
				if err != nil {
					return err
				}
				defer func() { _ = r.close() }()

				coordinator := syncer.NewCoordinator(a.transactions, r.sink, connectivity.NewManualMonitor(true), syncer.Config{
					PushTimeout: a.cfg.Sync.PushTimeout,
				}, a.logger)
				res, _ := coordinator.Trigger(ctx)
				if res.Err != nil {
					return res.Err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d of %d pending (failed %d, rejected %d)\n",
					res.Synced, res.Pending, res.Failed, res.Rejected)
				return nil
			})
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var wait time.Duration
	cmd := &cobra.Command{
		Use:     "status",
		Aliases: []string{"pending"},
		Short:   "Show connectivity and the number of pending sales",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				r, err := a.openRemote()
				if err != nil {
					return err
				}
				defer func() { _ = r.close() }()

				waitCtx, cancel := context.WithTimeout(ctx, wait)
				defer cancel()
				go r.run(waitCtx)
				connectivity.WaitOnline(waitCtx, r.monitor)

				reporter, err := status.NewReporter(a.transactions, r.monitor, nil, a.cfg.Terminal.Locale)
				if err != nil {
					return err
				}
				snapshot, err := reporter.Snapshot(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), snapshot.Message)
				if snapshot.RejectedMessage != "" {
					fmt.Fprintln(cmd.OutOrStdout(), snapshot.RejectedMessage)
				}
				return nil
			})
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 2*time.Second, "How long to wait for the remote to become reachable")
	return cmd
}
