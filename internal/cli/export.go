package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fekuna/omnipos-pos-agent/internal/store"
	"github.com/spf13/cobra"
)

func newExportCmd(opts *rootOptions) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export sales as CSV, one row per line item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				var w io.Writer = cmd.OutOrStdout()
				if out != "" && out != "-" {
					f, err := os.Create(out)
					if err != nil {
						return err
					}
					defer f.Close()
					w = f
				}
				return a.transactions.ExportCSV(ctx, w)
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newResetCmd(opts *rootOptions) *cobra.Command {
	var (
		partitions []string
		confirm    bool
	)
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Delete every record in the given partitions",
		Long: `Clears local data. Unsynced sales are lost for good, so run "pos sync"
first. Partitions: ` + strings.Join(store.Partitions, ", ") + `, or all.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return errors.New("refusing to reset without --yes")
			}
			targets, err := resolvePartitions(partitions)
			if err != nil {
				return err
			}
			return opts.withApp(cmd, func(ctx context.Context, a *app) error {
				for _, p := range targets {
					if err := a.store.Clear(ctx, p); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&partitions, "partition", nil, "Partitions to clear")
	cmd.Flags().BoolVar(&confirm, "yes", false, "Confirm the reset")
	_ = cmd.MarkFlagRequired("partition")
	return cmd
}

func resolvePartitions(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "all" {
			return store.Partitions, nil
		}
		if !store.IsPartition(name) {
			return nil, fmt.Errorf("%w: %s", store.ErrUnknownPartition, name)
		}
		out = append(out, name)
	}
	return out, nil
}
