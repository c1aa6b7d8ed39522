package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fekuna/omnipos-pos-agent/config"
	"github.com/fekuna/omnipos-pos-agent/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFile   string
	storePath string

	cfg    *config.Config
	logger logger.ZapLogger
}

// NewRootCommand builds the pos command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "pos",
		Short: "OmniPOS offline-first point of sale agent",
		Long: `pos keeps products, categories and sales in a local store so the terminal
keeps selling while offline, and pushes recorded sales to the remote system
once it is reachable again.

Configuration is read from the environment (and an optional .env file).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.load()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Load environment from this file instead of ./.env")
	cmd.PersistentFlags().StringVar(&opts.storePath, "db", "", "Local store path (overrides STORE_PATH)")

	cmd.AddCommand(
		newServeCmd(opts),
		newProductCmd(opts),
		newCategoryCmd(opts),
		newOrderCmd(opts),
		newSyncCmd(opts),
		newStatusCmd(opts),
		newExportCmd(opts),
		newResetCmd(opts),
	)
	return cmd
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (o *rootOptions) load() error {
	if o.envFile != "" {
		if err := godotenv.Load(o.envFile); err != nil {
			return fmt.Errorf("failed to load %s: %w", o.envFile, err)
		}
	} else {
		_ = godotenv.Load() // Load .env file if it exists
	}

	o.cfg = config.LoadEnv()
	if o.storePath != "" {
		o.cfg.Store.Path = o.storePath
	}
	o.logger = newLogger(o.cfg)
	return nil
}

// withApp opens the local store for the duration of fn.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx, o.cfg, o.logger)
	if err != nil {
		return err
	}
	defer func() {
		_ = a.Close()
		_ = o.logger.Sync()
	}()
	return fn(ctx, a)
}
