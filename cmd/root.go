// Package cmd defines the CLI commands for the photo-album-scraper executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/photo-album-scraper/internal/config"
	"github.com/JakeFAU/photo-album-scraper/internal/logging"
	"github.com/JakeFAU/photo-album-scraper/internal/telemetry"
)

type rootOptions struct {
	configPath string
	verbose    bool
}

type envKeyType string

const envKey envKeyType = "env"

// env carries the loaded configuration and logger to subcommands.
type env struct {
	cfg      config.Config
	logger   *zap.Logger
	shutdown func(context.Context) error
}

// session owns the env for one execution. It is closed after the command
// returns, whether or not RunE failed, since cobra skips post-run hooks on
// error.
type session struct {
	env    *env
	closed bool
}

func (s *session) close(ctx context.Context) {
	if s.closed || s.env == nil {
		return
	}
	s.closed = true
	if err := s.env.shutdown(ctx); err != nil {
		s.env.logger.Warn("trace flush failed", zap.Error(err))
	}
	_ = s.env.logger.Sync() //nolint:errcheck // stderr sync fails on some platforms
}

// run executes root with a fresh session and tears the session down afterwards.
func run(ctx context.Context, root *cobra.Command, s *session) error {
	defer s.close(context.WithoutCancel(ctx))
	return root.ExecuteContext(context.WithValue(ctx, envKey, s))
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "photo-album-scraper",
		Short: "Extracts photo metadata from shared Google Photos albums.",
		Long: `photo-album-scraper reads the metadata Google Photos embeds in shared
album pages. It can serve albums over HTTP through a TTL cache, or ingest
new photos from one album into a database and blob bucket.`,
		SilenceUsage: true,

		// Runs before every subcommand so each one gets config and a logger.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			if opts.verbose {
				cfg.Logging.Verbose = true
			}
			logger, err := logging.New(cfg.Logging.Development, cfg.Logging.Verbose)
			if err != nil {
				return err
			}
			zap.ReplaceGlobals(logger)
			tp, err := telemetry.InitTracerProvider(cmd.Context(), telemetry.Config{
				ServiceName: cfg.Telemetry.ServiceName,
				Exporter:    cfg.Telemetry.Exporter,
				Writer:      cmd.ErrOrStderr(),
			})
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}
			s, ok := cmd.Context().Value(envKey).(*session)
			if !ok {
				s = &session{}
				cmd.SetContext(context.WithValue(cmd.Context(), envKey, s))
			}
			s.env = &env{
				cfg:      cfg,
				logger:   logger,
				shutdown: tp.Shutdown,
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (yaml, json or toml)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newIngestCmd())

	return cmd
}

func resolveEnv(ctx context.Context) (*env, error) {
	s, ok := ctx.Value(envKey).(*session)
	if !ok || s.env == nil {
		return nil, errors.New("configuration not loaded")
	}
	return s.env, nil
}

// Execute is the main entry point.
func Execute() {
	if err := run(context.Background(), newRootCmd(), &session{}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
