// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Stevedore Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/stevedore/stevedore/internal/config"
	"github.com/stevedore/stevedore/internal/loader"
	"github.com/stevedore/stevedore/internal/logging"
	"github.com/stevedore/stevedore/internal/observability"
)

// NewLoadCmd creates the load subcommand.
func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load [dir]",
		Short: "Scan a directory and load every plugin archive in it",
		Long: `Scan a directory for plugin archives and load each one on a single
worker, in directory-listing order. Archive failures are logged and
skipped; the command exits once every discovered archive has been
processed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile
			if path == "" {
				path = config.DefaultPath()
			}
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if len(args) == 1 {
				cfg.PluginsDir = args[0]
			}
			return runLoad(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("plugins-dir", defaults.PluginsDir, "directory containing plugin archives")
	cmd.Flags().String("archive-suffix", defaults.ArchiveSuffix, "archive file suffix")
	cmd.Flags().String("entry-suffix", defaults.EntrySuffix, "compiled entry suffix")
	cmd.Flags().StringSlice("include", nil, "glob patterns of qualified names to load")
	cmd.Flags().StringSlice("exclude", nil, "glob patterns of qualified names to skip")
	cmd.Flags().String("metrics-addr", "", "metrics/health HTTP address (empty = disabled)")
	cmd.Flags().String("log-format", defaults.LogFormat, "log format (json or text)")

	return cmd
}

func runLoad(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("stevedore", version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting loader",
		"dir", cfg.PluginsDir,
		"archive_suffix", cfg.ArchiveSuffix,
		"entry_suffix", cfg.EntrySuffix,
	)

	filter, err := loader.NewFilter(cfg.Include, cfg.Exclude)
	if err != nil {
		return fmt.Errorf("invalid filter patterns: %w", err)
	}

	opts := []loader.Option{
		loader.WithArchiveSuffix(cfg.ArchiveSuffix),
		loader.WithEntrySuffix(cfg.EntrySuffix),
		loader.WithFilter(filter),
	}

	var obs *observability.Server
	if cfg.MetricsAddr != "" {
		obs = observability.NewServer(cfg.MetricsAddr, func() bool { return true })
		errCh, err := obs.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		go func() {
			for serveErr := range errCh {
				slog.Error("observability server failed", "error", serveErr)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := obs.Stop(shutdownCtx); err != nil {
				slog.Warn("error stopping observability server", "error", err)
			}
		}()
		opts = append(opts, loader.WithMetrics(obs.Metrics()))
	}

	l := loader.New(opts...)
	l.LoadDir(cfg.PluginsDir)

	select {
	case <-l.Done():
	case <-ctx.Done():
		// Queued loads cannot be cancelled; stop waiting and report.
		slog.Warn("interrupted before all archives finished loading")
		return ctx.Err()
	}

	slog.Info("all archives processed")
	return nil
}
