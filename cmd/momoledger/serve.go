package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kayitare/momoledger/pkg/api"
	"github.com/kayitare/momoledger/pkg/config"
	"github.com/kayitare/momoledger/pkg/server"
	pgstore "github.com/kayitare/momoledger/pkg/storage/postgres"
	sqlitestore "github.com/kayitare/momoledger/pkg/storage/sqlite"
)

func newServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the stored transactions over a read-only HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides MOMO_HTTP_ADDR)")

	return cmd
}

func runServe(ctx context.Context, addr string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if addr == "" {
		addr = cfg.HTTP.Addr
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default()

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	return server.New(store, logger).ListenAndServe(ctx, addr)
}

func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (api.Store, error) {
	switch cfg.Store {
	case "sqlite":
		return sqlitestore.New(ctx, sqlitestore.Config{Path: cfg.SQLite.Path}, logger)
	case "postgres":
		return pgstore.New(ctx, pgstore.Config{
			Host:     cfg.Postgres.Host,
			Port:     cfg.Postgres.Port,
			Database: cfg.Postgres.Database,
			User:     cfg.Postgres.User,
			Password: cfg.Postgres.Password,
			SSLMode:  cfg.Postgres.SSLMode,
		}, logger)
	default:
		return nil, fmt.Errorf("unknown store %q (want sqlite or postgres)", cfg.Store)
	}
}
