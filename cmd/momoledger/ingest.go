package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kayitare/momoledger/internal/daemon"
	"github.com/kayitare/momoledger/pkg/config"
)

func newIngestCommand() *cobra.Command {
	var (
		writerName string
		sender     string
	)

	cmd := &cobra.Command{
		Use:   "ingest <backup.xml>",
		Short: "Parse an SMS backup file and write the extracted transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), args[0], writerName, sender)
		},
	}
	cmd.Flags().StringVar(&writerName, "writer", "", "writer plugin to use (overrides MOMO_WRITER)")
	cmd.Flags().StringVar(&sender, "sender", "", "only ingest messages from this sender address")

	return cmd
}

func runIngest(ctx context.Context, backupPath, writerName, sender string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if writerName == "" {
		writerName = cfg.WriterPlugin
	}

	readerConfig := cfg.ReaderConfig
	if cfg.ReaderPlugin == "smsxml" {
		readerConfig, err = json.Marshal(map[string]string{
			"filePath": backupPath,
			"sender":   sender,
		})
		if err != nil {
			return fmt.Errorf("building reader config: %w", err)
		}
	} else if len(readerConfig) == 0 {
		return fmt.Errorf("reader plugin %q needs MOMO_READER_CONFIG", cfg.ReaderPlugin)
	}

	writerConfig := cfg.WriterConfig
	if len(writerConfig) == 0 {
		writerConfig, err = defaultWriterConfig(cfg, writerName, backupPath)
		if err != nil {
			return err
		}
	}

	registry, err := buildRegistry()
	if err != nil {
		return fmt.Errorf("building plugin registry: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := daemon.New(registry, slog.Default())
	return runner.Run(ctx, cfg.ReaderPlugin, readerConfig, writerName, writerConfig)
}

// defaultWriterConfig builds a writer configuration for the database writers
// from the flat environment sections when MOMO_WRITER_CONFIG is not set.
func defaultWriterConfig(cfg config.Config, writerName, source string) (json.RawMessage, error) {
	switch writerName {
	case "sqlite":
		return json.Marshal(map[string]any{
			"path":   cfg.SQLite.Path,
			"source": source,
		})
	case "postgres":
		return json.Marshal(map[string]any{
			"host":     cfg.Postgres.Host,
			"port":     cfg.Postgres.Port,
			"database": cfg.Postgres.Database,
			"user":     cfg.Postgres.User,
			"password": cfg.Postgres.Password,
			"sslmode":  cfg.Postgres.SSLMode,
			"source":   source,
		})
	default:
		return nil, fmt.Errorf("writer plugin %q needs MOMO_WRITER_CONFIG", writerName)
	}
}
