// Package postgres provides a plugin wrapper for the PostgreSQL-backed
// database writer.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kayitare/momoledger/pkg/api"
	pgstore "github.com/kayitare/momoledger/pkg/storage/postgres"
	dbwriter "github.com/kayitare/momoledger/pkg/writer/db"
)

// Plugin implements the WriterPlugin interface for PostgreSQL.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "postgres"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Write transactions to a PostgreSQL database"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"host": map[string]any{
				"type":        "string",
				"description": "PostgreSQL host address",
				"default":     "localhost",
			},
			"port": map[string]any{
				"type":        "integer",
				"description": "PostgreSQL port",
				"default":     5432,
			},
			"database": map[string]any{
				"type":        "string",
				"description": "Database name",
			},
			"user": map[string]any{
				"type":        "string",
				"description": "Database user",
			},
			"password": map[string]any{
				"type":        "string",
				"description": "Database password",
			},
			"sslmode": map[string]any{
				"type":        "string",
				"description": "SSL mode (disable, require, verify-ca, verify-full)",
				"default":     "disable",
			},
			"source": map[string]any{
				"type":        "string",
				"description": "Label recorded with the ingest run",
			},
			"batchSize": map[string]any{
				"type":        "integer",
				"description": "Number of records to buffer before writing (default: 50)",
				"default":     50,
			},
			"flushInterval": map[string]any{
				"type":        "integer",
				"description": "Interval in seconds between automatic flushes (default: 30)",
				"default":     30,
			},
		},
		"required": []string{"host", "database", "user", "password"},
	}
}

// Config represents the PostgreSQL writer configuration.
type Config struct {
	Host          string `json:"host"`
	Port          int    `json:"port,omitempty"`
	Database      string `json:"database"`
	User          string `json:"user"`
	Password      string `json:"password"`
	SSLMode       string `json:"sslmode,omitempty"`
	Source        string `json:"source,omitempty"`
	BatchSize     int    `json:"batchSize,omitempty"`
	FlushInterval int    `json:"flushInterval,omitempty"` // in seconds
}

// NewWriter creates a new PostgreSQL writer instance.
func (p *Plugin) NewWriter(configData json.RawMessage, logger *slog.Logger) (api.Writer, error) {
	var cfg Config
	if err := json.Unmarshal(configData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling postgres config: %w", err)
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("database is required")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("user is required")
	}

	store, err := pgstore.New(context.Background(), pgstore.Config{
		Host:     cfg.Host,
		Port:     cfg.Port,
		Database: cfg.Database,
		User:     cfg.User,
		Password: cfg.Password,
		SSLMode:  cfg.SSLMode,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating postgres store: %w", err)
	}

	return &storeOwningWriter{
		Writer: dbwriter.New(store, dbwriter.Config{
			Source:        cfg.Source,
			BatchSize:     cfg.BatchSize,
			FlushInterval: time.Duration(cfg.FlushInterval) * time.Second,
		}, logger),
		store: store,
	}, nil
}

// storeOwningWriter closes the store it created once the write loop returns.
type storeOwningWriter struct {
	*dbwriter.Writer
	store api.Store
}

func (w *storeOwningWriter) Write(ctx context.Context, in <-chan *api.TransactionRecord) error {
	defer w.store.Close()
	return w.Writer.Write(ctx, in)
}
