// Package sqlite provides a plugin wrapper for the SQLite-backed database
// writer.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/kayitare/momoledger/pkg/api"
	sqlitestore "github.com/kayitare/momoledger/pkg/storage/sqlite"
	dbwriter "github.com/kayitare/momoledger/pkg/writer/db"
)

// Plugin implements the WriterPlugin interface for SQLite.
type Plugin struct{}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return "sqlite"
}

// Description returns a human-readable description.
func (p *Plugin) Description() string {
	return "Write transactions to a local SQLite database"
}

// ConfigSchema returns a JSON schema describing the plugin's configuration.
func (p *Plugin) ConfigSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"path": map[string]any{
				"type":        "string",
				"description": "Path to the SQLite database file",
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
		"required": []string{"path"},
	}
}

// Config represents the SQLite writer configuration.
type Config struct {
	Path          string `json:"path"`
	Source        string `json:"source,omitempty"`
	BatchSize     int    `json:"batchSize,omitempty"`
	FlushInterval int    `json:"flushInterval,omitempty"` // in seconds
}

// NewWriter creates a new SQLite writer instance.
func (p *Plugin) NewWriter(configData json.RawMessage, logger *slog.Logger) (api.Writer, error) {
	var cfg Config
	if err := json.Unmarshal(configData, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling sqlite config: %w", err)
	}

	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}

	store, err := sqlitestore.New(context.Background(), sqlitestore.Config{Path: cfg.Path}, logger)
	if err != nil {
		return nil, fmt.Errorf("creating sqlite store: %w", err)
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
