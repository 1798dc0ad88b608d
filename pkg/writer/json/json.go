// Package json implements a Writer that materializes transaction records as a
// JSON array file.
package json

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/kayitare/momoledger/pkg/api"
	"github.com/kayitare/momoledger/pkg/writer/buffered"
)

// Config holds configuration for the JSON writer.
type Config struct {
	// FilePath is the path to the JSON output file.
	FilePath string
	// BatchSize is the number of records to buffer before writing.
	BatchSize int
	// FlushInterval is the interval between automatic flushes, in seconds.
	FlushInterval int
}

// Writer writes transaction records to a JSON file with buffered batching.
// The whole array is rewritten on each flush since JSON cannot be appended.
type Writer struct {
	filePath string
	records  []*api.TransactionRecord
	mu       sync.Mutex
	buffered *buffered.Writer
	logger   *slog.Logger
}

// New creates a JSON writer, loading any records already present in the file.
func New(cfg Config, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	w := &Writer{
		filePath: cfg.FilePath,
		records:  make([]*api.TransactionRecord, 0),
		logger:   logger,
	}

	if err := w.loadExisting(); err != nil {
		logger.Warn("could not load existing records", "error", err)
	}

	w.buffered = buffered.New(w.flushBatch, buffered.Config{
		BatchSize:     cfg.BatchSize,
		FlushInterval: time.Duration(cfg.FlushInterval) * time.Second,
	}, logger.With("component", "json_buffer"))

	logger.Info("json writer initialized", "file", cfg.FilePath, "existing_count", len(w.records))
	return w, nil
}

func (w *Writer) loadExisting() error {
	data, err := os.ReadFile(w.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if len(data) == 0 {
		return nil
	}

	return json.Unmarshal(data, &w.records)
}

// Write consumes records from the input channel and writes them to the file.
func (w *Writer) Write(ctx context.Context, in <-chan *api.TransactionRecord) error {
	return w.buffered.Write(ctx, in)
}

func (w *Writer) flushBatch(records []*api.TransactionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = append(w.records, records...)

	data, err := json.MarshalIndent(w.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling json: %w", err)
	}

	if err := os.WriteFile(w.filePath, data, 0o600); err != nil {
		return fmt.Errorf("writing json file: %w", err)
	}

	return nil
}

// RecordCount returns the total number of records written.
func (w *Writer) RecordCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.records)
}
