// Package db implements a Writer that persists transaction records into a
// relational store in batches.
package db

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"github.com/google/uuid"

	"github.com/kayitare/momoledger/pkg/api"
)

// Config holds the database writer configuration.
type Config struct {
	// Source labels the ingestion run (typically the backup file path).
	Source string
	// BatchSize is the number of records to buffer before writing.
	BatchSize int
	// FlushInterval is the time between automatic flushes.
	FlushInterval time.Duration

	// RetryAttempts is the number of insert attempts per batch.
	RetryAttempts uint
	// RetryDelay is the wait between insert attempts.
	RetryDelay time.Duration
}

// Writer batches records into an api.Store. When the input channel closes it
// flushes the remainder and records the ingest run.
type Writer struct {
	store  api.Store
	cfg    Config
	logger *slog.Logger
}

// New creates a database writer on top of the given store. The store's
// lifecycle stays with the caller.
func New(store api.Store, cfg Config, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 30 * time.Second
	}
	if cfg.RetryAttempts == 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 2 * time.Second
	}

	return &Writer{store: store, cfg: cfg, logger: logger}
}

// Write consumes records from the channel and persists them in batches.
func (w *Writer) Write(ctx context.Context, in <-chan *api.TransactionRecord) error {
	run := api.IngestRun{
		ID:        uuid.NewString(),
		Source:    w.cfg.Source,
		StartedAt: time.Now(),
	}
	logger := w.logger.With("run_id", run.ID)

	batch := make([]*api.TransactionRecord, 0, w.cfg.BatchSize)
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := w.insertBatch(ctx, batch); err != nil {
			return err
		}

		run.Inserted += len(batch)
		logger.Info("wrote transaction batch", "count", len(batch))
		batch = batch[:0]
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			if err := flush(); err != nil {
				logger.Error("failed to flush final batch", "error", err)
			}
			return ctx.Err()

		case record, ok := <-in:
			if !ok {
				if err := flush(); err != nil {
					return err
				}
				return w.finishRun(ctx, logger, run)
			}

			batch = append(batch, record)
			if len(batch) >= w.cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}

		case <-ticker.C:
			if err := flush(); err != nil {
				return err
			}
		}
	}
}

// insertBatch writes one batch, retrying transient store failures.
func (w *Writer) insertBatch(ctx context.Context, batch []*api.TransactionRecord) error {
	err := retry.Do(
		func() error {
			return w.store.InsertTransactions(ctx, batch)
		},
		retry.Attempts(w.cfg.RetryAttempts),
		retry.Delay(w.cfg.RetryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil
		}),
	)
	if err != nil {
		return fmt.Errorf("inserting batch of %d: %w", len(batch), err)
	}
	return nil
}

func (w *Writer) finishRun(ctx context.Context, logger *slog.Logger, run api.IngestRun) error {
	run.FinishedAt = time.Now()

	if err := w.store.RecordIngestRun(ctx, run); err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}

	logger.Info("ingest run complete",
		"source", run.Source,
		"inserted", run.Inserted,
		"duration", run.FinishedAt.Sub(run.StartedAt),
	)
	return nil
}
