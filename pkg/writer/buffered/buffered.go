// Package buffered provides a buffered writer base for batch sinks.
package buffered

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kayitare/momoledger/pkg/api"
)

// DefaultBatchSize is the default number of records to buffer before flushing.
const DefaultBatchSize = 50

// DefaultFlushInterval is the default interval between automatic flushes.
const DefaultFlushInterval = 30 * time.Second

// Flusher is called with the buffered records when a flush is due.
type Flusher func(records []*api.TransactionRecord) error

// Config holds buffering options.
type Config struct {
	// BatchSize defaults to DefaultBatchSize.
	BatchSize int
	// FlushInterval defaults to DefaultFlushInterval.
	FlushInterval time.Duration
}

// Writer buffers records and flushes them in batches via the Flusher.
type Writer struct {
	buffer  []*api.TransactionRecord
	mu      sync.Mutex
	flusher Flusher
	config  Config
	logger  *slog.Logger
}

// New creates a buffered writer around the given flusher.
func New(flusher Flusher, cfg Config, logger *slog.Logger) *Writer {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = DefaultFlushInterval
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Writer{
		buffer:  make([]*api.TransactionRecord, 0, cfg.BatchSize),
		flusher: flusher,
		config:  cfg,
		logger:  logger,
	}
}

// Write consumes records from in, flushing on batch size, on interval, and
// when the channel closes. It returns once the channel is closed and the final
// flush completed.
func (w *Writer) Write(ctx context.Context, in <-chan *api.TransactionRecord) error {
	ticker := time.NewTicker(w.config.FlushInterval)
	defer ticker.Stop()

	w.logger.Debug("buffered writer started",
		"batch_size", w.config.BatchSize,
		"flush_interval", w.config.FlushInterval,
	)

	for {
		select {
		case <-ctx.Done():
			if err := w.flush(); err != nil {
				w.logger.Error("failed to flush on shutdown", "error", err)
			}
			return ctx.Err()

		case <-ticker.C:
			if err := w.flush(); err != nil {
				w.logger.Error("failed to flush on interval", "error", err)
			}

		case record, ok := <-in:
			if !ok {
				return w.flush()
			}

			w.mu.Lock()
			w.buffer = append(w.buffer, record)
			full := len(w.buffer) >= w.config.BatchSize
			w.mu.Unlock()

			if full {
				if err := w.flush(); err != nil {
					return err
				}
			}
		}
	}
}

func (w *Writer) flush() error {
	w.mu.Lock()
	if len(w.buffer) == 0 {
		w.mu.Unlock()
		return nil
	}

	toFlush := make([]*api.TransactionRecord, len(w.buffer))
	copy(toFlush, w.buffer)
	w.buffer = w.buffer[:0]
	w.mu.Unlock()

	if err := w.flusher(toFlush); err != nil {
		return err
	}

	w.logger.Debug("flushed records", "count", len(toFlush))
	return nil
}

// BufferLen returns the current number of buffered records.
func (w *Writer) BufferLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.buffer)
}
