// Package daemon wires a reader and a writer together for one ingestion run.
package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kayitare/momoledger/internal/plugins"
	"github.com/kayitare/momoledger/pkg/api"
)

// Runner executes ingestion runs built from registered plugins.
type Runner struct {
	registry *plugins.Registry
	logger   *slog.Logger
}

// New creates a runner over the given plugin registry.
func New(registry *plugins.Registry, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{registry: registry, logger: logger}
}

// Run creates the named reader and writer and streams one batch from source
// to sink. It returns when the reader is exhausted and the writer has flushed,
// or on the first unrecoverable error.
func (r *Runner) Run(ctx context.Context, readerName string, readerConfig json.RawMessage, writerName string, writerConfig json.RawMessage) error {
	r.logger.Info("starting ingestion",
		"reader", readerName,
		"writer", writerName,
	)

	reader, err := r.registry.CreateReader(
		readerName,
		readerConfig,
		r.logger.With("component", "reader", "plugin", readerName),
	)
	if err != nil {
		return fmt.Errorf("creating reader: %w", err)
	}

	writer, err := r.registry.CreateWriter(
		writerName,
		writerConfig,
		r.logger.With("component", "writer", "plugin", writerName),
	)
	if err != nil {
		return fmt.Errorf("creating writer: %w", err)
	}

	// The writer normally returns after the reader closes the channel. If it
	// bails out early, cancel so a blocked reader send unwinds instead of
	// hanging until the process is signalled.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	records := make(chan *api.TransactionRecord, 100)

	writerDone := make(chan error, 1)
	go func() {
		err := writer.Write(ctx, records)
		cancel()
		writerDone <- err
	}()

	readErr := reader.Read(ctx, records)
	writeErr := <-writerDone

	if readErr != nil && !errors.Is(readErr, context.Canceled) {
		return fmt.Errorf("reading: %w", readErr)
	}
	if writeErr != nil && !errors.Is(writeErr, context.Canceled) {
		return fmt.Errorf("writing: %w", writeErr)
	}

	r.logger.Info("ingestion finished")
	return nil
}
