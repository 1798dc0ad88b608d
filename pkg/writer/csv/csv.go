// Package csv implements a Writer that appends transaction records to a CSV
// file.
package csv

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/kayitare/momoledger/pkg/api"
	"github.com/kayitare/momoledger/pkg/writer/buffered"
)

// Config holds configuration for the CSV writer.
type Config struct {
	// FilePath is the path to the CSV output file.
	FilePath string
	// BatchSize is the number of records to buffer before writing.
	BatchSize int
	// FlushInterval is the interval between automatic flushes, in seconds.
	FlushInterval int
}

// Writer writes transaction records to a CSV file with buffered batching.
type Writer struct {
	filePath string
	file     *os.File
	writer   *csv.Writer
	mu       sync.Mutex
	buffered *buffered.Writer
	logger   *slog.Logger
}

// New creates a CSV writer, writing the header row if the file is new.
func New(cfg Config, logger *slog.Logger) (*Writer, error) {
	if logger == nil {
		logger = slog.Default()
	}

	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening csv file: %w", err)
	}

	w := &Writer{
		filePath: cfg.FilePath,
		file:     file,
		writer:   csv.NewWriter(file),
		logger:   logger,
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat csv file: %w", err)
	}

	if stat.Size() == 0 {
		if err := w.writeHeader(); err != nil {
			file.Close()
			return nil, fmt.Errorf("writing header: %w", err)
		}
	}

	w.buffered = buffered.New(w.flushBatch, buffered.Config{
		BatchSize:     cfg.BatchSize,
		FlushInterval: time.Duration(cfg.FlushInterval) * time.Second,
	}, logger.With("component", "csv_buffer"))

	logger.Info("csv writer initialized", "file", cfg.FilePath)
	return w, nil
}

func (w *Writer) writeHeader() error {
	if err := w.writer.Write([]string{"category", "amount", "date", "description"}); err != nil {
		return err
	}
	w.writer.Flush()
	return w.writer.Error()
}

// Write consumes records from the input channel and writes them to the file.
// The file is closed when the channel is exhausted; a failed final flush on
// close surfaces as the returned error.
func (w *Writer) Write(ctx context.Context, in <-chan *api.TransactionRecord) error {
	err := w.buffered.Write(ctx, in)
	if closeErr := w.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (w *Writer) flushBatch(records []*api.TransactionRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, r := range records {
		var amount, date string
		if r.Amount != nil {
			amount = strconv.FormatInt(*r.Amount, 10)
		}
		if r.Timestamp != nil {
			date = *r.Timestamp
		}

		if err := w.writer.Write([]string{r.Category, amount, date, r.Description}); err != nil {
			return fmt.Errorf("writing csv record: %w", err)
		}
	}

	w.writer.Flush()
	if err := w.writer.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}

	return nil
}

// Close flushes pending output and closes the file.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.writer.Flush()
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("closing csv file: %w", err)
	}

	w.logger.Info("csv writer closed", "file", w.filePath)
	return nil
}
