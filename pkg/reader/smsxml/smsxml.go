// Package smsxml implements a Reader for SMS backup XML exports.
package smsxml

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"os"

	"github.com/kayitare/momoledger/pkg/api"
	"github.com/kayitare/momoledger/pkg/parser"
)

// backup mirrors the SMS Backup & Restore XML layout: a <smses> root with one
// <sms> element per message, fields carried as attributes.
type backup struct {
	XMLName xml.Name `xml:"smses"`
	SMS     []sms    `xml:"sms"`
}

type sms struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
}

// Config holds the XML reader configuration.
type Config struct {
	// FilePath is the path of the XML backup file to ingest.
	FilePath string
	// Sender optionally restricts ingestion to messages from one address.
	Sender string
}

// Reader loads an SMS backup file, runs the classification pipeline over its
// message bodies, and streams the accepted records.
type Reader struct {
	cfg      Config
	pipeline *parser.Pipeline
	logger   *slog.Logger
}

// New creates an SMS backup reader.
func New(cfg Config, logger *slog.Logger) (*Reader, error) {
	if cfg.FilePath == "" {
		return nil, fmt.Errorf("filePath is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reader{
		cfg:      cfg,
		pipeline: parser.New(logger.With("component", "pipeline")),
		logger:   logger,
	}, nil
}

// Read parses the backup file and sends each accepted record to out in input
// order. The channel is closed when the batch is exhausted.
func (r *Reader) Read(ctx context.Context, out chan<- *api.TransactionRecord) error {
	defer close(out)

	messages, err := r.loadMessages()
	if err != nil {
		return err
	}

	records, stats := r.pipeline.Process(messages)

	r.logger.Info("processed sms backup",
		"file", r.cfg.FilePath,
		"total", stats.Total,
		"accepted", stats.Accepted,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
	)

	for _, record := range records {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- record:
		}
	}

	return nil
}

func (r *Reader) loadMessages() ([]api.RawMessage, error) {
	data, err := os.ReadFile(r.cfg.FilePath)
	if err != nil {
		return nil, fmt.Errorf("reading backup file: %w", err)
	}

	var b backup
	if err := xml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing backup XML: %w", err)
	}

	messages := make([]api.RawMessage, 0, len(b.SMS))
	for _, m := range b.SMS {
		if r.cfg.Sender != "" && m.Address != r.cfg.Sender {
			continue
		}
		messages = append(messages, api.RawMessage{Body: m.Body})
	}

	return messages, nil
}
