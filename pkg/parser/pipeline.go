package parser

import (
	"log/slog"

	"github.com/kayitare/momoledger/pkg/api"
)

// Stats summarizes one batch run.
type Stats struct {
	// Total is the number of input messages.
	Total int
	// Accepted is the number of messages that produced a record.
	Accepted int
	// Skipped is the number of messages with no body or no tracked keyword.
	Skipped int
	// Failed is the number of messages aborted by a per-message parse error.
	Failed int
}

// Pipeline applies the record builder to a batch of raw messages.
type Pipeline struct {
	logger *slog.Logger
}

// New creates a batch pipeline.
func New(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger}
}

// Process builds a record for each message in order and returns the accepted
// subset, preserving relative input order. A per-message failure is isolated:
// it is logged, counted, and never prevents processing of subsequent messages.
func (p *Pipeline) Process(messages []api.RawMessage) ([]*api.TransactionRecord, Stats) {
	stats := Stats{Total: len(messages)}
	records := make([]*api.TransactionRecord, 0, len(messages))

	for _, msg := range messages {
		record, err := Build(msg)
		if err != nil {
			stats.Failed++
			p.logger.Warn("dropping unparseable message", "error", err)
			continue
		}
		if record == nil {
			stats.Skipped++
			continue
		}

		stats.Accepted++
		records = append(records, record)
	}

	return records, stats
}
