// Package api defines the core interfaces and data structures for momoledger.
package api

import (
	"context"
	"time"
)

// RawMessage is a single SMS notification as received from the backup supplier.
// It is consumed once by the batch pipeline and not retained.
type RawMessage struct {
	// Body is the full SMS text, case-preserving as received.
	Body string
}

// ExtractedFields holds the optional fields recognized inside a message body.
// Both fields are independently optional; a missing pattern match yields nil.
type ExtractedFields struct {
	// Amount is the transaction amount in whole RWF.
	Amount *int64
	// Timestamp is the transaction time in "YYYY-MM-DD HH:MM:SS" form.
	Timestamp *string
}

// TransactionRecord is a classified, normalized transaction. It is built once
// per accepted message and immutable thereafter; the store assigns a surrogate
// identifier on insert.
type TransactionRecord struct {
	// Category is always a member of the fixed category set.
	Category string `json:"category"`
	Amount   *int64 `json:"amount"`
	// Timestamp is serialized as "date" to match the stored column name.
	Timestamp *string `json:"date"`
	// Description is the verbatim original message body.
	Description string `json:"description"`
}

// StoredTransaction is a TransactionRecord as persisted, including the
// store-assigned surrogate identifier.
type StoredTransaction struct {
	ID          int64   `json:"id"`
	Category    string  `json:"category"`
	Amount      *int64  `json:"amount"`
	Date        *string `json:"date"`
	Description string  `json:"description"`
}

// IngestRun records the bookkeeping for one completed ingestion run.
type IngestRun struct {
	ID         string
	Source     string
	StartedAt  time.Time
	FinishedAt time.Time
	Inserted   int
}

// Reader reads transaction records from a source and sends them to the
// provided channel. Implementations close the channel when the source is
// exhausted or on error.
type Reader interface {
	Read(ctx context.Context, out chan<- *TransactionRecord) error
}

// Writer consumes transaction records from a channel and writes them to a
// destination. It returns once the channel is closed and all buffered records
// are flushed.
type Writer interface {
	Write(ctx context.Context, in <-chan *TransactionRecord) error
}

// Store is a relational sink and query surface for transaction records.
type Store interface {
	// InsertTransactions persists a batch of records, assigning surrogate IDs.
	InsertTransactions(ctx context.Context, records []*TransactionRecord) error
	// RecordIngestRun persists the bookkeeping row for a completed run.
	RecordIngestRun(ctx context.Context, run IngestRun) error
	// ListTransactions returns all stored transactions ordered by ID.
	ListTransactions(ctx context.Context) ([]StoredTransaction, error)
	// ListTransactionsByCategory returns stored transactions whose category
	// exactly matches the given label, ordered by ID.
	ListTransactionsByCategory(ctx context.Context, category string) ([]StoredTransaction, error)
	// Close releases the underlying connections.
	Close() error
}
