// Package sqlite provides a SQLite-backed transaction store, the default for
// single-machine use.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/kayitare/momoledger/pkg/api"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    category TEXT NOT NULL,
    amount INTEGER,
    date TEXT,
    description TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions (category);

CREATE TABLE IF NOT EXISTS ingest_runs (
    id TEXT PRIMARY KEY,
    source TEXT NOT NULL,
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL,
    inserted INTEGER NOT NULL
);
`

// Config holds the SQLite store configuration.
type Config struct {
	// Path is the database file path, created on first use.
	Path string
}

// Store is a SQLite transaction store. The handle is owned by the Store and
// released by Close.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (or creates) the SQLite database and ensures the schema exists.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("opened SQLite database", "path", cfg.Path)
	return &Store{db: db, logger: logger}, nil
}

// InsertTransactions persists a batch of records inside one transaction.
func (s *Store) InsertTransactions(ctx context.Context, records []*api.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions (category, amount, date, description)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, record := range records {
		if _, err := stmt.ExecContext(ctx,
			record.Category,
			record.Amount,
			record.Timestamp,
			record.Description,
		); err != nil {
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// RecordIngestRun persists the bookkeeping row for a completed ingestion run.
func (s *Store) RecordIngestRun(ctx context.Context, run api.IngestRun) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ingest_runs (id, source, started_at, finished_at, inserted)
		VALUES (?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Source,
		run.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		run.FinishedAt.UTC().Format("2006-01-02 15:04:05"),
		run.Inserted,
	)
	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}
	return nil
}

// ListTransactions returns all stored transactions ordered by ID.
func (s *Store) ListTransactions(ctx context.Context) ([]api.StoredTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, date, description
		FROM transactions
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// ListTransactionsByCategory returns stored transactions matching the exact
// category label, ordered by ID.
func (s *Store) ListTransactionsByCategory(ctx context.Context, category string) ([]api.StoredTransaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, category, amount, date, description
		FROM transactions
		WHERE category = ?
		ORDER BY id
	`, category)
	if err != nil {
		return nil, fmt.Errorf("querying transactions by category: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]api.StoredTransaction, error) {
	transactions := []api.StoredTransaction{}
	for rows.Next() {
		var t api.StoredTransaction
		if err := rows.Scan(&t.ID, &t.Category, &t.Amount, &t.Date, &t.Description); err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transactions: %w", err)
	}
	return transactions, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing database: %w", err)
	}
	s.logger.Info("closed SQLite database")
	return nil
}
