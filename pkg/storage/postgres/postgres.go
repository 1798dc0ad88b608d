// Package postgres provides a PostgreSQL-backed transaction store.
package postgres

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kayitare/momoledger/pkg/api"
)

//go:embed schema.sql
var schemaSQL string

// Config holds the PostgreSQL connection configuration.
type Config struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string

	// MaxPoolSize is the maximum number of connections in the pool.
	MaxPoolSize int
}

// Store is a PostgreSQL transaction store. The pool is owned by the Store and
// released by Close; no package-level connection state exists.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// New connects to PostgreSQL, verifies the connection, and ensures the schema
// exists.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	if cfg.SSLMode == "" {
		cfg.SSLMode = "disable"
	}
	if cfg.MaxPoolSize == 0 {
		cfg.MaxPoolSize = 10
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxPoolSize)
	poolConfig.MinConns = 2
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	logger.Info("connected to PostgreSQL",
		"host", cfg.Host,
		"port", cfg.Port,
		"database", cfg.Database,
	)

	s := &Store{pool: pool, logger: logger}

	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}
	s.logger.Info("schema ensured")
	return nil
}

// InsertTransactions persists a batch of records inside one transaction.
func (s *Store) InsertTransactions(ctx context.Context, records []*api.TransactionRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO transactions (category, amount, date, description)
			VALUES ($1, $2, $3, $4)
		`,
			record.Category,
			record.Amount,
			record.Timestamp,
			record.Description,
		)
	}

	results := tx.SendBatch(ctx, batch)
	for i := range records {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return fmt.Errorf("inserting record %d: %w", i, err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

// RecordIngestRun persists the bookkeeping row for a completed ingestion run.
func (s *Store) RecordIngestRun(ctx context.Context, run api.IngestRun) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO ingest_runs (id, source, started_at, finished_at, inserted)
		VALUES ($1, $2, $3, $4, $5)
	`, run.ID, run.Source, run.StartedAt, run.FinishedAt, run.Inserted)
	if err != nil {
		return fmt.Errorf("recording ingest run: %w", err)
	}
	return nil
}

// ListTransactions returns all stored transactions ordered by ID.
func (s *Store) ListTransactions(ctx context.Context) ([]api.StoredTransaction, error) {
	rows, err := s.pool.Query(ctx, `
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
	rows, err := s.pool.Query(ctx, `
		SELECT id, category, amount, date, description
		FROM transactions
		WHERE category = $1
		ORDER BY id
	`, category)
	if err != nil {
		return nil, fmt.Errorf("querying transactions by category: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows pgx.Rows) ([]api.StoredTransaction, error) {
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

// Close releases the connection pool.
func (s *Store) Close() error {
	if s.pool != nil {
		s.pool.Close()
		s.logger.Info("closed PostgreSQL connection pool")
	}
	return nil
}
