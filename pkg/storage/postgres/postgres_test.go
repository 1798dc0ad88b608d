package postgres

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayitare/momoledger/pkg/api"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	if os.Getenv("TEST_POSTGRES_HOST") == "" {
		t.Skip("TEST_POSTGRES_HOST not set, skipping integration test")
	}

	cfg := Config{
		Host:     os.Getenv("TEST_POSTGRES_HOST"),
		Database: os.Getenv("TEST_POSTGRES_DB"),
		User:     os.Getenv("TEST_POSTGRES_USER"),
		Password: os.Getenv("TEST_POSTGRES_PASSWORD"),
	}

	store, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNew_ConnectionFailure(t *testing.T) {
	cfg := Config{
		Host:     "nonexistent-host",
		Port:     5432,
		Database: "momoledger",
		User:     "momoledger",
		Password: "password",
	}

	_, err := New(context.Background(), cfg, slog.New(slog.NewTextHandler(os.Stdout, nil)))
	assert.Error(t, err)
}

func TestInsertAndList(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	amount := int64(5000)
	date := "2024-01-15 10:30:00"
	category := "it-" + uuid.NewString()

	records := []*api.TransactionRecord{
		{Category: category, Amount: &amount, Timestamp: &date, Description: "received 5000 rwf"},
		{Category: category, Description: "deposit pending"},
	}
	require.NoError(t, store.InsertTransactions(ctx, records))

	got, err := store.ListTransactionsByCategory(ctx, category)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Positive(t, got[0].ID)
	require.NotNil(t, got[0].Amount)
	assert.Equal(t, amount, *got[0].Amount)
	require.NotNil(t, got[0].Date)
	assert.Equal(t, date, *got[0].Date)

	// Optional fields persist as NULL and come back as nil.
	assert.Nil(t, got[1].Amount)
	assert.Nil(t, got[1].Date)
	assert.Equal(t, "deposit pending", got[1].Description)
}

func TestListTransactionsByCategory_NoRows(t *testing.T) {
	store := testStore(t)

	got, err := store.ListTransactionsByCategory(context.Background(), "no-such-"+uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRecordIngestRun(t *testing.T) {
	store := testStore(t)

	run := api.IngestRun{
		ID:         uuid.NewString(),
		Source:     "backup.xml",
		StartedAt:  time.Now().Add(-time.Minute),
		FinishedAt: time.Now(),
		Inserted:   42,
	}
	assert.NoError(t, store.RecordIngestRun(context.Background(), run))
}
