package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kayitare/momoledger/pkg/api"
)

type fakeStore struct {
	transactions []api.StoredTransaction
	err          error
}

func (f *fakeStore) InsertTransactions(context.Context, []*api.TransactionRecord) error {
	return nil
}

func (f *fakeStore) RecordIngestRun(context.Context, api.IngestRun) error { return nil }

func (f *fakeStore) ListTransactions(context.Context) ([]api.StoredTransaction, error) {
	return f.transactions, f.err
}

func (f *fakeStore) ListTransactionsByCategory(_ context.Context, category string) ([]api.StoredTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	matched := []api.StoredTransaction{}
	for _, t := range f.transactions {
		if t.Category == category {
			matched = append(matched, t)
		}
	}
	return matched, nil
}

func (f *fakeStore) Close() error { return nil }

func ptr[T any](v T) *T { return &v }

func testHandler(store api.Store) http.Handler {
	return New(store, slog.New(slog.NewTextHandler(io.Discard, nil))).Handler()
}

func sampleTransactions() []api.StoredTransaction {
	return []api.StoredTransaction{
		{
			ID:          1,
			Category:    "Incoming Money",
			Amount:      ptr(int64(5000)),
			Date:        ptr("2024-01-15 10:30:00"),
			Description: "you have received 5000 rwf from john",
		},
		{
			ID:          2,
			Category:    "Payments",
			Description: "your payment was successful",
		},
	}
}

func TestListTransactions(t *testing.T) {
	handler := testHandler(&fakeStore{transactions: sampleTransactions()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got []api.StoredTransaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	require.NotNil(t, got[0].Amount)
	assert.Equal(t, int64(5000), *got[0].Amount)

	// Optional columns serialize as JSON null.
	assert.Nil(t, got[1].Amount)
	assert.Nil(t, got[1].Date)
}

func TestListTransactionsByCategory(t *testing.T) {
	handler := testHandler(&fakeStore{transactions: sampleTransactions()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/Payments", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var got []api.StoredTransaction
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Payments", got[0].Category)
}

// An unknown category is not an error; it simply matches no rows.
func TestListTransactionsByCategory_Unknown(t *testing.T) {
	handler := testHandler(&fakeStore{transactions: sampleTransactions()})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions/Nonsense", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "[]", rec.Body.String())
}

func TestListTransactions_StoreError(t *testing.T) {
	handler := testHandler(&fakeStore{err: errors.New("store down")})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/transactions", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWriteMethodsRejected(t *testing.T) {
	handler := testHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/transactions", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDashboard(t *testing.T) {
	handler := testHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), `id="transactionsChart"`)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/script.js", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fetchTransactions")
}

func TestHealthz(t *testing.T) {
	handler := testHandler(&fakeStore{})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
