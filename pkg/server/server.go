// Package server exposes the read-only HTTP query API over a transaction
// store.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/kayitare/momoledger/pkg/api"
)

// Static dashboard: a table and per-category totals chart over the
// transactions endpoints.
//
//go:embed assets
var assetFiles embed.FS

// Server serves stored transactions as JSON. It is read-only and eventually
// consistent with the last ingestion run.
type Server struct {
	store  api.Store
	logger *slog.Logger
}

// New creates a query API server over the given store.
func New(store api.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: store, logger: logger}
}

// Handler returns the HTTP handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{category}", s.handleListByCategory)
	mux.HandleFunc("GET /healthz", s.handleHealthz)

	dashboard, err := fs.Sub(assetFiles, "assets")
	if err != nil {
		panic(err)
	}
	mux.Handle("GET /", http.FileServerFS(dashboard))

	return s.logRequests(mux)
}

// ListenAndServe runs the API server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.ListenAndServe()
	}()

	s.logger.Info("query API listening", "addr", addr)

	select {
	case err := <-errChan:
		return fmt.Errorf("serving: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	err := <-errChan
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	s.logger.Info("query API stopped")
	return nil
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	transactions, err := s.store.ListTransactions(r.Context())
	if err != nil {
		s.logger.Error("failed to list transactions", "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	s.writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")

	transactions, err := s.store.ListTransactionsByCategory(r.Context(), category)
	if err != nil {
		s.logger.Error("failed to list transactions", "category", category, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to list transactions")
		return
	}

	s.writeJSON(w, http.StatusOK, transactions)
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
