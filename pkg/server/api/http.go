// Package api provides HTTP and WebSocket read endpoints for the
// reconciled gold price.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/history"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/logging"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/metrics"
	"github.com/hasanalirizvi4-crypto/gold-forecast-bot/pkg/reconcile"
)

// Server represents the HTTP API server. The watcher publishes each
// pass result into it; handlers only serve the cached copy and the
// history store, never trigger fetches.
type Server struct {
	addr   string
	store  *history.Store
	server *http.Server
	logger *logging.Logger

	mu     sync.RWMutex
	latest *reconcile.Result

	wsServer *WebSocketServer
}

// NewServer creates a new HTTP API server. store may be nil when
// history persistence is disabled.
func NewServer(addr string, store *history.Store, logger *logging.Logger) *Server {
	return &Server{
		addr:   addr,
		store:  store,
		logger: logger,
	}
}

// SetWebSocketServer sets the WebSocket server for streaming updates.
func (s *Server) SetWebSocketServer(ws *WebSocketServer) {
	s.wsServer = ws
}

// Publish records the latest reconciliation result and forwards it to
// WebSocket clients.
func (s *Server) Publish(result reconcile.Result) {
	s.mu.Lock()
	s.latest = &result
	s.mu.Unlock()

	if s.wsServer != nil {
		s.wsServer.SendUpdate(result)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/price", s.handlePrice)
	mux.HandleFunc("/v1/history", s.handleHistory)

	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	s.logger.Info("Starting HTTP server", "addr", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server error: %w", err)
	}
	return nil
}

// Stop gracefully stops the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.logger.Info("Stopping HTTP server")
		return s.server.Shutdown(ctx)
	}
	return nil
}

// handleHealth handles /health endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	start := time.Now()
	defer func() {
		metrics.RecordHTTPRequest("/health", "200", time.Since(start))
	}()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handlePrice handles /v1/price, returning the latest reconciled price.
func (s *Server) handlePrice(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest(r.URL.Path, status, time.Since(start))
	}()

	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == nil {
		status = "503"
		http.Error(w, "No price available yet", http.StatusServiceUnavailable)
		return
	}

	s.sendJSON(w, latest)
}

// handleHistory handles /v1/history, returning recent snapshots.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "200"
	defer func() {
		metrics.RecordHTTPRequest(r.URL.Path, status, time.Since(start))
	}()

	if s.store == nil {
		status = "404"
		http.Error(w, "History not enabled", http.StatusNotFound)
		return
	}

	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			status = "400"
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		if n > 1000 {
			n = 1000
		}
		limit = n
	}

	values, err := s.store.Recent(limit)
	if err != nil {
		status = "500"
		s.logger.Error("Failed to load history", "error", err)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	s.sendJSON(w, map[string]interface{}{"values": out})
}

// sendJSON sends a JSON response.
func (s *Server) sendJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("Failed to encode JSON response", "error", err)
	}
}
