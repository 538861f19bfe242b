// Package server exposes the cache engine over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/semcache-ai/semcache/pkg/config"
	"github.com/semcache-ai/semcache/pkg/engine"
	"github.com/semcache-ai/semcache/pkg/models"
)

const serviceName = "semcache"

// Server is the semcache HTTP API.
type Server struct {
	cfg     *config.Config
	engine  *engine.Engine
	mux     *http.ServeMux
	started time.Time
}

// New creates a Server wired with the admission engine.
func New(cfg *config.Config, eng *engine.Engine) *Server {
	s := &Server{
		cfg:     cfg,
		engine:  eng,
		mux:     http.NewServeMux(),
		started: time.Now(),
	}
	s.mux.HandleFunc("/query", s.handleQuery)
	s.mux.HandleFunc("/health", s.handleHealth)
	return s
}

// ServeHTTP implements http.Handler. The dashboard is served from
// another origin, so every response carries permissive CORS headers.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	s.mux.ServeHTTP(w, r)
}

// ListenAndServe starts the API server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("semcache listening on %s", s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.engine.Query(r.Context(), req.Query, req.ForceRefresh)
	if err != nil {
		if errors.Is(err, engine.ErrEmptyQuery) {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Printf("query failed: %v", err)
		writeJSONError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	hits, misses := s.engine.Stats()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        serviceName,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
		"cache": map[string]int64{
			"hits":   hits,
			"misses": misses,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
