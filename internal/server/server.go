// Package server exposes the SendFlow client over HTTP. Handlers are
// thin: decode, delegate to the client, encode.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/sendflowai/sendflow-go/pkg/core"
)

// Server wraps an http.Server with the SendFlow route table.
type Server struct {
	client *core.Client
	logger *slog.Logger
	http   *http.Server
}

// New builds a server bound to addr serving the given client.
func New(addr string, client *core.Client, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		client: client,
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/memory", s.handleStoreMemory).Methods(http.MethodPost)
	r.HandleFunc("/memory", s.handleRetrieveMemories).Methods(http.MethodGet)
	r.HandleFunc("/memory/context/{lead_id}", s.handleSynthesizeContext).Methods(http.MethodGet)
	r.HandleFunc("/knowledge", s.handleAddKnowledge).Methods(http.MethodPost)
	r.HandleFunc("/knowledge", s.handleSearchKnowledge).Methods(http.MethodGet)
	r.HandleFunc("/leads/{lead_id}/cadence", s.handleCadence).Methods(http.MethodGet)
	r.Use(s.logRequests)

	s.http = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

// Handler returns the route table for use with httptest or custom
// listeners.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests and stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request handled",
			"method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
