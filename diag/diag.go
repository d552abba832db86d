// Package diag serves the shell's local diagnostics endpoint: health,
// version and the service registry's resolution state, on a loopback
// address.
package diag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-hosting/framework/container"
)

// Info identifies the running shell.
type Info struct {
	Name    string    `json:"name"`
	Version string    `json:"version"`
	Started time.Time `json:"started"`
}

// Server is the diagnostics HTTP server.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// New builds the server for addr. The provider is only read (token names and
// resolution state); diagnostics never trigger construction.
func New(addr string, provider *container.Provider, info Info, log *zap.Logger) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "ok",
			"uptime": time.Since(info.Started).Round(time.Second).String(),
		})
	})

	r.Get("/version", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, info)
	})

	r.Get("/services", func(w http.ResponseWriter, _ *http.Request) {
		type service struct {
			Token    string `json:"token"`
			Resolved bool   `json:"resolved"`
		}
		tokens := provider.Tokens()
		services := make([]service, len(tokens))
		for i, tok := range tokens {
			services[i] = service{Token: tok.Name(), Resolved: provider.Resolved(tok)}
		}
		writeJSON(w, http.StatusOK, map[string]any{"services": services})
	})

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Addr returns the configured listen address.
func (s *Server) Addr() string { return s.srv.Addr }

// Start serves in the background. Listen errors surface through the logger;
// the shell keeps running without diagnostics rather than dying for them.
func (s *Server) Start() {
	go func() {
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Warn("diagnostics endpoint stopped", zap.String("addr", s.srv.Addr), zap.Error(err))
		}
	}()
	s.log.Info("diagnostics endpoint listening", zap.String("addr", s.srv.Addr))
}

// Shutdown stops the server, waiting for in-flight requests up to ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// writeJSON sends a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
