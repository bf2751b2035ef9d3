package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

// Server exposes health and Prometheus endpoints next to the bot.
type Server struct {
	httpServer *http.Server
}

// New creates a server listening on addr. version is reported by /healthz.
func New(addr, version string) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           NewRouter(version),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// NewRouter builds the HTTP routes.
func NewRouter(version string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok " + version))
	})
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start serves until Stop is called. A graceful stop is not reported as an error.
func (s *Server) Start() error {
	log.Info().Str("addr", s.httpServer.Addr).Msg("metrics server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
