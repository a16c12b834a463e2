// Package controller contains the controller-specific logic for the HTTP API.
package controller

import (
	"context"
	"net/http"
	"time"

	"storeplane/internal/controller/handlers"
	"storeplane/internal/controller/middleware"
)

// Server is the HTTP server for the controller API.
type Server struct {
	httpServer *http.Server
}

// New creates a new controller server. metricsHandler serves the
// Prometheus scrape endpoint; rateLimit/rateLimitBurst bound each owner.
func New(addr string, h *handlers.Handlers, metricsHandler http.Handler, rateLimit float64, rateLimitBurst int) *Server {
	limitMW := middleware.RateLimit(rateLimit, rateLimitBurst)
	protected := func(next http.HandlerFunc) http.Handler {
		return middleware.Auth(limitMW(next))
	}

	mux := http.NewServeMux()

	mux.Handle("POST /stores", protected(h.CreateStore))
	mux.Handle("GET /stores", protected(h.ListStores))
	mux.Handle("GET /stores/{id}", protected(h.GetStore))
	mux.Handle("GET /stores/{id}/status", protected(h.GetStoreStatus))
	mux.Handle("GET /stores/{id}/logs", protected(h.GetStoreLogs))
	mux.Handle("GET /stores/{id}/audit", protected(h.GetStoreAudit))
	mux.Handle("POST /stores/{id}/retry", protected(h.RetryStore))
	mux.Handle("DELETE /stores/{id}", protected(h.DeleteStore))
	mux.Handle("GET /metrics/stores", protected(h.GetStoreMetrics))
	mux.Handle("GET /audit", protected(h.GetRecentAudit))

	// Probes and the scrape endpoint stay unauthenticated.
	mux.HandleFunc("GET /healthz", h.Healthz)
	mux.HandleFunc("GET /readyz", h.Readyz)
	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Run starts the HTTP server. It blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
		shutDownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return s.Shutdown(shutDownCtx)
	}
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
