// Package server builds the HTTP and gRPC servers of the shop service.
package server

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/abgdnv/flatshop/pkg/config"
	"github.com/abgdnv/flatshop/pkg/web"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewHTTPServer returns a server for handler listening on all interfaces at cfg.Port.
// A zero MaxHeaderBytes keeps net/http's default.
func NewHTTPServer(cfg config.HTTPConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(cfg.Port)),
		Handler:           handler,
		ReadTimeout:       cfg.Timeout.Read,
		WriteTimeout:      cfg.Timeout.Write,
		IdleTimeout:       cfg.Timeout.Idle,
		ReadHeaderTimeout: cfg.Timeout.ReadHeader,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}
}

// NewChiRouter returns the router every shop route hangs off.
// Requests get an X-Request-Id, one access log line and panic recovery,
// and /api/products/ resolves to the same route as /api/products.
func NewChiRouter(logger *slog.Logger) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(
		web.RequestIDInjector,
		web.StructuredLogger(logger),
		web.Recoverer(logger),
		middleware.StripSlashes,
	)
	return mux
}
