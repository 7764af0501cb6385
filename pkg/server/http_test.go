package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/abgdnv/flatshop/pkg/config"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
)

func Test_NewHTTPServer(t *testing.T) {
	// given
	var cfg config.HTTPConfig
	cfg.Port = 8080
	cfg.MaxHeaderBytes = 4096
	cfg.Timeout.Read = time.Second
	cfg.Timeout.Write = 2 * time.Second
	cfg.Timeout.Idle = 3 * time.Second
	cfg.Timeout.ReadHeader = 4 * time.Second
	handler := http.NotFoundHandler()
	// when
	srv := NewHTTPServer(cfg, handler)
	// then
	assert.Equal(t, ":8080", srv.Addr)
	assert.Equal(t, 4096, srv.MaxHeaderBytes)
	assert.Equal(t, time.Second, srv.ReadTimeout)
	assert.Equal(t, 2*time.Second, srv.WriteTimeout)
	assert.Equal(t, 3*time.Second, srv.IdleTimeout)
	assert.Equal(t, 4*time.Second, srv.ReadHeaderTimeout)
}

func Test_NewChiRouter(t *testing.T) {
	// given
	mux := NewChiRouter(slog.New(slog.NewJSONHandler(io.Discard, nil)))
	mux.Get("/api/products", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Get("/panic", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})

	testCases := []struct {
		name         string
		path         string
		expectedCode int
	}{
		{name: "Route", path: "/api/products", expectedCode: http.StatusOK},
		{name: "Trailing slash", path: "/api/products/", expectedCode: http.StatusOK},
		{name: "Recovered panic", path: "/panic", expectedCode: http.StatusInternalServerError},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			// when
			mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, tc.path, nil))
			// then
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.NotEmpty(t, rr.Header().Get(middleware.RequestIDHeader))
		})
	}
}
