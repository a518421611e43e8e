// AngelaMos | 2026
// server_test.go

package server

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Requests addressed with a trailing slash must reach the same handler
// as their slash-less form instead of falling through to a 404.
func TestRouterAcceptsTrailingSlash(t *testing.T) {
	srv := New(Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	router := srv.Router()

	router.Delete(
		"/v1/categories/{slug}",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		},
	)
	router.Get(
		"/v1/titles/{titleID}/reviews",
		func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		},
	)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodDelete, "/v1/categories/films", http.StatusUnauthorized},
		{http.MethodDelete, "/v1/categories/films/", http.StatusUnauthorized},
		{http.MethodGet, "/v1/titles/5/reviews", http.StatusOK},
		{http.MethodGet, "/v1/titles/5/reviews/", http.StatusOK},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)

		assert.Equal(t, tt.want, rec.Code, "%s %s", tt.method, tt.path)
	}
}
