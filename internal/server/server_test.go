package server

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/project-vault/internal/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Store.SQLitePath = ":memory:"
	cfg.Auth.JWTSecret = "server-test-secret-0123456789"
	cfg.Auth.AdminPasswordHash = "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinv"

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	s, err := New(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func TestRoutes(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health/live", http.StatusOK},
		{http.MethodGet, "/health/ready", http.StatusOK},
		{http.MethodGet, "/static/vault.css", http.StatusOK},
		{http.MethodGet, "/static/vault.js", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/login", http.StatusOK},
		{http.MethodGet, "/admin", http.StatusSeeOther},
		{http.MethodGet, "/notes", http.StatusSeeOther},
		{http.MethodGet, "/api/projects", http.StatusOK},
		{http.MethodGet, "/api/notes", http.StatusUnauthorized},
		{http.MethodPost, "/api/projects", http.StatusUnauthorized},
		{http.MethodGet, "/auth/github/login", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			s.Handler().ServeHTTP(rr, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, rr.Code)
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/projects", nil)
	req.Header.Set("Origin", "https://portfolio.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Less(t, rr.Code, 300)
}

func TestEventsStreamReceivesChanges(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	require.Eventually(t, func() bool { return s.broker.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)
	s.broker.PublishChange("projects.changed", "created", "abc")

	buf := make([]byte, 256)
	n, err := resp.Body.Read(buf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(buf[:n]), "event: projects.changed"), "got %q", buf[:n])
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	_, _, err := openStore(context.Background(), config.StoreConfig{Driver: "mysql"}, logger)
	assert.Error(t, err)
}
