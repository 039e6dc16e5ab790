// Package testserver starts in-process bigyear servers for tests.
package testserver

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rpggio/bigyear/internal/mcp"
	"github.com/rpggio/bigyear/internal/metrics"
	"github.com/rpggio/bigyear/internal/sqlite"
	"github.com/rpggio/bigyear/internal/transport"
	"github.com/stretchr/testify/require"
)

// Backend is a sync backend backed by an in-memory store.
type Backend struct {
	Server  *httptest.Server
	Store   *sqlite.SyncStore
	Metrics *metrics.Metrics
}

// NewBackend starts a sync backend. It is closed when the test ends.
func NewBackend(t testing.TB) *Backend {
	t.Helper()

	db, err := sqlite.Open(context.Background(), ":memory:", sqlite.Options{})
	require.NoError(t, err)
	store, err := sqlite.NewSyncStore(context.Background(), db)
	require.NoError(t, err)
	m, err := metrics.New()
	require.NoError(t, err)

	server := httptest.NewServer(transport.NewServer(store, transport.Options{Metrics: m}))
	t.Cleanup(func() {
		server.Close()
		_ = db.Close()
	})

	return &Backend{Server: server, Store: store, Metrics: m}
}

// URL returns the base URL clients should be configured with.
func (b *Backend) URL() string {
	return b.Server.URL
}

// MCPServer is an MCP server on the streamable HTTP transport.
type MCPServer struct {
	Server *httptest.Server
	Token  string
}

// NewMCP serves services over streamable HTTP at /mcp. A non-empty token
// enables bearer authentication.
func NewMCP(t testing.TB, token string, services mcp.Services) *MCPServer {
	t.Helper()

	server := mcp.NewServer(mcp.Config{
		Services:      services,
		TransportMode: "http",
		Token:         token,
	})

	router := chi.NewRouter()
	router.Handle("/mcp", mcp.NewHTTPHandler(server))
	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return &MCPServer{Server: ts, Token: token}
}

// Endpoint returns the MCP endpoint URL.
func (s *MCPServer) Endpoint() string {
	return s.Server.URL + "/mcp"
}

// BearerTransport adds an Authorization header to every request.
type BearerTransport struct {
	Token string
	Base  http.RoundTripper
}

func (b *BearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+b.Token)
	base := b.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}
