package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/metrics"
	"github.com/rpggio/bigyear/internal/sqlite"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	db, err := sqlite.Open(ctx, ":memory:", sqlite.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store, err := sqlite.NewSyncStore(ctx, db)
	require.NoError(t, err)

	server := httptest.NewServer(NewServer(store, opts))
	t.Cleanup(server.Close)
	return server
}

func doSync(t *testing.T, method, url, deviceID, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url+"/api/v1/sync/full", reader)
	require.NoError(t, err)
	if deviceID != "" {
		req.Header.Set(DeviceHeader, deviceID)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHTTPServer_Health(t *testing.T) {
	server := newTestServer(t, Options{})

	resp, err := http.Get(server.URL + "/api/v1/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))
}

func TestHTTPServer_SyncRoundTrip(t *testing.T) {
	server := newTestServer(t, Options{})

	resp := doSync(t, http.MethodGet, server.URL, "dev-1", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var empty checklist.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&empty))
	require.NotNil(t, empty.Lists)
	require.Empty(t, empty.Lists)

	payload := `{
		"lists": [{"ListId":"l1","Name":"Mine","CreatedAt":"2026-01-01T00:00:00.000Z","DimensionId":"d","SpeciesClasses":["Aves"]}],
		"entries": [{"EntryId":"e1","ListId":"l1","SpeciesId":"A1","Seen":true,"SeenAt":"2026-01-02T00:00:00.000Z"}]
	}`
	resp = doSync(t, http.MethodPost, server.URL, "dev-1", payload)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.JSONEq(t, `{"ok":true}`, string(body))

	resp = doSync(t, http.MethodGet, server.URL, "dev-1", "")
	var got checklist.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	require.Len(t, got.Lists, 1)
	require.Equal(t, "Mine", got.Lists[0].Name)
	require.Len(t, got.Entries, 1)
	require.True(t, got.Entries[0].Seen)
	require.Nil(t, got.Entries[0].Comment)

	resp = doSync(t, http.MethodGet, server.URL, "dev-2", "")
	var other checklist.Snapshot
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&other))
	require.Empty(t, other.Lists, "devices are isolated")
}

func TestHTTPServer_SyncRequiresDevice(t *testing.T) {
	server := newTestServer(t, Options{})

	resp := doSync(t, http.MethodGet, server.URL, "", "")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHTTPServer_RejectsInvalidPayload(t *testing.T) {
	server := newTestServer(t, Options{})

	resp := doSync(t, http.MethodPost, server.URL, "dev-1", `{"lists": [`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = doSync(t, http.MethodPost, server.URL, "dev-1", `{"entries":[{"EntryId":"e1"}]}`)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHTTPServer_PayloadTooLarge(t *testing.T) {
	server := newTestServer(t, Options{MaxBodyBytes: 16})

	resp := doSync(t, http.MethodPost, server.URL, "dev-1", `{"lists":[],"entries":[],"pad":"xxxxxxxx"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

type failingStore struct{}

func (failingStore) GetFull(context.Context, string) (checklist.Snapshot, error) {
	return checklist.Snapshot{}, errors.New("db locked")
}

func (failingStore) ReplaceFull(context.Context, string, checklist.Snapshot) error {
	return errors.New("db locked")
}

func TestHTTPServer_StoreFailure(t *testing.T) {
	server := httptest.NewServer(NewServer(failingStore{}, Options{}))
	t.Cleanup(server.Close)

	resp := doSync(t, http.MethodGet, server.URL, "dev-1", "")
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	resp = doSync(t, http.MethodPost, server.URL, "dev-1", `{"lists":[],"entries":[]}`)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHTTPServer_Metrics(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)
	server := newTestServer(t, Options{Metrics: m})

	doSync(t, http.MethodGet, server.URL, "dev-1", "")
	doSync(t, http.MethodGet, server.URL, "", "")

	resp, err := http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `bigyear_backend_sync_requests_total{method="GET",status="200"} 1`)
	require.Contains(t, string(body), `bigyear_backend_sync_requests_total{method="GET",status="400"} 1`)
}

func TestHTTPServer_CORS(t *testing.T) {
	server := newTestServer(t, Options{CORSOrigins: ParseOrigins(" http://localhost:5173 , ,https://app.example")})

	req, err := http.NewRequest(http.MethodOptions, server.URL+"/api/v1/sync/full", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-device-id, content-type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
	require.Equal(t, "x-device-id, content-type", resp.Header.Get("Access-Control-Allow-Headers"))

	req, err = http.NewRequest(http.MethodGet, server.URL+"/api/v1/healthz", bytes.NewReader(nil))
	require.NoError(t, err)
	req.Header.Set("Origin", "https://evil.example")
	resp2, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Empty(t, resp2.Header.Get("Access-Control-Allow-Origin"))
}
