// Package syncer reconciles the local checklist data with the optional
// remote sync backend.
package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/rpggio/bigyear/internal/domain/checklist"
)

// FullSyncPath is the backend endpoint exchanging the whole dataset.
const FullSyncPath = "/api/v1/sync/full"

// DeviceHeader carries the device identifier on every backend request.
const DeviceHeader = "X-Device-Id"

// DefaultTimeout bounds a single backend request.
const DefaultTimeout = 15 * time.Second

// DeviceIDSource hands out the identifier sent to the backend.
type DeviceIDSource interface {
	GetOrCreate(ctx context.Context) string
}

// HTTPError is returned for any non-2xx backend response.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	text := e.Body
	if text == "" {
		text = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("Backend %d: %s", e.StatusCode, text)
}

// Client talks to the sync backend.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Device  DeviceIDSource
}

// NewClient creates a client for baseURL. An empty baseURL yields a client
// that reports itself disabled.
func NewClient(baseURL string, device DeviceIDSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: timeout},
		Device:  device,
	}
}

// Enabled reports whether a backend endpoint is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.BaseURL != ""
}

// FetchFull downloads the device's dataset. A response without a JSON body is
// treated as an empty dataset.
func (c *Client) FetchFull(ctx context.Context) (checklist.Snapshot, error) {
	var snap checklist.Snapshot
	if err := c.do(ctx, http.MethodGet, nil, &snap); err != nil {
		return checklist.Snapshot{}, err
	}
	if snap.Lists == nil {
		snap.Lists = []checklist.List{}
	}
	if snap.Entries == nil {
		snap.Entries = []checklist.Entry{}
	}
	return snap, nil
}

// PushFull replaces the device's dataset on the backend with snap.
func (c *Client) PushFull(ctx context.Context, snap checklist.Snapshot) error {
	if snap.Lists == nil {
		snap.Lists = []checklist.List{}
	}
	if snap.Entries == nil {
		snap.Entries = []checklist.Entry{}
	}
	return c.do(ctx, http.MethodPost, snap, nil)
}

func (c *Client) do(ctx context.Context, method string, body any, out any) error {
	url := c.BaseURL + FullSyncPath

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding sync payload: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return fmt.Errorf("building sync request: %w", err)
	}
	if c.Device != nil {
		req.Header.Set(DeviceHeader, c.Device.GetOrCreate(ctx))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading sync response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil || !isJSON(resp.Header.Get("Content-Type")) || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding sync response: %w", err)
	}
	return nil
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "application/json")
	}
	return mediaType == "application/json"
}
