package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"
	"time"
)

// DefaultTimeout bounds a single HTTP asset fetch.
const DefaultTimeout = 30 * time.Second

// Source fetches raw asset bytes by slash-separated path, e.g.
// "Data/Species/SPECIES-Aves.json". A missing asset is reported as
// ErrNotFound.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	// Location renders name as the URL used in error messages.
	Location(name string) string
}

// HTTPSource reads assets from a static web root.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPSource creates an HTTPSource with a timeout-bounded client.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

// Location returns the absolute URL of name.
func (s *HTTPSource) Location(name string) string {
	return s.BaseURL + "/" + strings.TrimLeft(name, "/")
}

// Fetch performs a GET and returns the body of a 2xx response.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	url := s.Location(name)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", url, err)
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: url, StatusCode: resp.StatusCode, Status: resp.Status}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", url, err)
	}
	return data, nil
}

// DirSource reads assets from a file system, typically os.DirFS of a
// checked-out data directory.
type DirSource struct {
	FS   fs.FS
	Root string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{FS: os.DirFS(dir), Root: dir}
}

// Location returns the on-disk path of name.
func (s *DirSource) Location(name string) string {
	return path.Join(s.Root, name)
}

// Fetch reads name from the file system.
func (s *DirSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := fs.ReadFile(s.FS, strings.TrimLeft(name, "/"))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, s.Location(name))
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.Location(name), err)
	}
	return data, nil
}
