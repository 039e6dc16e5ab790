package assets

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyBody indicates an asset decoded to no text at all.
	ErrEmptyBody = errors.New("empty asset body")
	// ErrUnexpectedShape indicates valid JSON that matches no accepted layout.
	ErrUnexpectedShape = errors.New("unexpected asset shape")
	// ErrNotFound indicates the source has no asset at the requested path.
	ErrNotFound = errors.New("asset not found")
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	URL        string
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("fetching %s: %s", e.URL, e.Status)
}

// DecodeError reports an asset that is not valid JSON. Preview holds the
// first characters of the decoded text.
type DecodeError struct {
	URL     string
	Preview string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON from %s: %s", e.URL, e.Preview)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
