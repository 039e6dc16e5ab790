// Package idgen generates identifiers for new lists, entries, dimensions and devices.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var newRandom = uuid.NewRandom

// New returns a random UUID string. If the system random source fails it
// falls back to a millisecond timestamp joined with random hex.
func New() string {
	id, err := newRandom()
	if err == nil {
		return id.String()
	}
	return fallback(time.Now())
}

func fallback(now time.Time) string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d-%x", now.UnixMilli(), now.UnixNano())
	}
	return fmt.Sprintf("%d-%s", now.UnixMilli(), hex.EncodeToString(buf))
}
