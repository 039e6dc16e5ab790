// Package device provides the stable per-installation identifier sent to the
// sync backend.
package device

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/rpggio/bigyear/internal/idgen"
	"github.com/rpggio/bigyear/internal/repository"
)

// PreferenceKey is the preference the identifier is stored under.
const PreferenceKey = "deviceId"

// Preferences stores scalar preferences.
type Preferences interface {
	GetPreference(ctx context.Context, key string) (string, error)
	SetPreference(ctx context.Context, key, value string) error
}

// Identity hands out the device identifier, creating and persisting it on
// first use.
type Identity struct {
	prefs  Preferences
	logger *slog.Logger

	mu       sync.Mutex
	fallback string
}

// NewIdentity creates an Identity backed by prefs.
func NewIdentity(prefs Preferences, logger *slog.Logger) *Identity {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Identity{prefs: prefs, logger: logger}
}

// GetOrCreate returns the stored identifier, generating one when none exists.
// When preferences cannot be read or written, an identifier that lives only
// as long as this Identity is returned instead of an error.
func (i *Identity) GetOrCreate(ctx context.Context) string {
	i.mu.Lock()
	defer i.mu.Unlock()

	existing, err := i.prefs.GetPreference(ctx, PreferenceKey)
	if err == nil {
		if id := strings.TrimSpace(existing); id != "" {
			return id
		}
	} else if !errors.Is(err, repository.ErrNotFound) {
		i.logger.Warn("device id unavailable, using in-memory id", "error", err)
		return i.memoryID()
	}

	id := idgen.New()
	if err := i.prefs.SetPreference(ctx, PreferenceKey, id); err != nil {
		i.logger.Warn("failed to persist device id, using in-memory id", "error", err)
		return i.memoryID()
	}
	i.logger.Info("device id created", "device_id", id)
	return id
}

func (i *Identity) memoryID() string {
	if i.fallback == "" {
		i.fallback = idgen.New()
	}
	return i.fallback
}
