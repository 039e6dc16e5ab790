package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rpggio/bigyear/internal/config"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/sqlite"
	"github.com/rpggio/bigyear/internal/syncer"
	"github.com/rpggio/bigyear/internal/testserver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func syncedConfig(t *testing.T, backend *testserver.Backend) config.Config {
	t.Helper()
	cfg := testConfig()
	cfg.DB.Path = filepath.Join(t.TempDir(), "bigyear.db")
	cfg.Sync.BaseURL = backend.URL()
	cfg.Sync.Debounce = 20 * time.Millisecond
	return cfg
}

func TestSync_RoundTripThroughBackend(t *testing.T) {
	backend := testserver.NewBackend(t)
	ctx := context.Background()

	phone := openSession(t, syncedConfig(t, backend))
	_, err := phone.Start(ctx)
	require.NoError(t, err)

	list, err := phone.Lists.CreateList(ctx, checklist.CreateListRequest{
		Name:           "Year list",
		DimensionID:    "dk-2026",
		SpeciesClasses: []species.Class{species.Aves},
	})
	require.NoError(t, err)

	outcome, err := phone.SyncNow(ctx)
	require.NoError(t, err)
	assert.Equal(t, syncer.OutcomePushed, outcome)

	deviceID := phone.Device.GetOrCreate(ctx)
	remote, err := backend.Store.GetFull(ctx, deviceID)
	require.NoError(t, err)
	require.Len(t, remote.Lists, 1)
	assert.Len(t, remote.Entries, 2)

	t.Run("reinstall with the same device id pulls", func(t *testing.T) {
		reinstalled := openSession(t, syncedConfig(t, backend))
		prefs := sqlite.NewPreferenceRepository(reinstalled.DB)
		require.NoError(t, prefs.SetPreference(ctx, sqlite.PrefDeviceID, deviceID))

		_, err := reinstalled.Start(ctx)
		require.NoError(t, err)

		lists, err := reinstalled.Lists.ListLists(ctx)
		require.NoError(t, err)
		require.Len(t, lists, 1)
		assert.Equal(t, list.ID, lists[0].ID)
	})

	t.Run("other devices see nothing", func(t *testing.T) {
		tablet := openSession(t, syncedConfig(t, backend))
		_, err := tablet.Start(ctx)
		require.NoError(t, err)

		lists, err := tablet.Lists.ListLists(ctx)
		require.NoError(t, err)
		assert.Empty(t, lists)

		outcome, err := tablet.SyncNow(ctx)
		require.NoError(t, err)
		assert.Equal(t, syncer.OutcomeNoop, outcome)
	})
}

func TestSync_EditsArePushedAfterDebounce(t *testing.T) {
	backend := testserver.NewBackend(t)
	ctx := context.Background()

	s := openSession(t, syncedConfig(t, backend))
	_, err := s.Start(ctx)
	require.NoError(t, err)

	list, err := s.Lists.CreateList(ctx, checklist.CreateListRequest{
		DimensionID:    "dk-2026",
		SpeciesClasses: []species.Class{species.Mammalia},
	})
	require.NoError(t, err)
	entries, err := s.Lists.ListEntries(ctx, list.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	_, err = s.Lists.ToggleEntrySeenByID(ctx, entries[0].ID, true)
	require.NoError(t, err)

	deviceID := s.Device.GetOrCreate(ctx)
	require.Eventually(t, func() bool {
		remote, err := backend.Store.GetFull(ctx, deviceID)
		return err == nil && len(remote.Entries) == 1 && remote.Entries[0].Seen
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSync_CloseFlushesPendingEdit(t *testing.T) {
	backend := testserver.NewBackend(t)
	ctx := context.Background()

	cfg := syncedConfig(t, backend)
	cfg.Sync.Debounce = time.Hour
	s := openSession(t, cfg)
	_, err := s.Start(ctx)
	require.NoError(t, err)
	deviceID := s.Device.GetOrCreate(ctx)

	_, err = s.Lists.CreateList(ctx, checklist.CreateListRequest{
		DimensionID:    "dk-2026",
		SpeciesClasses: []species.Class{species.Aves},
	})
	require.NoError(t, err)

	remote, err := backend.Store.GetFull(ctx, deviceID)
	require.NoError(t, err)
	require.Empty(t, remote.Lists, "the debounce timer has not fired yet")

	require.NoError(t, s.Close())

	remote, err = backend.Store.GetFull(ctx, deviceID)
	require.NoError(t, err)
	assert.Len(t, remote.Lists, 1)
	assert.Len(t, remote.Entries, 2)
}
