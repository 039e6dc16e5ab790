package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/species"
)

// SyncStore holds the per-device snapshots served by the sync backend.
// Rows are keyed by (device_id, id); devices never see each other's data.
type SyncStore struct {
	db *DB
}

var syncStoreSchema = []string{
	`CREATE TABLE IF NOT EXISTS remote_lists (
		device_id TEXT NOT NULL,
		list_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		dimension_id TEXT NOT NULL,
		species_classes TEXT NOT NULL DEFAULT '[]',
		PRIMARY KEY (device_id, list_id)
	)`,
	`CREATE TABLE IF NOT EXISTS remote_entries (
		device_id TEXT NOT NULL,
		entry_id TEXT NOT NULL,
		list_id TEXT NOT NULL,
		species_id TEXT NOT NULL,
		seen INTEGER NOT NULL DEFAULT 0,
		seen_at TEXT,
		reference_link TEXT,
		comment TEXT,
		PRIMARY KEY (device_id, entry_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_remote_entries_list ON remote_entries(device_id, list_id)`,
}

// NewSyncStore creates the backend tables if needed and returns the store.
func NewSyncStore(ctx context.Context, db *DB) (*SyncStore, error) {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		return execAll(ctx, tx, syncStoreSchema)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create sync store schema: %w", err)
	}
	return &SyncStore{db: db}, nil
}

// GetFull returns every list and entry stored for deviceID. A device that
// never pushed gets an empty snapshot.
func (s *SyncStore) GetFull(ctx context.Context, deviceID string) (checklist.Snapshot, error) {
	snap := checklist.Snapshot{Lists: []checklist.List{}, Entries: []checklist.Entry{}}

	err := s.db.withTx(ctx, func(tx *sql.Tx) error {
		lists, err := queryRemoteLists(ctx, tx, deviceID)
		if err != nil {
			return err
		}
		entries, err := queryRemoteEntries(ctx, tx, deviceID)
		if err != nil {
			return err
		}
		snap.Lists = append(snap.Lists, lists...)
		snap.Entries = append(snap.Entries, entries...)
		return nil
	})
	if err != nil {
		return checklist.Snapshot{}, err
	}
	return snap, nil
}

// ReplaceFull deletes everything stored for deviceID and inserts snap, in
// one transaction.
func (s *SyncStore) ReplaceFull(ctx context.Context, deviceID string, snap checklist.Snapshot) error {
	return s.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM remote_entries WHERE device_id = ?`, deviceID); err != nil {
			return fmt.Errorf("failed to clear remote entries: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM remote_lists WHERE device_id = ?`, deviceID); err != nil {
			return fmt.Errorf("failed to clear remote lists: %w", err)
		}

		for _, l := range snap.Lists {
			classes, err := encodeClasses(l.SpeciesClasses)
			if err != nil {
				return err
			}
			_, err = tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO remote_lists (device_id, `+listColumns+`)
				VALUES (?, ?, ?, ?, ?, ?)
			`, deviceID, l.ID, l.Name, l.CreatedAt, l.DimensionID, classes)
			if err != nil {
				return fmt.Errorf("failed to store remote list %s: %w", l.ID, err)
			}
		}

		for _, e := range snap.Entries {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO remote_entries (device_id, `+entryColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, deviceID, e.ID, e.ListID, e.SpeciesID, e.Seen, e.SeenAt, e.ReferenceLink, e.Comment)
			if err != nil {
				return fmt.Errorf("failed to store remote entry %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

func queryRemoteLists(ctx context.Context, tx *sql.Tx, deviceID string) ([]checklist.List, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+listColumns+` FROM remote_lists WHERE device_id = ? ORDER BY list_id`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query remote lists: %w", err)
	}
	defer rows.Close()

	var lists []checklist.List
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan remote list: %w", err)
		}
		if l.SpeciesClasses == nil {
			l.SpeciesClasses = []species.Class{}
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

func queryRemoteEntries(ctx context.Context, tx *sql.Tx, deviceID string) ([]checklist.Entry, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM remote_entries WHERE device_id = ? ORDER BY entry_id`, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query remote entries: %w", err)
	}
	defer rows.Close()

	var entries []checklist.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan remote entry: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}
