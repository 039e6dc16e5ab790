package checklist

import (
	"context"

	"github.com/rpggio/bigyear/internal/domain/species"
)

// ListRepository provides persistence for lists.
type ListRepository interface {
	GetAll(ctx context.Context) ([]List, error)
	Get(ctx context.Context, id string) (*List, error)
	CreateWithEntries(ctx context.Context, list *List, entries []Entry) error
	DeleteCascade(ctx context.Context, id string) error
}

// EntryRepository provides persistence for entries.
type EntryRepository interface {
	Get(ctx context.Context, id string) (*Entry, error)
	Put(ctx context.Context, entry *Entry) error
	GetByList(ctx context.Context, listID string) ([]Entry, error)
	CountByList(ctx context.Context, listID string) (int, error)
	CountSeenByList(ctx context.Context, listID string) (int, error)
}

// SpeciesRepository provides the species a new list is populated from.
type SpeciesRepository interface {
	GetByClass(ctx context.Context, class species.Class) ([]species.Species, error)
	Get(ctx context.Context, id string) (*species.Species, error)
}

// ChangeNotifier is told about every user-data mutation.
type ChangeNotifier interface {
	RequestSync()
}
