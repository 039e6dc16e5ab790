package checklist

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/idgen"
	"github.com/rpggio/bigyear/internal/repository"
)

// Service handles list and entry operations.
type Service struct {
	lists    ListRepository
	entries  EntryRepository
	species  SpeciesRepository
	notifier ChangeNotifier
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new checklist service. notifier and logger may be nil.
func NewService(lists ListRepository, entries EntryRepository, speciesRepo SpeciesRepository, notifier ChangeNotifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		lists:    lists,
		entries:  entries,
		species:  speciesRepo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// CreateListRequest defines list creation inputs.
type CreateListRequest struct {
	Name           string
	DimensionID    string
	SpeciesClasses []species.Class
}

// CreateList creates a list and one unseen entry per species of every
// requested class. The list and its entries are written in one transaction.
func (s *Service) CreateList(ctx context.Context, req CreateListRequest) (*List, error) {
	if strings.TrimSpace(req.DimensionID) == "" {
		return nil, fmt.Errorf("%w: dimension is required", ErrInvalidInput)
	}
	classes, err := normalizeClasses(req.SpeciesClasses)
	if err != nil {
		return nil, err
	}

	now := s.now()
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = fmt.Sprintf("List-%d", now.Year())
	}

	list := &List{
		ID:             idgen.New(),
		Name:           name,
		CreatedAt:      FormatTimestamp(now),
		DimensionID:    req.DimensionID,
		SpeciesClasses: classes,
	}

	var entries []Entry
	for _, class := range classes {
		speciesList, err := s.species.GetByClass(ctx, class)
		if err != nil {
			return nil, fmt.Errorf("loading %s species: %w", class, err)
		}
		for _, sp := range speciesList {
			entries = append(entries, Entry{
				ID:        idgen.New(),
				ListID:    list.ID,
				SpeciesID: sp.ID,
			})
		}
	}

	if err := s.lists.CreateWithEntries(ctx, list, entries); err != nil {
		return nil, fmt.Errorf("creating list: %w", err)
	}

	s.logger.Info("list created", "list_id", list.ID, "classes", classes, "entries", len(entries))
	s.changed()
	return list, nil
}

// ToggleEntrySeen marks entry seen (stamping SeenAt) or unseen (clearing it)
// and persists it.
func (s *Service) ToggleEntrySeen(ctx context.Context, entry Entry, seen bool) (*Entry, error) {
	next := entry
	next.Seen = seen
	next.SeenAt = nil
	if seen {
		ts := FormatTimestamp(s.now())
		next.SeenAt = &ts
	}

	if err := s.entries.Put(ctx, &next); err != nil {
		return nil, fmt.Errorf("saving entry: %w", err)
	}
	s.changed()
	return &next, nil
}

// ToggleEntrySeenByID looks up an entry and toggles it.
func (s *Service) ToggleEntrySeenByID(ctx context.Context, entryID string, seen bool) (*Entry, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	return s.ToggleEntrySeen(ctx, *entry, seen)
}

// UpdateEntryNote sets an entry's reference link and comment. Empty strings clear them.
func (s *Service) UpdateEntryNote(ctx context.Context, entryID, referenceLink, comment string) (*Entry, error) {
	entry, err := s.getEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	entry.ReferenceLink = optionalString(referenceLink)
	entry.Comment = optionalString(comment)

	if err := s.entries.Put(ctx, entry); err != nil {
		return nil, fmt.Errorf("saving entry: %w", err)
	}
	s.changed()
	return entry, nil
}

// RemoveList deletes a list together with all of its entries.
func (s *Service) RemoveList(ctx context.Context, listID string) error {
	if strings.TrimSpace(listID) == "" {
		return fmt.Errorf("%w: list id is required", ErrInvalidInput)
	}
	if err := s.lists.DeleteCascade(ctx, listID); err != nil {
		return fmt.Errorf("removing list: %w", err)
	}
	s.logger.Info("list removed", "list_id", listID)
	s.changed()
	return nil
}

// ListLists returns all lists, newest first.
func (s *Service) ListLists(ctx context.Context) ([]List, error) {
	lists, err := s.lists.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing lists: %w", err)
	}
	sort.SliceStable(lists, func(i, j int) bool {
		if lists[i].CreatedAt != lists[j].CreatedAt {
			return lists[i].CreatedAt > lists[j].CreatedAt
		}
		return lists[i].ID < lists[j].ID
	})
	return lists, nil
}

// GetList fetches a list by ID.
func (s *Service) GetList(ctx context.Context, listID string) (*List, error) {
	list, err := s.lists.Get(ctx, listID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrListNotFound
		}
		return nil, fmt.Errorf("getting list: %w", err)
	}
	return list, nil
}

// ListEntries returns the entries of a list in store order.
func (s *Service) ListEntries(ctx context.Context, listID string) ([]Entry, error) {
	entries, err := s.entries.GetByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}
	return entries, nil
}

// ListProgress returns seen and total entry counts for a list.
func (s *Service) ListProgress(ctx context.Context, listID string) (Progress, error) {
	total, err := s.entries.CountByList(ctx, listID)
	if err != nil {
		return Progress{}, fmt.Errorf("counting entries: %w", err)
	}
	seen, err := s.entries.CountSeenByList(ctx, listID)
	if err != nil {
		return Progress{}, fmt.Errorf("counting seen entries: %w", err)
	}
	return Progress{ListID: listID, Seen: seen, Total: total}, nil
}

// ClassesForList returns the classes a list was created for. Lists synced from
// older clients carry no classes; for those the classes are inferred from the
// species referenced by their entries, in canonical order.
func (s *Service) ClassesForList(ctx context.Context, list List) ([]species.Class, error) {
	if len(list.SpeciesClasses) > 0 {
		return list.SpeciesClasses, nil
	}

	entries, err := s.entries.GetByList(ctx, list.ID)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	found := make(map[species.Class]bool)
	seenSpecies := make(map[string]bool)
	for _, e := range entries {
		if seenSpecies[e.SpeciesID] {
			continue
		}
		seenSpecies[e.SpeciesID] = true
		sp, err := s.species.Get(ctx, e.SpeciesID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolving species %s: %w", e.SpeciesID, err)
		}
		found[sp.Class] = true
	}

	var classes []species.Class
	for _, c := range species.AllClasses {
		if found[c] {
			classes = append(classes, c)
		}
	}
	return classes, nil
}

func (s *Service) getEntry(ctx context.Context, entryID string) (*Entry, error) {
	if strings.TrimSpace(entryID) == "" {
		return nil, fmt.Errorf("%w: entry id is required", ErrInvalidInput)
	}
	entry, err := s.entries.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("getting entry: %w", err)
	}
	return entry, nil
}

func (s *Service) changed() {
	if s.notifier != nil {
		s.notifier.RequestSync()
	}
}

func normalizeClasses(in []species.Class) ([]species.Class, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: select at least one species class", ErrInvalidInput)
	}
	seen := make(map[species.Class]bool, len(in))
	out := make([]species.Class, 0, len(in))
	for _, raw := range in {
		class, ok := species.ParseClass(string(raw))
		if !ok {
			return nil, fmt.Errorf("%w: unknown species class %q", ErrInvalidInput, raw)
		}
		if seen[class] {
			continue
		}
		seen[class] = true
		out = append(out, class)
	}
	return out, nil
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
