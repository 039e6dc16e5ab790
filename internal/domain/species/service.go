package species

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/rpggio/bigyear/internal/repository"
)

// Service handles species catalog queries.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new species service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// List returns the species of one class, or all species when class is empty,
// in taxonomic display order.
func (s *Service) List(ctx context.Context, class Class) ([]Species, error) {
	var (
		list []Species
		err  error
	)
	if class == "" {
		list, err = s.repo.GetAll(ctx)
	} else {
		parsed, ok := ParseClass(string(class))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidClass, class)
		}
		list, err = s.repo.GetByClass(ctx, parsed)
	}
	if err != nil {
		return nil, fmt.Errorf("listing species: %w", err)
	}
	SortTaxonomic(list)
	s.logger.Debug("species listed", "class", class, "count", len(list))
	return list, nil
}

// Search returns species whose name contains query, optionally limited to
// one class. A blank query behaves like List.
func (s *Service) Search(ctx context.Context, query string, class Class) ([]Species, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.List(ctx, class)
	}
	opts := SearchOptions{}
	if class != "" {
		parsed, ok := ParseClass(string(class))
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidClass, class)
		}
		opts.Class = parsed
	}
	list, err := s.repo.Search(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("searching species: %w", err)
	}
	SortTaxonomic(list)
	s.logger.Debug("species searched", "query", query, "class", class, "count", len(list))
	return list, nil
}

// Get fetches a species by ID.
func (s *Service) Get(ctx context.Context, id string) (*Species, error) {
	sp, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSpeciesNotFound
		}
		return nil, fmt.Errorf("getting species: %w", err)
	}
	return sp, nil
}

// SortTaxonomic orders species by sort code, then Danish name.
func SortTaxonomic(list []Species) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].SortCode != list[j].SortCode {
			return list[i].SortCode < list[j].SortCode
		}
		return strings.Compare(list[i].DanishName, list[j].DanishName) < 0
	})
}

// FilterByStatus keeps the species whose status falls in category.
// StatusAll returns the input unchanged.
func FilterByStatus(list []Species, category StatusCategory) []Species {
	if category == "" || category == StatusAll {
		return list
	}
	out := make([]Species, 0, len(list))
	for _, sp := range list {
		if StatusCategoryOf(sp.Status) == category {
			out = append(out, sp)
		}
	}
	return out
}
