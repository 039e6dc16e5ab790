package dimension

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/rpggio/bigyear/internal/idgen"
	"github.com/rpggio/bigyear/internal/repository"
)

// Service handles dimension operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new dimension service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger, now: time.Now}
}

// CreateRequest defines ad-hoc dimension inputs. Zero or negative numbers and
// empty strings are stored as unset.
type CreateRequest struct {
	Year         int
	Month        int
	WeekNumber   int
	LocationID   string
	Municipality string
	Region       string
}

// Create stores a new user-defined dimension.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Dimension, error) {
	if req.Month < 0 || req.Month > 12 {
		return nil, fmt.Errorf("%w: month %d", ErrInvalidInput, req.Month)
	}
	if req.WeekNumber < 0 || req.WeekNumber > 53 {
		return nil, fmt.Errorf("%w: week %d", ErrInvalidInput, req.WeekNumber)
	}

	year := req.Year
	if year <= 0 {
		year = s.now().Year()
	}

	dim := &Dimension{
		ID:           idgen.New(),
		Year:         year,
		Month:        optionalInt(req.Month),
		WeekNumber:   optionalInt(req.WeekNumber),
		LocationID:   optionalString(req.LocationID),
		Municipality: optionalString(req.Municipality),
		Region:       optionalString(req.Region),
	}

	if err := s.repo.Put(ctx, dim); err != nil {
		return nil, fmt.Errorf("creating dimension: %w", err)
	}
	s.logger.Debug("dimension created", "dimension_id", dim.ID, "year", dim.Year)
	return dim, nil
}

// Get fetches a dimension by ID.
func (s *Service) Get(ctx context.Context, id string) (*Dimension, error) {
	dim, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrDimensionNotFound
		}
		return nil, fmt.Errorf("getting dimension: %w", err)
	}
	return dim, nil
}

// List returns all dimensions ordered by ID.
func (s *Service) List(ctx context.Context) ([]Dimension, error) {
	dims, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing dimensions: %w", err)
	}
	sort.SliceStable(dims, func(i, j int) bool {
		return strings.Compare(dims[i].ID, dims[j].ID) < 0
	})
	return dims, nil
}

// Remove deletes a dimension. Lists referencing it keep the dangling ID.
func (s *Service) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrDimensionNotFound
		}
		return fmt.Errorf("removing dimension: %w", err)
	}
	return nil
}

func optionalInt(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

func optionalString(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
