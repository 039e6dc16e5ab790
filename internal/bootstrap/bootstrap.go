// Package bootstrap loads the reference data (species catalog and dimension
// presets) into the local store.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/metrics"
)

// Catalog provides the reference data files.
type Catalog interface {
	SpeciesFile(ctx context.Context, class species.Class) ([]species.Species, error)
	DimensionsPreset(ctx context.Context) ([]dimension.Dimension, error)
}

// SpeciesStore is the part of the species repository bootstrap writes to.
type SpeciesStore interface {
	CountByClass(ctx context.Context, class species.Class) (int, error)
	ReplaceClass(ctx context.Context, class species.Class, list []species.Species) error
}

// DimensionStore is the part of the dimension repository bootstrap writes to.
type DimensionStore interface {
	ReplaceAll(ctx context.Context, dims []dimension.Dimension) error
}

// Result describes what a run changed.
type Result struct {
	Replaced   []species.Class
	Unchanged  []species.Class
	Dimensions int
}

// Service synchronizes reference data into the store.
type Service struct {
	catalog    Catalog
	species    SpeciesStore
	dimensions DimensionStore
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// NewService creates a bootstrap service. m and logger may be nil.
func NewService(catalog Catalog, speciesStore SpeciesStore, dimensionStore DimensionStore, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		catalog:    catalog,
		species:    speciesStore,
		dimensions: dimensionStore,
		metrics:    m,
		logger:     logger,
	}
}

// Run refreshes every species class whose stored count differs from the
// source, then replaces the dimension presets. Any failure aborts the run.
//
// Staleness is detected by count only: a source edit that keeps the number
// of species per class unchanged is not picked up.
func (s *Service) Run(ctx context.Context) (res Result, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBootstrap(start, err) }()

	for _, class := range species.AllClasses {
		replaced, err := s.syncClass(ctx, class)
		if err != nil {
			return Result{}, err
		}
		if replaced {
			res.Replaced = append(res.Replaced, class)
		} else {
			res.Unchanged = append(res.Unchanged, class)
		}
	}

	dims, err := s.catalog.DimensionsPreset(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("loading dimension presets: %w", err)
	}
	if err := s.dimensions.ReplaceAll(ctx, dims); err != nil {
		return Result{}, fmt.Errorf("storing dimension presets: %w", err)
	}
	res.Dimensions = len(dims)

	s.logger.Info("reference data bootstrapped",
		"replaced", res.Replaced,
		"unchanged", len(res.Unchanged),
		"dimensions", res.Dimensions,
		"duration", time.Since(start))
	return res, nil
}

func (s *Service) syncClass(ctx context.Context, class species.Class) (bool, error) {
	var (
		stored  int
		fetched []species.Species
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.species.CountByClass(gctx, class)
		if err != nil {
			return fmt.Errorf("counting %s species: %w", class, err)
		}
		stored = n
		return nil
	})
	g.Go(func() error {
		list, err := s.catalog.SpeciesFile(gctx, class)
		if err != nil {
			return fmt.Errorf("loading %s species: %w", class, err)
		}
		fetched = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return false, err
	}

	if stored == len(fetched) {
		s.logger.Debug("species class up to date", "class", class, "count", stored)
		return false, nil
	}

	if err := s.species.ReplaceClass(ctx, class, fetched); err != nil {
		return false, fmt.Errorf("replacing %s species: %w", class, err)
	}
	s.metrics.ClassReplaced(string(class))
	s.logger.Info("species class replaced", "class", class, "stored", stored, "source", len(fetched))
	return true, nil
}
