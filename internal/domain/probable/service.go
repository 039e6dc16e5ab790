// Package probable ranks species likely to be observed in a given week from
// precomputed weekly observation statistics.
package probable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/rpggio/bigyear/internal/assets"
	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/isoweek"
	"github.com/rpggio/bigyear/internal/repository"
)

// StatSource provides weekly statistics snapshots.
type StatSource interface {
	WeekStat(ctx context.Context, class species.Class, week int) (*assets.WeekStat, error)
}

// TrendSource provides the derived weekly-trend file. A StatSource that also
// implements it decorates candidates with their trend.
type TrendSource interface {
	SpeciesWeeklyTrend(ctx context.Context) ([]assets.WeeklyTrend, error)
}

// EntryRepository provides the entries of a list.
type EntryRepository interface {
	GetByList(ctx context.Context, listID string) ([]checklist.Entry, error)
}

// SpeciesRepository resolves reference records for display.
type SpeciesRepository interface {
	Get(ctx context.Context, id string) (*species.Species, error)
}

// ListResolver resolves the classes a list covers.
type ListResolver interface {
	GetList(ctx context.Context, listID string) (*checklist.List, error)
	ClassesForList(ctx context.Context, list checklist.List) ([]species.Class, error)
}

// Service computes probable species suggestions.
type Service struct {
	stats   StatSource
	entries EntryRepository
	species SpeciesRepository
	lists   ListResolver
	logger  *slog.Logger
}

// NewService creates a new probable species service. lists may be nil, in
// which case every class is in scope for list queries.
func NewService(stats StatSource, entries EntryRepository, speciesRepo SpeciesRepository, lists ListResolver, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		stats:   stats,
		entries: entries,
		species: speciesRepo,
		lists:   lists,
		logger:  logger,
	}
}

// TopUnseenForList ranks the unseen entries of a list that appear in the
// week's statistics of any class in scope. limit <= 0 returns every match.
func (s *Service) TopUnseenForList(ctx context.Context, listID string, week, limit int) (*Result, error) {
	if listID == "" {
		return nil, ErrListRequired
	}
	if !isoweek.Valid(week) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeek, week)
	}

	entries, err := s.entries.GetByList(ctx, listID)
	if err != nil {
		return nil, fmt.Errorf("loading entries: %w", err)
	}
	unseen := make(map[string]checklist.Entry)
	for _, e := range entries {
		if !e.Seen {
			unseen[e.SpeciesID] = e
		}
	}
	if len(unseen) == 0 {
		return &Result{Week: week, Items: []Candidate{}}, nil
	}

	classes, err := s.classesInScope(ctx, listID)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.fetchStats(ctx, classes, week)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	for _, stat := range snapshots {
		for _, row := range stat.Species {
			entry, ok := unseen[row.SpeciesID]
			if !ok {
				continue
			}
			candidates = append(candidates, Candidate{
				EntryID:          entry.ID,
				SpeciesID:        row.SpeciesID,
				RelativeScore:    row.RelativeScore,
				ObservationCount: row.ObservationCount,
			})
		}
	}

	items := truncate(rank(candidates), limit)
	if err := s.resolveNames(ctx, items, nil); err != nil {
		return nil, err
	}
	s.attachTrends(ctx, items)
	return &Result{Week: week, Items: items}, nil
}

// ForClass ranks every species in one class's statistics for the week,
// regardless of any list. Names fall back to the snapshot's Danish name.
func (s *Service) ForClass(ctx context.Context, class species.Class, week, limit int) (*Result, error) {
	class, err := parseClass(class)
	if err != nil {
		return nil, err
	}
	if !isoweek.Valid(week) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeek, week)
	}

	stat, err := s.stats.WeekStat(ctx, class, week)
	if err != nil {
		return nil, fmt.Errorf("loading %s statistics for week %d: %w", class, week, err)
	}

	fallback := make(map[string]string, len(stat.Species))
	candidates := make([]Candidate, 0, len(stat.Species))
	for _, row := range stat.Species {
		candidates = append(candidates, Candidate{
			SpeciesID:        row.SpeciesID,
			RelativeScore:    row.RelativeScore,
			ObservationCount: row.ObservationCount,
		})
		if _, ok := fallback[row.SpeciesID]; !ok {
			fallback[row.SpeciesID] = row.DanishName
		}
	}

	items := truncate(rank(candidates), limit)
	if err := s.resolveNames(ctx, items, fallback); err != nil {
		return nil, err
	}
	s.attachTrends(ctx, items)
	return &Result{Week: week, Items: items}, nil
}

// ForListAndClass ranks the entries of a list, seen or not, that appear in
// one class's statistics for the week. limit <= 0 returns every match.
func (s *Service) ForListAndClass(ctx context.Context, listID string, class species.Class, week, limit int) (*Result, error) {
	if listID == "" {
		return nil, ErrListRequired
	}
	class, err := parseClass(class)
	if err != nil {
		return nil, err
	}
	if !isoweek.Valid(week) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeek, week)
	}

	var (
		stat    *assets.WeekStat
		entries []checklist.Entry
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stat, err = s.stats.WeekStat(gctx, class, week)
		if err != nil {
			return fmt.Errorf("loading %s statistics for week %d: %w", class, week, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		entries, err = s.entries.GetByList(gctx, listID)
		if err != nil {
			return fmt.Errorf("loading entries: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bySpecies := make(map[string]checklist.Entry, len(entries))
	for _, e := range entries {
		bySpecies[e.SpeciesID] = e
	}

	fallback := make(map[string]string)
	var candidates []Candidate
	for _, row := range stat.Species {
		entry, ok := bySpecies[row.SpeciesID]
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			EntryID:          entry.ID,
			SpeciesID:        row.SpeciesID,
			Seen:             entry.Seen,
			RelativeScore:    row.RelativeScore,
			ObservationCount: row.ObservationCount,
		})
		if _, ok := fallback[row.SpeciesID]; !ok {
			fallback[row.SpeciesID] = row.DanishName
		}
	}

	items := truncate(rank(candidates), limit)
	if err := s.resolveNames(ctx, items, fallback); err != nil {
		return nil, err
	}
	s.attachTrends(ctx, items)
	return &Result{Week: week, Items: items}, nil
}

// ObservationCounts maps every species in the week's statistics of the
// list's classes to its highest observation count across those classes.
// A class whose statistics cannot be fetched contributes nothing.
func (s *Service) ObservationCounts(ctx context.Context, listID string, week int) (map[string]int, error) {
	if listID == "" {
		return nil, ErrListRequired
	}
	if !isoweek.Valid(week) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidWeek, week)
	}
	classes, err := s.classesInScope(ctx, listID)
	if err != nil {
		return nil, err
	}
	snapshots, err := s.fetchStats(ctx, classes, week)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int)
	for _, stat := range snapshots {
		for _, row := range stat.Species {
			if prev, ok := counts[row.SpeciesID]; !ok || row.ObservationCount > prev {
				counts[row.SpeciesID] = row.ObservationCount
			}
		}
	}
	return counts, nil
}

func (s *Service) classesInScope(ctx context.Context, listID string) ([]species.Class, error) {
	if s.lists == nil {
		return species.AllClasses, nil
	}
	list, err := s.lists.GetList(ctx, listID)
	if err != nil {
		if errors.Is(err, checklist.ErrListNotFound) {
			return species.AllClasses, nil
		}
		return nil, fmt.Errorf("loading list: %w", err)
	}
	classes, err := s.lists.ClassesForList(ctx, *list)
	if err != nil {
		return nil, fmt.Errorf("resolving list classes: %w", err)
	}
	if len(classes) == 0 {
		return species.AllClasses, nil
	}
	return classes, nil
}

// fetchStats loads the snapshots of every class concurrently. A class whose
// snapshot cannot be fetched counts as having no data for the week.
func (s *Service) fetchStats(ctx context.Context, classes []species.Class, week int) ([]*assets.WeekStat, error) {
	snapshots := make([]*assets.WeekStat, len(classes))

	g, gctx := errgroup.WithContext(ctx)
	for i, class := range classes {
		g.Go(func() error {
			stat, err := s.stats.WeekStat(gctx, class, week)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				s.logger.Warn("week statistics unavailable", "class", class, "week", week, "error", err)
				stat = &assets.WeekStat{Class: class, Week: week}
			}
			snapshots[i] = stat
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snapshots, nil
}

// resolveNames fills display names from the reference data. A species
// missing from the store keeps the fallback Danish name, if any.
func (s *Service) resolveNames(ctx context.Context, items []Candidate, fallback map[string]string) error {
	for i := range items {
		sp, err := s.species.Get(ctx, items[i].SpeciesID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) || errors.Is(err, species.ErrSpeciesNotFound) {
				items[i].DanishName = fallback[items[i].SpeciesID]
				continue
			}
			return fmt.Errorf("resolving species %s: %w", items[i].SpeciesID, err)
		}
		items[i].DanishName = sp.DanishName
		items[i].EnglishName = sp.EnglishName
		items[i].LatinName = sp.LatinName
	}
	return nil
}

// attachTrends copies each species' weekly trend onto items. The trend file
// is optional; when it cannot be read the items are left undecorated.
func (s *Service) attachTrends(ctx context.Context, items []Candidate) {
	source, ok := s.stats.(TrendSource)
	if !ok || len(items) == 0 {
		return
	}
	rows, err := source.SpeciesWeeklyTrend(ctx)
	if err != nil {
		if errors.Is(err, assets.ErrNotFound) {
			s.logger.Debug("weekly trend file missing")
		} else {
			s.logger.Warn("weekly trend unavailable", "error", err)
		}
		return
	}
	trends := make(map[string]string, len(rows))
	for _, r := range rows {
		trends[r.SpeciesID] = r.WeeklyTrend
	}
	for i := range items {
		items[i].WeeklyTrend = trends[items[i].SpeciesID]
	}
}

// rank sorts candidates with Less and keeps the best-ranked candidate of each
// species.
func rank(candidates []Candidate) []Candidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return Less(candidates[i], candidates[j])
	})
	seen := make(map[string]bool, len(candidates))
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.SpeciesID] {
			continue
		}
		seen[c.SpeciesID] = true
		out = append(out, c)
	}
	return out
}

func truncate(items []Candidate, limit int) []Candidate {
	if limit > 0 && len(items) > limit {
		return items[:limit]
	}
	return items
}

func parseClass(class species.Class) (species.Class, error) {
	if class == "" {
		return "", ErrClassRequired
	}
	parsed, ok := species.ParseClass(string(class))
	if !ok {
		return "", fmt.Errorf("%w: %q", species.ErrInvalidClass, class)
	}
	return parsed, nil
}
