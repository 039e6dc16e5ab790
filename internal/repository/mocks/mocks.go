package mocks

import (
	"context"

	"github.com/rpggio/bigyear/internal/domain/checklist"
	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/stretchr/testify/mock"
)

// SpeciesRepository is a mock for species.Repository and the species lookups of checklist.
type SpeciesRepository struct {
	mock.Mock
}

func (m *SpeciesRepository) GetAll(ctx context.Context) ([]species.Species, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]species.Species); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SpeciesRepository) Get(ctx context.Context, id string) (*species.Species, error) {
	args := m.Called(ctx, id)
	if sp, ok := args.Get(0).(*species.Species); ok {
		return sp, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SpeciesRepository) Put(ctx context.Context, sp *species.Species) error {
	args := m.Called(ctx, sp)
	return args.Error(0)
}

func (m *SpeciesRepository) PutMany(ctx context.Context, list []species.Species) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *SpeciesRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *SpeciesRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *SpeciesRepository) CountByClass(ctx context.Context, class species.Class) (int, error) {
	args := m.Called(ctx, class)
	return args.Int(0), args.Error(1)
}

func (m *SpeciesRepository) GetByClass(ctx context.Context, class species.Class) ([]species.Species, error) {
	args := m.Called(ctx, class)
	if list, ok := args.Get(0).([]species.Species); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SpeciesRepository) ReplaceClass(ctx context.Context, class species.Class, list []species.Species) error {
	args := m.Called(ctx, class, list)
	return args.Error(0)
}

func (m *SpeciesRepository) Search(ctx context.Context, query string, opts species.SearchOptions) ([]species.Species, error) {
	args := m.Called(ctx, query, opts)
	if list, ok := args.Get(0).([]species.Species); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// DimensionRepository is a mock for dimension.Repository.
type DimensionRepository struct {
	mock.Mock
}

func (m *DimensionRepository) GetAll(ctx context.Context) ([]dimension.Dimension, error) {
	args := m.Called(ctx)
	if list, ok := args.Get(0).([]dimension.Dimension); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DimensionRepository) Get(ctx context.Context, id string) (*dimension.Dimension, error) {
	args := m.Called(ctx, id)
	if dim, ok := args.Get(0).(*dimension.Dimension); ok {
		return dim, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DimensionRepository) Put(ctx context.Context, dim *dimension.Dimension) error {
	args := m.Called(ctx, dim)
	return args.Error(0)
}

func (m *DimensionRepository) PutMany(ctx context.Context, dims []dimension.Dimension) error {
	args := m.Called(ctx, dims)
	return args.Error(0)
}

func (m *DimensionRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *DimensionRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *DimensionRepository) ReplaceAll(ctx context.Context, dims []dimension.Dimension) error {
	args := m.Called(ctx, dims)
	return args.Error(0)
}

// ListRepository is a mock for checklist.ListRepository.
type ListRepository struct {
	mock.Mock
}

func (m *ListRepository) GetAll(ctx context.Context) ([]checklist.List, error) {
	args := m.Called(ctx)
	if lists, ok := args.Get(0).([]checklist.List); ok {
		return lists, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListRepository) Get(ctx context.Context, id string) (*checklist.List, error) {
	args := m.Called(ctx, id)
	if list, ok := args.Get(0).(*checklist.List); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ListRepository) Put(ctx context.Context, list *checklist.List) error {
	args := m.Called(ctx, list)
	return args.Error(0)
}

func (m *ListRepository) PutMany(ctx context.Context, lists []checklist.List) error {
	args := m.Called(ctx, lists)
	return args.Error(0)
}

func (m *ListRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ListRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *ListRepository) CreateWithEntries(ctx context.Context, list *checklist.List, entries []checklist.Entry) error {
	args := m.Called(ctx, list, entries)
	return args.Error(0)
}

func (m *ListRepository) DeleteCascade(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *ListRepository) ReplaceAllListsAndEntries(ctx context.Context, snap checklist.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

// EntryRepository is a mock for checklist.EntryRepository.
type EntryRepository struct {
	mock.Mock
}

func (m *EntryRepository) GetAll(ctx context.Context) ([]checklist.Entry, error) {
	args := m.Called(ctx)
	if entries, ok := args.Get(0).([]checklist.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) Get(ctx context.Context, id string) (*checklist.Entry, error) {
	args := m.Called(ctx, id)
	if entry, ok := args.Get(0).(*checklist.Entry); ok {
		return entry, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) Put(ctx context.Context, entry *checklist.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *EntryRepository) PutMany(ctx context.Context, entries []checklist.Entry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *EntryRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *EntryRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *EntryRepository) CountByList(ctx context.Context, listID string) (int, error) {
	args := m.Called(ctx, listID)
	return args.Int(0), args.Error(1)
}

func (m *EntryRepository) CountSeenByList(ctx context.Context, listID string) (int, error) {
	args := m.Called(ctx, listID)
	return args.Int(0), args.Error(1)
}

func (m *EntryRepository) GetByList(ctx context.Context, listID string) ([]checklist.Entry, error) {
	args := m.Called(ctx, listID)
	if entries, ok := args.Get(0).([]checklist.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *EntryRepository) GetBySpecies(ctx context.Context, speciesID string) ([]checklist.Entry, error) {
	args := m.Called(ctx, speciesID)
	if entries, ok := args.Get(0).([]checklist.Entry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

// PreferenceRepository is a mock for device.Preferences.
type PreferenceRepository struct {
	mock.Mock
}

func (m *PreferenceRepository) GetPreference(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *PreferenceRepository) SetPreference(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *PreferenceRepository) DeletePreference(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// ChangeNotifier is a mock for checklist.ChangeNotifier.
type ChangeNotifier struct {
	mock.Mock
}

func (m *ChangeNotifier) RequestSync() {
	m.Called()
}
