package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/stretchr/testify/require"
)

func seedSearchSpecies(t *testing.T, repo *SpeciesRepository) {
	t.Helper()
	list := []species.Species{
		{ID: "A1", Class: species.Aves, DanishName: "Solsort", EnglishName: "Common Blackbird", LatinName: "Turdus merula", Status: "A", SortCode: 20},
		{ID: "A2", Class: species.Aves, DanishName: "Sortspætte", EnglishName: "Black Woodpecker", LatinName: "Dryocopus martius", Status: "A", SortCode: 40},
		{ID: "A3", Class: species.Aves, DanishName: "Havørn", EnglishName: "White-tailed Eagle", LatinName: "Haliaeetus albicilla", Status: "A", SortCode: 10},
		{ID: "M1", Class: species.Mammalia, DanishName: "Sortrotte", EnglishName: "Black Rat", LatinName: "Rattus rattus", Status: "A", SortCode: 5},
		{ID: "M2", Class: species.Mammalia, DanishName: "Ræv_100%", EnglishName: "Red Fox", LatinName: "Vulpes vulpes", Status: "A", SortCode: 6},
	}
	require.NoError(t, repo.PutMany(context.Background(), list))
}

func TestSpeciesRepository_Search(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	seedSearchSpecies(t, repo)
	ctx := context.Background()

	got, err := repo.Search(ctx, "SORT", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"M1", "A1", "A2"}, speciesIDs(got))

	got, err = repo.Search(ctx, "black", species.SearchOptions{Class: species.Aves})
	require.NoError(t, err)
	require.Equal(t, []string{"A1", "A2"}, speciesIDs(got), "matches English names")

	got, err = repo.Search(ctx, "haliaeetus", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"A3"}, speciesIDs(got), "matches Latin names")

	got, err = repo.Search(ctx, "ørn", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"A3"}, speciesIDs(got))
}

func TestSpeciesRepository_SearchFoldsNonASCII(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	seedSearchSpecies(t, repo)
	ctx := context.Background()
	require.NoError(t, repo.PutMany(ctx, []species.Species{
		{ID: "A4", Class: species.Aves, DanishName: "Ørnevåge", EnglishName: "Long-legged Buzzard", LatinName: "Buteo rufinus", Status: "SU", SortCode: 12},
		{ID: "A5", Class: species.Aves, DanishName: "ÆGIR", Status: "A", SortCode: 13},
	}))

	got, err := repo.Search(ctx, "ørn", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"A3", "A4"}, speciesIDs(got))

	got, err = repo.Search(ctx, "ØRNEVÅGE", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"A4"}, speciesIDs(got))

	got, err = repo.Search(ctx, "æg", species.SearchOptions{Class: species.Aves})
	require.NoError(t, err)
	require.Equal(t, []string{"A5"}, speciesIDs(got))
}

func TestSpeciesRepository_SearchEscapesWildcards(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	seedSearchSpecies(t, repo)
	ctx := context.Background()

	got, err := repo.Search(ctx, "%", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"M2"}, speciesIDs(got))

	got, err = repo.Search(ctx, "_", species.SearchOptions{})
	require.NoError(t, err)
	require.Equal(t, []string{"M2"}, speciesIDs(got))
}

func TestSpeciesRepository_SearchLimitOffset(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	seedSearchSpecies(t, repo)
	ctx := context.Background()

	got, err := repo.Search(ctx, "sort", species.SearchOptions{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"M1", "A1"}, speciesIDs(got))

	got, err = repo.Search(ctx, "sort", species.SearchOptions{Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Equal(t, []string{"A2"}, speciesIDs(got))
}

func speciesIDs(list []species.Species) []string {
	ids := make([]string, len(list))
	for i, sp := range list {
		ids[i] = sp.ID
	}
	return ids
}
