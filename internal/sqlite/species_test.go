package sqlite

import (
	"context"
	"testing"

	"github.com/rpggio/bigyear/internal/domain/species"
	"github.com/rpggio/bigyear/internal/repository"
	"github.com/stretchr/testify/require"
)

func testSpecies(id string, class species.Class, sortCode int) species.Species {
	return species.Species{
		ID:          id,
		Class:       class,
		DanishName:  "dk-" + id,
		EnglishName: "en-" + id,
		LatinName:   "la-" + id,
		Status:      "A",
		SortCode:    sortCode,
	}
}

func TestSpeciesRepository_PutAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	ctx := context.Background()

	sp := testSpecies("A1", species.Aves, 10)
	require.NoError(t, repo.Put(ctx, &sp))

	got, err := repo.Get(ctx, "A1")
	require.NoError(t, err)
	require.Equal(t, sp, *got)

	sp.DanishName = "Solsort"
	require.NoError(t, repo.Put(ctx, &sp))
	got, err = repo.Get(ctx, "A1")
	require.NoError(t, err)
	require.Equal(t, "Solsort", got.DanishName)

	_, err = repo.Get(ctx, "missing")
	require.Equal(t, repository.ErrNotFound, err)
}

func TestSpeciesRepository_ByClass(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.PutMany(ctx, []species.Species{
		testSpecies("A2", species.Aves, 5),
		testSpecies("A1", species.Aves, 10),
		testSpecies("M1", species.Mammalia, 1),
	}))

	aves, err := repo.GetByClass(ctx, species.Aves)
	require.NoError(t, err)
	require.Len(t, aves, 2)
	require.Equal(t, "A1", aves[0].ID)
	require.Equal(t, "A2", aves[1].ID)

	n, err := repo.CountByClass(ctx, species.Aves)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = repo.CountByClass(ctx, species.Insecta)
	require.NoError(t, err)
	require.Equal(t, 0, n)

	total, err := repo.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, total)
}

func TestSpeciesRepository_ReplaceClass(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.PutMany(ctx, []species.Species{
		testSpecies("A1", species.Aves, 10),
		testSpecies("A2", species.Aves, 5),
		testSpecies("M1", species.Mammalia, 1),
	}))

	err := repo.ReplaceClass(ctx, species.Aves, []species.Species{
		testSpecies("A3", species.Aves, 20),
	})
	require.NoError(t, err)

	aves, err := repo.GetByClass(ctx, species.Aves)
	require.NoError(t, err)
	require.Len(t, aves, 1)
	require.Equal(t, "A3", aves[0].ID)

	mammals, err := repo.GetByClass(ctx, species.Mammalia)
	require.NoError(t, err)
	require.Len(t, mammals, 1, "other classes are untouched")
}

func TestSpeciesRepository_ReplaceClassIsAtomic(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.PutMany(ctx, []species.Species{
		testSpecies("A1", species.Aves, 10),
	}))

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err := repo.ReplaceClass(cancelled, species.Aves, []species.Species{
		testSpecies("A2", species.Aves, 1),
	})
	require.Error(t, err)

	aves, err := repo.GetByClass(ctx, species.Aves)
	require.NoError(t, err)
	require.Len(t, aves, 1)
	require.Equal(t, "A1", aves[0].ID)
}

func TestSpeciesRepository_Delete(t *testing.T) {
	db := NewTestDB(t)
	repo := NewSpeciesRepository(db)
	ctx := context.Background()

	sp := testSpecies("A1", species.Aves, 10)
	require.NoError(t, repo.Put(ctx, &sp))
	require.NoError(t, repo.Delete(ctx, "A1"))

	err := repo.Delete(ctx, "A1")
	require.Equal(t, repository.ErrNotFound, err)
}
