package dimension_test

import (
	"context"
	"testing"

	"github.com/rpggio/bigyear/internal/domain/dimension"
	"github.com/rpggio/bigyear/internal/repository"
	"github.com/rpggio/bigyear/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDimensionService_Create(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.DimensionRepository{}
	repo.On("Put", ctx, mock.Anything).Return(nil)

	svc := dimension.NewService(repo, nil)
	dim, err := svc.Create(ctx, dimension.CreateRequest{Year: 2026, Month: 5, Region: " Nordjylland "})
	require.NoError(t, err)
	require.NotEmpty(t, dim.ID)
	require.Equal(t, 2026, dim.Year)
	require.Equal(t, 5, *dim.Month)
	require.Nil(t, dim.WeekNumber)
	require.Nil(t, dim.Municipality)
	require.Equal(t, "Nordjylland", *dim.Region)
}

func TestDimensionService_CreateDefaultsYear(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.DimensionRepository{}
	repo.On("Put", ctx, mock.Anything).Return(nil)

	dim, err := dimension.NewService(repo, nil).Create(ctx, dimension.CreateRequest{})
	require.NoError(t, err)
	require.Greater(t, dim.Year, 2000)
}

func TestDimensionService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.DimensionRepository{}
	svc := dimension.NewService(repo, nil)

	_, err := svc.Create(ctx, dimension.CreateRequest{Month: 13})
	require.ErrorIs(t, err, dimension.ErrInvalidInput)

	_, err = svc.Create(ctx, dimension.CreateRequest{WeekNumber: 54})
	require.ErrorIs(t, err, dimension.ErrInvalidInput)

	repo.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestDimensionService_ListSorted(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.DimensionRepository{}
	repo.On("GetAll", ctx).Return([]dimension.Dimension{{ID: "b"}, {ID: "a"}}, nil)

	dims, err := dimension.NewService(repo, nil).List(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", dims[0].ID)
}

func TestDimensionService_GetAndRemoveNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.DimensionRepository{}
	repo.On("Get", ctx, "x").Return((*dimension.Dimension)(nil), repository.ErrNotFound)
	repo.On("Delete", ctx, "x").Return(repository.ErrNotFound)

	svc := dimension.NewService(repo, nil)
	_, err := svc.Get(ctx, "x")
	require.ErrorIs(t, err, dimension.ErrDimensionNotFound)
	require.ErrorIs(t, svc.Remove(ctx, "x"), dimension.ErrDimensionNotFound)
	require.ErrorIs(t, svc.Remove(ctx, ""), dimension.ErrInvalidInput)
}
