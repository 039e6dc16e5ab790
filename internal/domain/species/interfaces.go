package species

import "context"

// Repository provides read access to the species catalog.
type Repository interface {
	GetAll(ctx context.Context) ([]Species, error)
	Get(ctx context.Context, id string) (*Species, error)
	GetByClass(ctx context.Context, class Class) ([]Species, error)
	Search(ctx context.Context, query string, opts SearchOptions) ([]Species, error)
}
