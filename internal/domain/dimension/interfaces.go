package dimension

import "context"

// Repository provides persistence for dimensions.
type Repository interface {
	GetAll(ctx context.Context) ([]Dimension, error)
	Get(ctx context.Context, id string) (*Dimension, error)
	Put(ctx context.Context, dim *Dimension) error
	Delete(ctx context.Context, id string) error
}
