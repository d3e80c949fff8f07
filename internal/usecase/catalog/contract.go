package catalog

import (
	"context"

	"github.com/kailas-cloud/medstore/internal/domain/query"
)

// Repository defines the storage contract for one entity kind.
type Repository[T any] interface {
	Create(ctx context.Context, v T, asset []byte) (T, error)
	Update(ctx context.Context, v T, asset []byte) (T, error)
	DeleteBy(ctx context.Context, name, value string) error
	Get(ctx context.Context, id string) (T, error)
	GetAll(ctx context.Context) ([]T, error)
	FindBy(ctx context.Context, conds query.Conditions) ([]T, error)
}
