package product

import (
	"context"

	"postershop/internal/domain"
)

// SearchQuery is a fully resolved catalog query. Callers normalise paging
// before it reaches the store.
type SearchQuery struct {
	Title  string
	Sort   string
	Limit  int
	Offset int
}

type Repository interface {
	Search(ctx context.Context, q SearchQuery) ([]domain.Product, int, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
}

// Writer is used by catalog loading tools.
type Writer interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	SyncIDSequence(ctx context.Context) error
}
