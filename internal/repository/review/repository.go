package review

import (
	"context"

	"postershop/internal/domain"
)

type Repository interface {
	ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error)
}
