package cart

import (
	"context"
	"fmt"

	"postershop/internal/domain"
)

// MergeStrategy selects how MergeItem treats an existing (cart, product) row.
type MergeStrategy int

const (
	// MergeAdd increments the stored quantity.
	MergeAdd MergeStrategy = iota + 1
	// MergeReplace overwrites the stored quantity.
	MergeReplace
)

func (s MergeStrategy) String() string {
	switch s {
	case MergeAdd:
		return "add"
	case MergeReplace:
		return "replace"
	default:
		return fmt.Sprintf("MergeStrategy(%d)", int(s))
	}
}

type Repository interface {
	// FindByUser returns the user's cart id or domain.ErrNotFound.
	FindByUser(ctx context.Context, userID int64) (int64, error)
	// Insert creates the user's cart. It returns domain.ErrAlreadyExists when
	// another request created it first.
	Insert(ctx context.Context, userID int64) (int64, error)
	ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error)
	// MergeItem atomically inserts or updates the (cart, product) row.
	MergeItem(ctx context.Context, cartID, productID int64, qty int, strategy MergeStrategy) error
	DeleteItem(ctx context.Context, cartID, productID int64) error
	ClearItems(ctx context.Context, cartID int64) (int64, error)
}
