package review

import (
	"context"

	"postershop/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool *pgxpool.Pool
}

// PostgresRepo adds the seeding write path to Repository.
type PostgresRepo interface {
	Repository
	Insert(ctx context.Context, rv domain.Review) error
}

func NewPostgres(pool *pgxpool.Pool) PostgresRepo {
	return &postgresRepo{pool: pool}
}

// ListByProduct returns the product's reviews newest first. An unknown
// product simply has no reviews.
func (r *postgresRepo) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	const q = `
SELECT id, product_id, author, body, rating, created_at
FROM reviews
WHERE product_id = $1
ORDER BY created_at DESC, id DESC
`
	rows, err := r.pool.Query(ctx, q, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []domain.Review{}
	for rows.Next() {
		var rv domain.Review
		if err := rows.Scan(&rv.ID, &rv.ProductID, &rv.Author, &rv.Body, &rv.Rating, &rv.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Insert stores a review row with an explicit id; existing ids are left as is.
func (r *postgresRepo) Insert(ctx context.Context, rv domain.Review) error {
	const q = `
INSERT INTO reviews (id, product_id, author, body, rating, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO NOTHING
`
	_, err := r.pool.Exec(ctx, q, rv.ID, rv.ProductID, rv.Author, rv.Body, rv.Rating, rv.CreatedAt)
	return err
}
