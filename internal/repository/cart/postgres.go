package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"postershop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres error codes the cart store classifies.
const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeNumericOutOfRange   = "22003"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) FindByUser(ctx context.Context, userID int64) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `SELECT id FROM carts WHERE user_id = $1`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}

func (r *postgresRepo) Insert(ctx context.Context, userID int64) (int64, error) {
	const q = `
INSERT INTO carts (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
RETURNING id
`
	var id int64
	err := r.pool.QueryRow(ctx, q, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrAlreadyExists
		}
		return 0, err
	}
	r.logger.Printf("cart repo: created cart id=%d user_id=%d", id, userID)
	return id, nil
}

func (r *postgresRepo) ListLines(ctx context.Context, cartID int64) ([]domain.CartLine, error) {
	const q = `
SELECT p.id, p.title, p.description, p.price_cents, p.image, p.created_at, ci.qty
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY p.title ASC, p.id ASC
`
	rows, err := r.pool.Query(ctx, q, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []domain.CartLine{}
	for rows.Next() {
		var line domain.CartLine
		p := &line.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.Image, &p.CreatedAt, &line.Qty); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

func (r *postgresRepo) MergeItem(ctx context.Context, cartID, productID int64, qty int, strategy MergeStrategy) error {
	if qty <= 0 {
		return domain.NewValidationError("qty", "must be positive")
	}
	var update string
	switch strategy {
	case MergeAdd:
		update = "cart_items.qty + EXCLUDED.qty"
	case MergeReplace:
		update = "EXCLUDED.qty"
	default:
		return fmt.Errorf("cart repo: unknown merge strategy %s", strategy)
	}

	q := `
INSERT INTO cart_items (cart_id, product_id, qty)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET qty = ` + update

	if _, err := r.pool.Exec(ctx, q, cartID, productID, qty); err != nil {
		if cerr := classifyItemError(err); cerr != nil {
			return cerr
		}
		r.logger.Printf("cart repo: merge cart_id=%d product_id=%d strategy=%s error=%v", cartID, productID, strategy, err)
		return err
	}
	return nil
}

func (r *postgresRepo) DeleteItem(ctx context.Context, cartID, productID int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1 AND product_id = $2`, cartID, productID)
	return err
}

func (r *postgresRepo) ClearItems(ctx context.Context, cartID int64) (int64, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM cart_items WHERE cart_id = $1`, cartID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

// classifyItemError turns constraint failures caused by caller input into
// validation errors. Anything else stays an infrastructure error.
func classifyItemError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case codeForeignKeyViolation:
		return domain.NewValidationError("productId", "unknown product")
	case codeCheckViolation:
		return domain.NewValidationError("qty", "must be positive")
	case codeNumericOutOfRange:
		return domain.NewValidationError("qty", "too large")
	}
	return nil
}
