package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"postershop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// PostgresRepo satisfies both the read and write sides.
type PostgresRepo interface {
	Repository
	Writer
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) PostgresRepo {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const productColumns = `p.id, p.title, p.description, p.price_cents, p.image, p.created_at`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// orderClause maps a sort key to a whitelisted ORDER BY. Every order ends in
// the primary key so pages never overlap.
func orderClause(sort string) string {
	switch sort {
	case domain.SortPriceAsc:
		return "p.price_cents ASC, p.id ASC"
	case domain.SortPriceDesc:
		return "p.price_cents DESC, p.id DESC"
	default:
		return "p.created_at DESC, p.id DESC"
	}
}

// Search counts and pages the matching products inside one read-only
// snapshot so total and items agree.
func (r *postgresRepo) Search(ctx context.Context, q SearchQuery) ([]domain.Product, int, error) {
	var (
		where string
		args  []interface{}
	)
	if title := strings.TrimSpace(q.Title); title != "" {
		args = append(args, "%"+likeEscaper.Replace(title)+"%")
		where = fmt.Sprintf("WHERE p.title ILIKE $%d", len(args))
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	var total int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM products p `+where, args...).Scan(&total); err != nil {
		r.logger.Printf("product repo: count q=%q error=%v", q.Title, err)
		return nil, 0, err
	}

	listArgs := append(args, q.Limit, q.Offset)
	listQuery := fmt.Sprintf(`SELECT %s FROM products p %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		productColumns, where, orderClause(q.Sort), len(listArgs)-1, len(listArgs))

	rows, err := tx.Query(ctx, listQuery, listArgs...)
	if err != nil {
		r.logger.Printf("product repo: search q=%q sort=%s error=%v", q.Title, q.Sort, err)
		return nil, 0, err
	}
	defer rows.Close()

	result := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: search rows q=%q error=%v", q.Title, err)
		return nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	r.logger.Printf("product repo: search q=%q sort=%s offset=%d count=%d total=%d", q.Title, q.Sort, q.Offset, len(result), total)
	return result, total, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products p WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%d not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%d error=%v", id, err)
		return nil, err
	}
	return p, nil
}

// Upsert inserts the product, or replaces the row with the same id. A zero
// id draws the next value from the products sequence and a zero CreatedAt
// means now. Existing rows keep their creation time.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products AS p (id, title, description, price_cents, image, created_at)
VALUES (COALESCE(NULLIF($1, 0), nextval(pg_get_serial_sequence('products', 'id'))), $2, $3, $4, NULLIF($5, ''), COALESCE($6, now()))
ON CONFLICT (id) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    price_cents = EXCLUDED.price_cents,
    image = EXCLUDED.image
RETURNING ` + productColumns
	image := ""
	if product.Image != nil {
		image = *product.Image
	}
	var createdAt *time.Time
	if !product.CreatedAt.IsZero() {
		createdAt = &product.CreatedAt
	}
	res, err := scanProduct(r.pool.QueryRow(ctx, q, product.ID, product.Title, product.Description, product.PriceCents, image, createdAt))
	if err != nil {
		r.logger.Printf("product repo: upsert id=%d title=%q error=%v", product.ID, product.Title, err)
		return nil, err
	}
	r.logger.Printf("product repo: upserted id=%d title=%q", res.ID, res.Title)
	return res, nil
}

// SyncIDSequence moves the id sequence past explicitly inserted ids.
func (r *postgresRepo) SyncIDSequence(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
SELECT setval(pg_get_serial_sequence('products', 'id'), (SELECT COALESCE(MAX(id), 0) + 1 FROM products), false)
`)
	return err
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var p domain.Product
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.Image, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
