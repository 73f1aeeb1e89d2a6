package cart

import (
	"context"
	"os"
	"sync"
	"testing"

	"postershop/internal/domain"
	"postershop/internal/migrate"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

func TestPostgres_InsertIsUniquePerUser(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	resetTables(ctx, t, pool)
	userID := insertUser(ctx, t, pool, "a@example.com")

	repo := NewPostgres(pool, nil)
	_, err := repo.FindByUser(ctx, userID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created []int64
		errs    []error
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := repo.Insert(ctx, userID)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
				return
			}
			created = append(created, id)
		}()
	}
	wg.Wait()

	require.Len(t, created, 1)
	require.Len(t, errs, 7)
	for _, err := range errs {
		require.ErrorIs(t, err, domain.ErrAlreadyExists)
	}

	found, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, created[0], found)
}

func TestPostgres_MergeStrategies(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	resetTables(ctx, t, pool)
	userID := insertUser(ctx, t, pool, "b@example.com")
	zebra := insertProduct(ctx, t, pool, "Zebra Stripes", 500)
	alpine := insertProduct(ctx, t, pool, "Alpine Lake", 1000)

	repo := NewPostgres(pool, nil)
	cartID, err := repo.Insert(ctx, userID)
	require.NoError(t, err)

	require.NoError(t, repo.MergeItem(ctx, cartID, zebra, 2, MergeAdd))
	require.NoError(t, repo.MergeItem(ctx, cartID, zebra, 3, MergeAdd))
	require.NoError(t, repo.MergeItem(ctx, cartID, alpine, 4, MergeAdd))
	require.NoError(t, repo.MergeItem(ctx, cartID, alpine, 1, MergeReplace))

	lines, err := repo.ListLines(ctx, cartID)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	require.Equal(t, "Alpine Lake", lines[0].Product.Title)
	require.Equal(t, 1, lines[0].Qty)
	require.Equal(t, "Zebra Stripes", lines[1].Product.Title)
	require.Equal(t, 5, lines[1].Qty)

	err = repo.MergeItem(ctx, cartID, 9999, 1, MergeAdd)
	require.True(t, domain.IsValidation(err), "expected validation error, got %v", err)

	require.NoError(t, repo.DeleteItem(ctx, cartID, zebra))
	require.NoError(t, repo.DeleteItem(ctx, cartID, zebra))

	n, err := repo.ClearItems(ctx, cartID)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	lines, err = repo.ListLines(ctx, cartID)
	require.NoError(t, err)
	require.Empty(t, lines)
}

func TestPostgres_ZeroQtyRowsRejectedByStore(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	require.NoError(t, migrate.Apply(ctx, pool))
	resetTables(ctx, t, pool)
	userID := insertUser(ctx, t, pool, "c@example.com")
	productID := insertProduct(ctx, t, pool, "Retro Cassette", 700)

	repo := NewPostgres(pool, nil)
	cartID, err := repo.Insert(ctx, userID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx, `INSERT INTO cart_items (cart_id, product_id, qty) VALUES ($1, $2, 0)`, cartID, productID)
	require.Error(t, err)
	require.True(t, domain.IsValidation(classifyItemError(err)))
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE cart_items, carts, reviews, products, sessions, users RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

func insertUser(ctx context.Context, t *testing.T, pool *pgxpool.Pool, email string) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `INSERT INTO users (name, email, password_hash) VALUES ('Test', $1, 'x') RETURNING id`, email).Scan(&id)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func insertProduct(ctx context.Context, t *testing.T, pool *pgxpool.Pool, title string, price int64) int64 {
	t.Helper()
	var id int64
	err := pool.QueryRow(ctx, `INSERT INTO products (title, price_cents) VALUES ($1, $2) RETURNING id`, title, price).Scan(&id)
	if err != nil {
		t.Fatalf("insert product: %v", err)
	}
	return id
}
