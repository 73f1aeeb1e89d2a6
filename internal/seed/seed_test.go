package seed

import (
	"context"
	"errors"
	"testing"

	"postershop/internal/domain"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type memProducts struct {
	byID   map[int64]domain.Product
	synced int
}

func (m *memProducts) Upsert(_ context.Context, p domain.Product) (*domain.Product, error) {
	if existing, ok := m.byID[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	}
	m.byID[p.ID] = p
	return &p, nil
}

func (m *memProducts) SyncIDSequence(_ context.Context) error {
	m.synced++
	return nil
}

type memReviews struct {
	byID map[int64]domain.Review
}

func (m *memReviews) Insert(_ context.Context, r domain.Review) error {
	if _, ok := m.byID[r.ID]; !ok {
		m.byID[r.ID] = r
	}
	return nil
}

type memUsers struct {
	byEmail map[string]domain.User
	err     error
}

func (m *memUsers) Upsert(_ context.Context, u domain.User) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	if existing, ok := m.byEmail[u.Email]; ok {
		u.ID = existing.ID
	} else {
		u.ID = int64(len(m.byEmail) + 1)
	}
	m.byEmail[u.Email] = u
	return &u, nil
}

func newSeeder() (*Seeder, *memProducts, *memReviews, *memUsers) {
	p := &memProducts{byID: map[int64]domain.Product{}}
	r := &memReviews{byID: map[int64]domain.Review{}}
	u := &memUsers{byEmail: map[string]domain.User{}}
	return &Seeder{Products: p, Reviews: r, Users: u}, p, r, u
}

func TestApply_Idempotent(t *testing.T) {
	s, products, reviews, users := newSeeder()
	ctx := context.Background()

	require.NoError(t, s.Apply(ctx))
	require.NoError(t, s.Apply(ctx))

	require.Len(t, products.byID, len(Posters))
	require.Len(t, reviews.byID, len(Reviews))
	require.Len(t, users.byEmail, 1)
	require.Equal(t, 2, products.synced)

	demo := users.byEmail[DemoEmail]
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(demo.PasswordHash), []byte(DemoPassword)))
}

func TestCatalogData(t *testing.T) {
	ids := map[int64]bool{}
	for _, p := range Posters {
		require.False(t, ids[p.ID], "duplicate poster id %d", p.ID)
		ids[p.ID] = true
		require.NotEmpty(t, p.Title)
		require.Positive(t, p.PriceCents)
	}
	for _, r := range Reviews {
		require.True(t, ids[r.ProductID], "review %d points at unknown poster", r.ID)
		require.GreaterOrEqual(t, r.Rating, 1)
		require.LessOrEqual(t, r.Rating, 5)
	}
}

func TestApply_NewestOrderIsStable(t *testing.T) {
	s, products, _, _ := newSeeder()
	require.NoError(t, s.Apply(context.Background()))

	last := products.byID[Posters[len(Posters)-1].ID]
	first := products.byID[Posters[0].ID]
	require.True(t, last.CreatedAt.After(first.CreatedAt))
}

func TestApply_PropagatesErrors(t *testing.T) {
	s, _, _, users := newSeeder()
	users.err = errors.New("db down")
	require.ErrorContains(t, s.Apply(context.Background()), "db down")
}
