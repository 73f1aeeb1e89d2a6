package catalog

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"testing"
	"time"

	"postershop/internal/domain"
	productrepo "postershop/internal/repository/product"
	"github.com/stretchr/testify/require"
)

type memProducts struct {
	items    []domain.Product
	lastQ    productrepo.SearchQuery
	searchEr error
}

func (m *memProducts) Search(_ context.Context, q productrepo.SearchQuery) ([]domain.Product, int, error) {
	m.lastQ = q
	if m.searchEr != nil {
		return nil, 0, m.searchEr
	}
	var matched []domain.Product
	for _, p := range m.items {
		if q.Title == "" || strings.Contains(strings.ToLower(p.Title), strings.ToLower(q.Title)) {
			matched = append(matched, p)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		switch q.Sort {
		case domain.SortPriceAsc:
			if a.PriceCents != b.PriceCents {
				return a.PriceCents < b.PriceCents
			}
		case domain.SortPriceDesc:
			if a.PriceCents != b.PriceCents {
				return a.PriceCents > b.PriceCents
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})
	total := len(matched)
	if q.Offset >= total {
		return nil, total, nil
	}
	end := q.Offset + q.Limit
	if end > total {
		end = total
	}
	return matched[q.Offset:end], total, nil
}

func (m *memProducts) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range m.items {
		if p.ID == id {
			p := p
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

type memReviews struct {
	byProduct map[int64][]domain.Review
}

func (m *memReviews) ListByProduct(_ context.Context, productID int64) ([]domain.Review, error) {
	return m.byProduct[productID], nil
}

var posterTitles = []string{
	"golden dunes", "Canal Bridge", "Midnight Ocean", "Glasshouse Palms",
	"Retro Cassette", "Palm Shadows", "Sakura Alley", "Dune Sunset",
}

func seededProducts(n int) *memProducts {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m := &memProducts{}
	for i := 0; i < n; i++ {
		m.items = append(m.items, domain.Product{
			ID:         int64(i + 1),
			Title:      posterTitles[i%len(posterTitles)],
			PriceCents: int64(1000 + (i*733)%4000),
			CreatedAt:  base.Add(time.Duration(i) * time.Hour),
		})
	}
	return m
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   ListQuery
		want ListQuery
	}{
		{"zero values", ListQuery{}, ListQuery{Sort: domain.SortNewest, PageSize: 1}},
		{"negative page", ListQuery{Page: -3, PageSize: 12}, ListQuery{Sort: domain.SortNewest, PageSize: 12}},
		{"oversized page", ListQuery{PageSize: 500, Sort: domain.SortPriceAsc}, ListQuery{Sort: domain.SortPriceAsc, PageSize: 50}},
		{"unknown sort", ListQuery{Sort: "cheapest", PageSize: 5}, ListQuery{Sort: domain.SortNewest, PageSize: 5}},
		{"blank q", ListQuery{Q: "   ", PageSize: 12}, ListQuery{Sort: domain.SortNewest, PageSize: 12}},
		{"trimmed q", ListQuery{Q: " dune ", PageSize: 12, Page: 2}, ListQuery{Q: "dune", Sort: domain.SortNewest, PageSize: 12, Page: 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, tc.in.Normalize())
		})
	}
}

func TestTotalPages(t *testing.T) {
	require.Equal(t, 1, TotalPages(0, 12))
	require.Equal(t, 1, TotalPages(12, 12))
	require.Equal(t, 2, TotalPages(13, 12))
	require.Equal(t, 3, TotalPages(25, 12))
	require.Equal(t, 5, TotalPages(5, 1))
}

func TestList_PaginationIsTotalConsistent(t *testing.T) {
	repo := seededProducts(37)
	svc := New(repo, &memReviews{})
	ctx := context.Background()

	for _, size := range []int{1, 5, 12, 50} {
		first, err := svc.List(ctx, ListQuery{PageSize: size})
		require.NoError(t, err)
		require.Equal(t, 37, first.Total)

		seen := map[int64]bool{}
		sum := 0
		for page := 0; page < first.TotalPages; page++ {
			res, err := svc.List(ctx, ListQuery{Page: page, PageSize: size})
			require.NoError(t, err)
			sum += len(res.Items)
			for _, p := range res.Items {
				require.False(t, seen[p.ID], "product %d repeated", p.ID)
				seen[p.ID] = true
			}
		}
		require.Equal(t, first.Total, sum, "pageSize=%d", size)
	}
}

func TestList_EmptyResult(t *testing.T) {
	svc := New(seededProducts(5), &memReviews{})
	res, err := svc.List(context.Background(), ListQuery{Q: "no such poster", PageSize: DefaultPageSize})
	require.NoError(t, err)
	require.Equal(t, 0, res.Total)
	require.Equal(t, 1, res.TotalPages)
	require.NotNil(t, res.Items)
	require.Empty(t, res.Items)
}

func TestList_PastLastPage(t *testing.T) {
	svc := New(seededProducts(5), &memReviews{})
	res, err := svc.List(context.Background(), ListQuery{Page: 9, PageSize: 2})
	require.NoError(t, err)
	require.Empty(t, res.Items)
	require.Equal(t, 9, res.Page)
	require.Equal(t, 3, res.TotalPages)
}

func TestList_Sorting(t *testing.T) {
	svc := New(seededProducts(20), &memReviews{})
	ctx := context.Background()

	asc, err := svc.List(ctx, ListQuery{Sort: domain.SortPriceAsc, PageSize: 50})
	require.NoError(t, err)
	for i := 1; i < len(asc.Items); i++ {
		require.LessOrEqual(t, asc.Items[i-1].PriceCents, asc.Items[i].PriceCents)
	}

	desc, err := svc.List(ctx, ListQuery{Sort: domain.SortPriceDesc, PageSize: 50})
	require.NoError(t, err)
	for i := 1; i < len(desc.Items); i++ {
		require.GreaterOrEqual(t, desc.Items[i-1].PriceCents, desc.Items[i].PriceCents)
	}

	newest, err := svc.List(ctx, ListQuery{Sort: "bogus", PageSize: 50})
	require.NoError(t, err)
	for i := 1; i < len(newest.Items); i++ {
		require.False(t, newest.Items[i].CreatedAt.After(newest.Items[i-1].CreatedAt))
	}
}

func TestList_SearchIsCaseInsensitive(t *testing.T) {
	repo := seededProducts(16)
	svc := New(repo, &memReviews{})
	res, err := svc.List(context.Background(), ListQuery{Q: "DUNE", PageSize: 50})
	require.NoError(t, err)
	require.NotEmpty(t, res.Items)
	for _, p := range res.Items {
		require.Contains(t, strings.ToLower(p.Title), "dune")
	}
	require.Equal(t, "DUNE", repo.lastQ.Title)
}

func TestList_ForwardsOffset(t *testing.T) {
	repo := seededProducts(30)
	svc := New(repo, &memReviews{})
	_, err := svc.List(context.Background(), ListQuery{Page: 2, PageSize: 7})
	require.NoError(t, err)
	require.Equal(t, 7, repo.lastQ.Limit)
	require.Equal(t, 14, repo.lastQ.Offset)
}

func TestList_HugePage(t *testing.T) {
	repo := seededProducts(30)
	svc := New(repo, &memReviews{})
	res, err := svc.List(context.Background(), ListQuery{Page: 922337203685477580, PageSize: 12})
	require.NoError(t, err)
	require.GreaterOrEqual(t, repo.lastQ.Offset, 0)
	require.Equal(t, maxOffset, repo.lastQ.Offset)
	require.Empty(t, res.Items)
	require.Equal(t, 30, res.Total)
	require.Equal(t, 3, res.TotalPages)
	require.Equal(t, 922337203685477580, res.Page)
}

func TestListQuery_Offset(t *testing.T) {
	require.Equal(t, 0, ListQuery{Page: 0, PageSize: 12}.Offset())
	require.Equal(t, 36, ListQuery{Page: 3, PageSize: 12}.Offset())
	require.Equal(t, maxOffset, ListQuery{Page: math.MaxInt64, PageSize: 50}.Offset())
	require.Equal(t, maxOffset, ListQuery{Page: maxOffset, PageSize: 2}.Offset())
}

func TestList_StoreError(t *testing.T) {
	repo := seededProducts(1)
	repo.searchEr = errors.New("boom")
	svc := New(repo, &memReviews{})
	_, err := svc.List(context.Background(), ListQuery{PageSize: 12})
	require.EqualError(t, err, "boom")
}

func TestGet(t *testing.T) {
	svc := New(seededProducts(3), &memReviews{})
	p, err := svc.Get(context.Background(), 2)
	require.NoError(t, err)
	require.Equal(t, int64(2), p.ID)

	_, err = svc.Get(context.Background(), 99)
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), 0)
	require.True(t, domain.IsValidation(err))
}

func TestReviews(t *testing.T) {
	now := time.Now()
	svc := New(seededProducts(1), &memReviews{byProduct: map[int64][]domain.Review{
		1: {{ID: 2, ProductID: 1, CreatedAt: now}, {ID: 1, ProductID: 1, CreatedAt: now.Add(-time.Hour)}},
	}})

	got, err := svc.Reviews(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, int64(2), got[0].ID)

	none, err := svc.Reviews(context.Background(), 5)
	require.NoError(t, err)
	require.NotNil(t, none)
	require.Empty(t, none)

	_, err = svc.Reviews(context.Background(), -1)
	require.True(t, domain.IsValidation(err))
}
