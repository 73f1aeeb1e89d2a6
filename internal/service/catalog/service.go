package catalog

import (
	"context"
	"math"
	"strings"

	"postershop/internal/domain"
	productrepo "postershop/internal/repository/product"
	reviewrepo "postershop/internal/repository/review"
)

// Paging limits for catalog listings.
const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

type Service struct {
	products productrepo.Repository
	reviews  reviewrepo.Repository
}

func New(products productrepo.Repository, reviews reviewrepo.Repository) *Service {
	return &Service{products: products, reviews: reviews}
}

// ListQuery is a listing request as received from a client. Zero values are
// valid and resolve to the defaults.
type ListQuery struct {
	Q        string
	Sort     string
	Page     int
	PageSize int
}

// Normalize clamps paging and resolves unknown sort orders to newest first.
func (q ListQuery) Normalize() ListQuery {
	out := ListQuery{
		Q:        strings.TrimSpace(q.Q),
		Sort:     q.Sort,
		Page:     q.Page,
		PageSize: q.PageSize,
	}
	switch out.Sort {
	case domain.SortNewest, domain.SortPriceAsc, domain.SortPriceDesc:
	default:
		out.Sort = domain.SortNewest
	}
	if out.Page < 0 {
		out.Page = 0
	}
	if out.PageSize < 1 {
		out.PageSize = 1
	}
	if out.PageSize > MaxPageSize {
		out.PageSize = MaxPageSize
	}
	return out
}

// maxOffset bounds the row offset sent to the store. Pages beyond it are
// simply empty.
const maxOffset = math.MaxInt32

// Offset is the number of rows before the page, saturating at maxOffset so
// a huge page number cannot overflow.
func (q ListQuery) Offset() int {
	if q.Page <= 0 || q.PageSize <= 0 {
		return 0
	}
	if q.Page > maxOffset/q.PageSize {
		return maxOffset
	}
	return q.Page * q.PageSize
}

func (s *Service) List(ctx context.Context, in ListQuery) (*domain.ProductPage, error) {
	q := in.Normalize()
	items, total, err := s.products.Search(ctx, productrepo.SearchQuery{
		Title:  q.Q,
		Sort:   q.Sort,
		Limit:  q.PageSize,
		Offset: q.Offset(),
	})
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Product{}
	}
	return &domain.ProductPage{
		Items:      items,
		Page:       q.Page,
		PageSize:   q.PageSize,
		Total:      total,
		TotalPages: TotalPages(total, q.PageSize),
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	if id <= 0 {
		return nil, domain.NewValidationError("id", "invalid id")
	}
	return s.products.GetByID(ctx, id)
}

// Reviews returns the product's reviews, newest first.
func (s *Service) Reviews(ctx context.Context, productID int64) ([]domain.Review, error) {
	if productID <= 0 {
		return nil, domain.NewValidationError("id", "invalid id")
	}
	out, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Review{}
	}
	return out, nil
}

// TotalPages is ceil(total/pageSize) but never less than one.
func TotalPages(total, pageSize int) int {
	if pageSize < 1 {
		pageSize = 1
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}
