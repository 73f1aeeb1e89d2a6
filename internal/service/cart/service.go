package cart

import (
	"context"
	"errors"
	"io"
	"log"
	"math"

	"postershop/internal/domain"
	"postershop/internal/metrics"
	cartrepo "postershop/internal/repository/cart"
)

// getOrCreateAttempts bounds the find-then-insert race. A second attempt
// always observes the winner's row.
const getOrCreateAttempts = 2

type Service struct {
	repo    cartrepo.Repository
	logger  *log.Logger
	metrics *metrics.Metrics
}

func New(repo cartrepo.Repository, logger *log.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, logger: logger, metrics: m}
}

// GetOrCreateCart returns the principal's cart id, creating the cart on first
// use. Concurrent first calls converge on a single cart.
func (s *Service) GetOrCreateCart(ctx context.Context, p *domain.Principal) (int64, error) {
	if p == nil {
		return 0, domain.ErrUnauthorized
	}
	var lastErr error
	for attempt := 0; attempt < getOrCreateAttempts; attempt++ {
		id, err := s.repo.FindByUser(ctx, p.ID)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return 0, err
		}
		id, err = s.repo.Insert(ctx, p.ID)
		if err == nil {
			s.logger.Printf("cart service: created cart user_id=%d cart_id=%d", p.ID, id)
			return id, nil
		}
		if !errors.Is(err, domain.ErrAlreadyExists) {
			return 0, err
		}
		lastErr = err
	}
	return 0, lastErr
}

// Load returns a fresh view of the principal's cart.
func (s *Service) Load(ctx context.Context, p *domain.Principal) (*domain.CartView, error) {
	cartID, err := s.GetOrCreateCart(ctx, p)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, cartID)
}

// AddItem increments the product's quantity by qty. A missing or invalid qty
// counts as one.
func (s *Service) AddItem(ctx context.Context, p *domain.Principal, productID int64, qty *float64) (*domain.CartView, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if productID <= 0 {
		return nil, domain.NewValidationError("productId", "must be a positive integer")
	}
	cartID, err := s.GetOrCreateCart(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MergeItem(ctx, cartID, productID, CoerceAddQuantity(qty), cartrepo.MergeAdd); err != nil {
		return nil, err
	}
	s.metrics.CartMutation("add")
	return s.view(ctx, cartID)
}

// SetItemQty sets the exact quantity. Zero removes the line.
func (s *Service) SetItemQty(ctx context.Context, p *domain.Principal, productID int64, qty int) (*domain.CartView, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if productID <= 0 {
		return nil, domain.NewValidationError("productId", "must be a positive integer")
	}
	if qty < 0 {
		return nil, domain.NewValidationError("qty", "must be zero or greater")
	}
	cartID, err := s.GetOrCreateCart(ctx, p)
	if err != nil {
		return nil, err
	}
	if qty == 0 {
		if err := s.repo.DeleteItem(ctx, cartID, productID); err != nil {
			return nil, err
		}
		s.metrics.CartMutation("remove")
		return s.view(ctx, cartID)
	}
	if err := s.repo.MergeItem(ctx, cartID, productID, qty, cartrepo.MergeReplace); err != nil {
		return nil, err
	}
	s.metrics.CartMutation("set")
	return s.view(ctx, cartID)
}

// RemoveItem deletes the line if present.
func (s *Service) RemoveItem(ctx context.Context, p *domain.Principal, productID int64) (*domain.CartView, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if productID <= 0 {
		return nil, domain.NewValidationError("productId", "must be a positive integer")
	}
	cartID, err := s.GetOrCreateCart(ctx, p)
	if err != nil {
		return nil, err
	}
	if err := s.repo.DeleteItem(ctx, cartID, productID); err != nil {
		return nil, err
	}
	s.metrics.CartMutation("remove")
	return s.view(ctx, cartID)
}

// ClearCart deletes every line but keeps the cart itself.
func (s *Service) ClearCart(ctx context.Context, p *domain.Principal) (*domain.CartView, error) {
	cartID, err := s.GetOrCreateCart(ctx, p)
	if err != nil {
		return nil, err
	}
	n, err := s.repo.ClearItems(ctx, cartID)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("cart service: cleared cart_id=%d lines=%d", cartID, n)
	s.metrics.CartMutation("clear")
	return s.view(ctx, cartID)
}

func (s *Service) view(ctx context.Context, cartID int64) (*domain.CartView, error) {
	lines, err := s.repo.ListLines(ctx, cartID)
	if err != nil {
		return nil, err
	}
	return domain.NewCartView(cartID, lines), nil
}

// CoerceAddQuantity turns a client-supplied add quantity into a positive
// integer: missing, non-finite and sub-one values become 1, fractions are
// floored.
func CoerceAddQuantity(qty *float64) int {
	if qty == nil || math.IsNaN(*qty) || math.IsInf(*qty, 0) {
		return 1
	}
	f := math.Floor(*qty)
	if f < 1 {
		return 1
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(f)
}
