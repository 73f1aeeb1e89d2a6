package checkout

import (
	"context"
	"io"
	"log"
	"math/rand/v2"
	"strings"
	"unicode/utf8"

	"postershop/internal/domain"
	"postershop/internal/metrics"
)

// MinAddressLength is the shortest accepted shipping address after trimming.
const MinAddressLength = 5

type cartManager interface {
	Load(ctx context.Context, p *domain.Principal) (*domain.CartView, error)
}

type cartClearer interface {
	ClearItems(ctx context.Context, cartID int64) (int64, error)
}

// OrderIDFunc yields a simulated order number.
type OrderIDFunc func() int64

// RandomOrderID returns a number in [0, 1_000_000). Collisions are possible
// since orders are never stored.
func RandomOrderID() int64 {
	return rand.Int64N(1_000_000)
}

type Service struct {
	carts   cartManager
	clearer cartClearer
	orderID OrderIDFunc
	logger  *log.Logger
	metrics *metrics.Metrics
}

func New(carts cartManager, clearer cartClearer, orderID OrderIDFunc, logger *log.Logger, m *metrics.Metrics) *Service {
	if orderID == nil {
		orderID = RandomOrderID
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{carts: carts, clearer: clearer, orderID: orderID, logger: logger, metrics: m}
}

// Checkout simulates placing an order for the principal's cart. The cart must
// be non-empty and the address at least MinAddressLength characters; the
// first failing check wins and leaves the cart untouched. On success the cart
// is emptied and the total is the subtotal observed before clearing.
func (s *Service) Checkout(ctx context.Context, p *domain.Principal, shippingAddress string) (*domain.Order, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	view, err := s.carts.Load(ctx, p)
	if err != nil {
		s.metrics.Checkout(metrics.OutcomeError)
		return nil, err
	}
	if len(view.Items) == 0 {
		s.metrics.Checkout(metrics.OutcomeEmptyCart)
		return nil, domain.ErrEmptyCart
	}
	if utf8.RuneCountInString(strings.TrimSpace(shippingAddress)) < MinAddressLength {
		s.metrics.Checkout(metrics.OutcomeInvalidAddress)
		return nil, domain.ErrInvalidAddress
	}

	order := &domain.Order{OrderID: s.orderID(), TotalCents: view.Subtotal}
	if _, err := s.clearer.ClearItems(ctx, view.CartID); err != nil {
		s.metrics.Checkout(metrics.OutcomeError)
		return nil, err
	}
	s.logger.Printf("checkout service: order_id=%d user_id=%d cart_id=%d total_cents=%d items=%d",
		order.OrderID, p.ID, view.CartID, order.TotalCents, view.ItemCount())
	s.metrics.Checkout(metrics.OutcomeSuccess)
	return order, nil
}
