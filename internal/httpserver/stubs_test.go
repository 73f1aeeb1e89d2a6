package httpserver

import (
	"context"
	"io"
	"log"
	"testing"
	"time"

	"postershop/internal/domain"
	"postershop/internal/metrics"
	accountsvc "postershop/internal/service/account"
	catalogsvc "postershop/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

type stubCatalogService struct {
	page      *domain.ProductPage
	product   *domain.Product
	reviews   []domain.Review
	err       error
	lastQuery catalogsvc.ListQuery
	lastID    int64
}

func (s *stubCatalogService) List(_ context.Context, q catalogsvc.ListQuery) (*domain.ProductPage, error) {
	s.lastQuery = q
	if s.err != nil {
		return nil, s.err
	}
	return s.page, nil
}

func (s *stubCatalogService) Get(_ context.Context, id int64) (*domain.Product, error) {
	s.lastID = id
	if s.err != nil {
		return nil, s.err
	}
	return s.product, nil
}

func (s *stubCatalogService) Reviews(_ context.Context, id int64) ([]domain.Review, error) {
	s.lastID = id
	return s.reviews, s.err
}

type stubCartService struct {
	view          *domain.CartView
	err           error
	lastPrincipal *domain.Principal
	lastProductID int64
	lastAddQty    *float64
	lastSetQty    int
	calls         []string
}

func (s *stubCartService) record(op string, p *domain.Principal) (*domain.CartView, error) {
	s.calls = append(s.calls, op)
	s.lastPrincipal = p
	if s.err != nil {
		return nil, s.err
	}
	if s.view == nil {
		return domain.NewCartView(1, nil), nil
	}
	return s.view, nil
}

func (s *stubCartService) Load(_ context.Context, p *domain.Principal) (*domain.CartView, error) {
	return s.record("load", p)
}

func (s *stubCartService) AddItem(_ context.Context, p *domain.Principal, productID int64, qty *float64) (*domain.CartView, error) {
	s.lastProductID, s.lastAddQty = productID, qty
	return s.record("add", p)
}

func (s *stubCartService) SetItemQty(_ context.Context, p *domain.Principal, productID int64, qty int) (*domain.CartView, error) {
	s.lastProductID, s.lastSetQty = productID, qty
	return s.record("set", p)
}

func (s *stubCartService) RemoveItem(_ context.Context, p *domain.Principal, productID int64) (*domain.CartView, error) {
	s.lastProductID = productID
	return s.record("remove", p)
}

func (s *stubCartService) ClearCart(_ context.Context, p *domain.Principal) (*domain.CartView, error) {
	return s.record("clear", p)
}

type stubCheckoutService struct {
	order       *domain.Order
	err         error
	lastAddress string
}

func (s *stubCheckoutService) Checkout(_ context.Context, _ *domain.Principal, addr string) (*domain.Order, error) {
	s.lastAddress = addr
	return s.order, s.err
}

// stubAccountService accepts exactly one token.
type stubAccountService struct {
	token     string
	principal *domain.Principal
	authErr   error
	regErr    error
	loginErr  error
	loggedOut []string
}

func (s *stubAccountService) auth() *accountsvc.Auth {
	return &accountsvc.Auth{User: *s.principal, Token: s.token, ExpiresAt: time.Now().Add(time.Hour)}
}

func (s *stubAccountService) Register(_ context.Context, _ accountsvc.RegisterInput) (*accountsvc.Auth, error) {
	if s.regErr != nil {
		return nil, s.regErr
	}
	return s.auth(), nil
}

func (s *stubAccountService) Login(_ context.Context, _, _ string) (*accountsvc.Auth, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return s.auth(), nil
}

func (s *stubAccountService) Logout(_ context.Context, token string) error {
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

func (s *stubAccountService) Authenticate(_ context.Context, token string) (*domain.Principal, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	if token != s.token {
		return nil, domain.ErrUnauthorized
	}
	return s.principal, nil
}

type testDeps struct {
	catalog  *stubCatalogService
	cart     *stubCartService
	checkout *stubCheckoutService
	account  *stubAccountService
	metrics  *metrics.Metrics
}

func newTestRouter(t *testing.T) (*gin.Engine, *testDeps) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	td := &testDeps{
		catalog:  &stubCatalogService{},
		cart:     &stubCartService{},
		checkout: &stubCheckoutService{},
		account:  &stubAccountService{token: "good-token", principal: &domain.Principal{ID: 7, Email: "me@example.com", Name: "Me"}},
		metrics:  metrics.New(),
	}
	router, err := buildRouter(logDiscard(), nil, Deps{
		CatalogSvc:     td.catalog,
		CartSvc:        td.cart,
		CheckoutSvc:    td.checkout,
		AccountSvc:     td.account,
		Metrics:        td.metrics,
		FrontendOrigin: "http://localhost:5173",
	})
	require.NoError(t, err)
	return router, td
}
