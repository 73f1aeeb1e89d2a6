package httpserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"postershop/internal/domain"
	"postershop/internal/metrics"
	accountsvc "postershop/internal/service/account"
	catalogsvc "postershop/internal/service/catalog"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CatalogService interface {
	List(ctx context.Context, q catalogsvc.ListQuery) (*domain.ProductPage, error)
	Get(ctx context.Context, id int64) (*domain.Product, error)
	Reviews(ctx context.Context, productID int64) ([]domain.Review, error)
}

type CartService interface {
	Load(ctx context.Context, p *domain.Principal) (*domain.CartView, error)
	AddItem(ctx context.Context, p *domain.Principal, productID int64, qty *float64) (*domain.CartView, error)
	SetItemQty(ctx context.Context, p *domain.Principal, productID int64, qty int) (*domain.CartView, error)
	RemoveItem(ctx context.Context, p *domain.Principal, productID int64) (*domain.CartView, error)
	ClearCart(ctx context.Context, p *domain.Principal) (*domain.CartView, error)
}

type CheckoutService interface {
	Checkout(ctx context.Context, p *domain.Principal, shippingAddress string) (*domain.Order, error)
}

type AccountService interface {
	Register(ctx context.Context, in accountsvc.RegisterInput) (*accountsvc.Auth, error)
	Login(ctx context.Context, email, password string) (*accountsvc.Auth, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*domain.Principal, error)
}

const defaultFrontendOrigin = "http://localhost:5173"

// Deps bundles the services and settings the router needs.
type Deps struct {
	CatalogSvc  CatalogService
	CartSvc     CartService
	CheckoutSvc CheckoutService
	AccountSvc  AccountService
	Metrics     *metrics.Metrics

	FrontendOrigin string
	SecureCookies  bool
}

func (d Deps) validate() error {
	switch {
	case d.CatalogSvc == nil:
		return errors.New("catalog service is required")
	case d.CartSvc == nil:
		return errors.New("cart service is required")
	case d.CheckoutSvc == nil:
		return errors.New("checkout service is required")
	case d.AccountSvc == nil:
		return errors.New("account service is required")
	}
	return nil
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if err := deps.validate(); err != nil {
		return nil, fmt.Errorf("build router: %w", err)
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if deps.FrontendOrigin == "" {
		deps.FrontendOrigin = defaultFrontendOrigin
	}
	h := &handlers{deps: deps, logger: logger}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(
		requestIDMiddleware(),
		gin.LoggerWithConfig(gin.LoggerConfig{
			Formatter: accessLogFormatter,
			Output:    logger.Writer(),
			SkipPaths: []string{"/healthz", "/metrics"},
		}),
		gin.CustomRecoveryWithWriter(logger.Writer(), func(c *gin.Context, _ any) {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": msgServerError})
		}),
		deps.Metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     []string{deps.FrontendOrigin},
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", headerRequestID},
			ExposeHeaders:    []string{headerRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		sessionMiddleware(deps.AccountSvc, logger),
	)

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))
	router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	auth := router.Group("/auth")
	auth.POST("/register", h.register)
	auth.POST("/login", h.login)
	auth.POST("/logout", h.logout)

	api := router.Group("/api")
	api.GET("/me", h.me)
	api.GET("/products", h.listProducts)
	api.GET("/products/:productId", h.getProduct)
	api.GET("/reviews/:productId", h.listReviews)

	authed := api.Group("", requireAuth())
	authed.GET("/cart", h.getCart)
	authed.POST("/cart/items", h.addCartItem)
	authed.PATCH("/cart/items", h.setCartItemQty)
	authed.DELETE("/cart/items/:productId", h.removeCartItem)
	authed.POST("/cart/clear", h.clearCart)
	authed.POST("/checkout", h.checkout)

	return router, nil
}

type handlers struct {
	deps   Deps
	logger *log.Logger
}
