package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"postershop/internal/config"
	"postershop/internal/db"
	"postershop/internal/httpserver"
	"postershop/internal/metrics"
	cartrepo "postershop/internal/repository/cart"
	productrepo "postershop/internal/repository/product"
	reviewrepo "postershop/internal/repository/review"
	sessionrepo "postershop/internal/repository/session"
	userrepo "postershop/internal/repository/user"
	accountsvc "postershop/internal/service/account"
	cartsvc "postershop/internal/service/cart"
	catalogsvc "postershop/internal/service/catalog"
	checkoutsvc "postershop/internal/service/checkout"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, cfg.DBMaxConns)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	m := metrics.New()

	productRepo := productrepo.NewPostgres(dbpool, logger)
	reviewRepo := reviewrepo.NewPostgres(dbpool)
	catalogService := catalogsvc.New(productRepo, reviewRepo)

	cartRepo := cartrepo.NewPostgres(dbpool, logger)
	cartService := cartsvc.New(cartRepo, logger, m)
	checkoutService := checkoutsvc.New(cartService, cartRepo, checkoutsvc.RandomOrderID, logger, m)

	userRepo := userrepo.NewPostgres(dbpool, logger)
	sessionRepo := sessionrepo.NewPostgres(dbpool)
	accountService := accountsvc.New(userRepo, sessionRepo, cfg.SessionTTL, logger)

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CatalogSvc:     catalogService,
		CartSvc:        cartService,
		CheckoutSvc:    checkoutService,
		AccountSvc:     accountService,
		Metrics:        m,
		FrontendOrigin: cfg.FrontendOrigin,
		SecureCookies:  cfg.SecureCookies,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	}
}
