package main

import (
	"context"
	"errors"
	"log"
	"os"

	"postershop/internal/config"
	"postershop/internal/db"
	productrepo "postershop/internal/repository/product"
	reviewrepo "postershop/internal/repository/review"
	userrepo "postershop/internal/repository/user"
	"postershop/internal/seed"
	"github.com/joho/godotenv"
)

func main() {
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("load .env: %v", err)
	}
	cfg := config.FromEnv()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, 2)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer pool.Close()

	s := &seed.Seeder{
		Products: productrepo.NewPostgres(pool, nil),
		Reviews:  reviewrepo.NewPostgres(pool),
		Users:    userrepo.NewPostgres(pool, logger),
		Logger:   logger,
	}
	if err := s.Apply(ctx); err != nil {
		logger.Fatalf("seed apply: %v", err)
	}

	logger.Println("seed applied")
}
