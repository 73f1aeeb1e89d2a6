package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"postershop/internal/config"
	"postershop/internal/db"
	"postershop/internal/importer"
	"postershop/internal/repository/product"
	"github.com/joho/godotenv"
)

func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to poster .csv or .xlsx (id,title,description,price_cents,image)")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger := log.New(os.Stdout, "[importer] ", log.LstdFlags|log.LUTC|log.Lshortfile)
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

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatalf("open file: %v", err)
	}
	defer f.Close()

	repo := product.NewPostgres(pool, nil)
	var imp *importer.Importer
	if strings.EqualFold(filepath.Ext(filePath), ".xlsx") {
		info, err := f.Stat()
		if err != nil {
			logger.Fatalf("stat file: %v", err)
		}
		imp, err = importer.NewXLSXImporter(f, info.Size(), repo)
		if err != nil {
			logger.Fatalf("read workbook: %v", err)
		}
	} else {
		imp = importer.NewCSVImporter(f, repo)
	}

	start := time.Now()
	count, err := imp.Run(ctx)
	if err != nil {
		logger.Fatalf("import failed after %d products: %v", count, err)
	}

	fmt.Printf("Imported %d posters in %s\n", count, time.Since(start).Truncate(time.Millisecond))
}
