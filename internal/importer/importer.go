package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"postershop/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	SyncIDSequence(ctx context.Context) error
}

// rowReader yields one record per call and io.EOF after the last one.
type rowReader interface {
	Read() ([]string, error)
}

// Importer reads poster sheets with the columns
// id,title,description,price_cents,image and inserts/updates products.
type Importer struct {
	reader      rowReader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *Importer {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &Importer{
		reader:      csvr,
		productRepo: repo,
	}
}

var requiredColumns = []string{"title", "price_cents"}

// Run parses all rows and upserts each product. Rows with an id replace the
// existing poster; rows without one are inserted. The id sequence is
// realigned afterwards so later inserts do not collide with imported ids,
// also when the import stops at a bad row.
func (i *Importer) Run(ctx context.Context) (imported int, err error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing column %q", col)
		}
	}

	defer func() {
		if err == nil || imported > 0 {
			if syncErr := i.productRepo.SyncIDSequence(ctx); syncErr != nil {
				err = errors.Join(err, fmt.Errorf("sync id sequence: %w", syncErr))
			}
		}
	}()

	line := 1
	for {
		record, readErr := i.reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		line++
		if readErr != nil {
			return imported, fmt.Errorf("read row %d: %w", line, readErr)
		}
		if isBlank(record) {
			continue
		}

		p, parseErr := parseRow(record, index)
		if parseErr != nil {
			return imported, fmt.Errorf("row %d: %w", line, parseErr)
		}
		if _, upsertErr := i.productRepo.Upsert(ctx, p); upsertErr != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Title, upsertErr)
		}
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	var p domain.Product

	if raw := pick(record, index, "id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			return p, fmt.Errorf("invalid id %q", raw)
		}
		p.ID = id
	}

	p.Title = pick(record, index, "title")
	if p.Title == "" {
		return p, errors.New("title is required")
	}
	p.Description = pick(record, index, "description")

	cents, err := strconv.ParseInt(pick(record, index, "price_cents"), 10, 64)
	if err != nil || cents < 0 {
		return p, fmt.Errorf("invalid price_cents for %q", p.Title)
	}
	p.PriceCents = cents

	if img := pick(record, index, "image"); img != "" {
		p.Image = &img
	}
	return p, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
