package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"postershop/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

// DemoEmail and DemoPassword identify the seeded storefront account.
const (
	DemoEmail    = "demo@postershop.local"
	DemoPassword = "posters123"
)

type ProductWriter interface {
	Upsert(ctx context.Context, p domain.Product) (*domain.Product, error)
	SyncIDSequence(ctx context.Context) error
}

type ReviewWriter interface {
	Insert(ctx context.Context, r domain.Review) error
}

type UserWriter interface {
	Upsert(ctx context.Context, u domain.User) (*domain.User, error)
}

// Seeder loads demo data. Every step is idempotent so it can run repeatedly.
type Seeder struct {
	Products ProductWriter
	Reviews  ReviewWriter
	Users    UserWriter
	Logger   *log.Logger
}

func imageURL(slug string) *string {
	u := "https://images.postershop.local/" + slug + ".jpg"
	return &u
}

// Posters is the demo catalog, keyed by explicit ids.
var Posters = []domain.Product{
	{ID: 1, Title: "golden dunes", Description: "Late afternoon light rolling over desert dunes.", PriceCents: 1999, Image: imageURL("golden-dunes")},
	{ID: 2, Title: "Canal Bridge", Description: "A stone bridge over a quiet canal at dusk.", PriceCents: 2499, Image: imageURL("canal-bridge")},
	{ID: 3, Title: "Midnight Ocean", Description: "Moonlit waves in deep blues.", PriceCents: 2999, Image: imageURL("midnight-ocean")},
	{ID: 4, Title: "Glasshouse Palms", Description: "Palms under a Victorian glass roof.", PriceCents: 2199, Image: imageURL("glasshouse-palms")},
	{ID: 5, Title: "Retro Cassette", Description: "A mixtape in bold eighties colours.", PriceCents: 1499, Image: imageURL("retro-cassette")},
	{ID: 6, Title: "Palm Shadows", Description: "Soft palm shadows on a pastel wall.", PriceCents: 1799, Image: imageURL("palm-shadows")},
	{ID: 7, Title: "Sakura Alley", Description: "Cherry blossoms lining a narrow street.", PriceCents: 2699, Image: imageURL("sakura-alley")},
	{ID: 8, Title: "Dune Sunset", Description: "The last light over the dunes.", PriceCents: 1899, Image: imageURL("dune-sunset")},
	{ID: 9, Title: "Alpine Lake", Description: "Still water under snowy peaks.", PriceCents: 3199, Image: imageURL("alpine-lake")},
	{ID: 10, Title: "Neon Diner", Description: "A roadside diner glowing at night.", PriceCents: 2299, Image: imageURL("neon-diner")},
	{ID: 11, Title: "Paper Cranes", Description: "Folded cranes on a minimal background.", PriceCents: 1299, Image: imageURL("paper-cranes")},
	{ID: 12, Title: "Lighthouse Storm", Description: "Waves breaking around a lighthouse.", PriceCents: 2799, Image: imageURL("lighthouse-storm")},
	{ID: 13, Title: "City Rooftops", Description: "Chimneys and rooftops at sunrise.", PriceCents: 1999, Image: imageURL("city-rooftops")},
	{ID: 14, Title: "Botanical Ferns", Description: "Pressed fern study in green ink.", PriceCents: 1599, Image: imageURL("botanical-ferns")},
}

// Reviews are attached to the posters above.
var Reviews = []domain.Review{
	{ID: 1, ProductID: 1, Author: "Mina", Body: "The colours are even warmer in person.", Rating: 5},
	{ID: 2, ProductID: 1, Author: "Jonas", Body: "Great print quality, arrived rolled not folded.", Rating: 4},
	{ID: 3, ProductID: 2, Author: "Priya", Body: "Looks lovely above my desk.", Rating: 5},
	{ID: 4, ProductID: 3, Author: "Leo", Body: "Darker than the preview but still nice.", Rating: 3},
	{ID: 5, ProductID: 5, Author: "Sam", Body: "Instant nostalgia.", Rating: 5},
	{ID: 6, ProductID: 7, Author: "Aiko", Body: "Beautiful pinks.", Rating: 4},
}

// Apply upserts the catalog, its reviews and the demo user.
func (s *Seeder) Apply(ctx context.Context) error {
	logger := s.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	// Spread creation times so "newest first" has a stable order.
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, p := range Posters {
		p.CreatedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		if _, err := s.Products.Upsert(ctx, p); err != nil {
			return fmt.Errorf("upsert poster %d: %w", p.ID, err)
		}
	}
	if err := s.Products.SyncIDSequence(ctx); err != nil {
		return fmt.Errorf("sync product ids: %w", err)
	}
	logger.Printf("seeded %d posters", len(Posters))

	for i, r := range Reviews {
		r.CreatedAt = base.Add(time.Duration(i) * time.Hour)
		if err := s.Reviews.Insert(ctx, r); err != nil {
			return fmt.Errorf("insert review %d: %w", r.ID, err)
		}
	}
	logger.Printf("seeded %d reviews", len(Reviews))

	hash, err := bcrypt.GenerateFromPassword([]byte(DemoPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}
	u, err := s.Users.Upsert(ctx, domain.User{Name: "Demo Shopper", Email: DemoEmail, PasswordHash: string(hash)})
	if err != nil {
		return fmt.Errorf("upsert demo user: %w", err)
	}
	logger.Printf("demo user id=%d email=%s", u.ID, u.Email)
	return nil
}
