// Command seed-db runs the schema migrations and loads demo catalog data,
// the address lookup tables and an admin API key into the database.
package main

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/keoshop/storefront/internal/domain/catalog"
	"github.com/keoshop/storefront/internal/storage/postgres"
)

func main() {
	var (
		databaseURL  string
		apiKey       string
		apiKeyPepper string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&apiKey, "api-key", "", "admin API key to seed (or STORE_SEED_API_KEY env)")
	flag.StringVar(&apiKeyPepper, "api-key-pepper", "", "HMAC pepper for API key hashing (or STORE_API_KEY_PEPPER env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if apiKey == "" {
		apiKey = os.Getenv("STORE_SEED_API_KEY")
	}
	if apiKey == "" {
		slog.Error("API key is required: set --api-key or STORE_SEED_API_KEY")
		os.Exit(1)
	}
	if apiKeyPepper == "" {
		apiKeyPepper = os.Getenv("STORE_API_KEY_PEPPER")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, apiKey, apiKeyPepper); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, apiKey, pepper string) error {
	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	if err := seedCatalog(ctx, pool); err != nil {
		return errors.Wrap(err, "seed catalog")
	}
	if err := seedLocations(ctx, pool); err != nil {
		return errors.Wrap(err, "seed locations")
	}
	if err := seedAPIKey(ctx, pool, apiKey, pepper); err != nil {
		return errors.Wrap(err, "seed api key")
	}

	return nil
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) error {
	now := time.Now()
	categories := postgres.NewCategoryRepository(pool)
	products := postgres.NewProductRepository(pool)

	demoCategories := []catalog.Category{
		{ID: "keo-truyen-thong", Name: "Kẹo truyền thống", Description: "Kẹo lạc, kẹo dồi, kẹo vừng", CreatedAt: now},
		{ID: "banh-dac-san", Name: "Bánh đặc sản", Description: "Bánh cáy, bánh đậu xanh", CreatedAt: now},
	}
	for _, c := range demoCategories {
		if err := categories.Create(ctx, &c); err != nil && !errors.Is(err, catalog.ErrCategoryTaken) {
			return errors.Wrapf(err, "create category %s", c.ID)
		}
		slog.Info("seeded category", slog.String("id", c.ID))
	}

	demoProducts := []catalog.Product{
		{
			ID: "keo-lac-vung-300g", Name: "Kẹo lạc vừng 300g",
			Description: "Kẹo lạc vừng giòn tan, đóng hộp 300g",
			CategoryID:  "keo-truyen-thong",
			Price:       decimal.NewFromInt(100000), Stock: 120,
			Image: "keo-lac-vung-300g.jpg", Active: true,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "keo-doi-200g", Name: "Kẹo dồi 200g",
			Description: "Kẹo dồi truyền thống, túi 200g",
			CategoryID:  "keo-truyen-thong",
			Price:       decimal.NewFromInt(75000), Stock: 80,
			Image: "keo-doi-200g.jpg", Active: true,
			CreatedAt: now, UpdatedAt: now,
		},
		{
			ID: "banh-cay-500g", Name: "Bánh cáy làng Nguyễn 500g",
			Description: "Bánh cáy đặc sản Thái Bình, hộp 500g",
			CategoryID:  "banh-dac-san",
			Price:       decimal.NewFromInt(90000), Stock: 60,
			Image: "banh-cay-500g.jpg", Active: true,
			CreatedAt: now, UpdatedAt: now,
		},
	}
	for _, p := range demoProducts {
		if err := products.Upsert(ctx, &p); err != nil {
			return errors.Wrapf(err, "upsert product %s", p.ID)
		}
		slog.Info("seeded product", slog.String("id", p.ID))
	}

	return nil
}

const (
	upsertProvinceSQL = `INSERT INTO provinces (code, name) VALUES ($1, $2)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name`
	upsertDistrictSQL = `INSERT INTO districts (code, name, province_code) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, province_code = EXCLUDED.province_code`
	upsertWardSQL = `INSERT INTO wards (code, name, district_code) VALUES ($1, $2, $3)
		ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, district_code = EXCLUDED.district_code`
)

func seedLocations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("seeding demo locations")

	provinces := [][2]string{
		{"01", "Hà Nội"},
		{"34", "Thái Bình"},
	}
	districts := [][3]string{
		{"001", "Ba Đình", "01"},
		{"002", "Hoàn Kiếm", "01"},
		{"338", "Đông Hưng", "34"},
	}
	wards := [][3]string{
		{"00001", "Phúc Xá", "001"},
		{"00037", "Hàng Bạc", "002"},
		{"12433", "Nguyên Xá", "338"},
	}

	for _, p := range provinces {
		if _, err := pool.Exec(ctx, upsertProvinceSQL, p[0], p[1]); err != nil {
			return errors.Wrapf(err, "upsert province %s", p[0])
		}
	}
	for _, d := range districts {
		if _, err := pool.Exec(ctx, upsertDistrictSQL, d[0], d[1], d[2]); err != nil {
			return errors.Wrapf(err, "upsert district %s", d[0])
		}
	}
	for _, w := range wards {
		if _, err := pool.Exec(ctx, upsertWardSQL, w[0], w[1], w[2]); err != nil {
			return errors.Wrapf(err, "upsert ward %s", w[0])
		}
	}

	return nil
}

const upsertAPIKeySQL = `INSERT INTO api_keys (id, key_hash, name, scopes, active)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id) DO UPDATE SET key_hash = EXCLUDED.key_hash, scopes = EXCLUDED.scopes, active = EXCLUDED.active`

func seedAPIKey(ctx context.Context, pool *pgxpool.Pool, apiKey, pepper string) error {
	slog.Info("seeding admin API key")

	mac := hmac.New(sha256.New, []byte(pepper))
	mac.Write([]byte(apiKey))
	keyHash := hex.EncodeToString(mac.Sum(nil))

	if _, err := pool.Exec(ctx, upsertAPIKeySQL,
		"admin", keyHash, "Back-office admin key", []string{"admin"}, true,
	); err != nil {
		return errors.Wrap(err, "upsert admin API key")
	}

	slog.Info("upserted API key", slog.String("id", "admin"))
	return nil
}
