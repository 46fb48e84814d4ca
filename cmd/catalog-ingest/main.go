// Command catalog-ingest imports gzipped CSV product feeds into the catalog.
// Feed files are processed in order; a product ID already present in an
// earlier feed wins, so later duplicates are skipped. Duplicate detection
// across the feeds uses one bloom filter per file, built concurrently.
//
// Feed line format: id,name,description,category_id,price,stock,image
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/keoshop/storefront/internal/domain/catalog"
	"github.com/keoshop/storefront/internal/storage/postgres"
)

const (
	bloomCapacity = 10_000_000
	bloomFPR      = 0.001
	feedFields    = 7
	progressEvery = 100_000
)

func main() {
	var (
		dataDir     string
		databaseURL string
	)

	flag.StringVar(&dataDir, "data-dir", "data", "directory containing *.csv.gz feed files")
	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, dataDir, databaseURL); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, dataDir, databaseURL string) error {
	files, err := filepath.Glob(filepath.Join(dataDir, "*.csv.gz"))
	if err != nil {
		return errors.Wrap(err, "list feed files")
	}
	if len(files) == 0 {
		return errors.Errorf("no *.csv.gz feed files in %s", dataDir)
	}
	sort.Strings(files)

	// Pass 1: one bloom filter of product IDs per file, built concurrently.
	slog.Info("pass 1: building id filters", slog.Int("files", len(files)))

	filters, err := buildIDFilters(ctx, files)
	if err != nil {
		return errors.Wrap(err, "build id filters")
	}

	slog.Info("connecting to database")

	pool, err := postgres.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	// Pass 2: walk the feeds in order and upsert. A product whose ID is in
	// any earlier file's filter is skipped so the first feed wins.
	slog.Info("pass 2: upserting products")

	products := postgres.NewProductRepository(pool)
	total := 0
	for i, f := range files {
		n, err := ingestFile(ctx, products, f, filters[:i])
		if err != nil {
			return errors.Wrapf(err, "ingest %s", f)
		}
		slog.Info("feed ingested", slog.String("file", f), slog.Int("products", n))
		total += n
	}

	slog.Info("all feeds ingested", slog.Int("products", total))
	return nil
}

// buildIDFilters streams every feed concurrently and records its product IDs
// in a bloom filter.
func buildIDFilters(ctx context.Context, files []string) ([]*bloom.BloomFilter, error) {
	filters := make([]*bloom.BloomFilter, len(files))

	g, ctx := errgroup.WithContext(ctx)
	for i, f := range files {
		g.Go(func() error {
			filter := bloom.NewWithEstimates(bloomCapacity, bloomFPR)
			var count uint64

			err := streamFeed(ctx, f, func(record []string) error {
				filter.AddString(record[0])
				if count++; count%progressEvery == 0 {
					slog.Info("pass 1 progress", slog.Int("file", i+1), slog.Uint64("rows", count))
				}
				return nil
			})
			if err != nil {
				return errors.Wrapf(err, "scan %s", f)
			}

			slog.Info("pass 1 complete", slog.Int("file", i+1), slog.Uint64("rows", count))
			filters[i] = filter
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return filters, nil
}

// ingestFile upserts every product in one feed, skipping IDs that earlier
// feeds already claimed.
func ingestFile(ctx context.Context, products catalog.ProductRepository, path string, earlier []*bloom.BloomFilter) (int, error) {
	now := time.Now()
	count := 0

	err := streamFeed(ctx, path, func(record []string) error {
		id := record[0]
		for _, f := range earlier {
			if f.TestString(id) {
				return nil
			}
		}

		p, err := parseProduct(record, now)
		if err != nil {
			slog.Warn("skipping malformed feed row", slog.String("id", id), slog.String("error", err.Error()))
			return nil
		}

		if err := products.Upsert(ctx, p); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

func parseProduct(record []string, now time.Time) (*catalog.Product, error) {
	price, err := decimal.NewFromString(record[4])
	if err != nil {
		return nil, errors.Wrap(err, "parse price")
	}
	if price.IsNegative() {
		return nil, errors.New("negative price")
	}

	stock, err := strconv.Atoi(record[5])
	if err != nil {
		return nil, errors.Wrap(err, "parse stock")
	}

	return &catalog.Product{
		ID:          record[0],
		Name:        record[1],
		Description: record[2],
		CategoryID:  record[3],
		Price:       price,
		Stock:       stock,
		Image:       record[6],
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// streamFeed opens a gzipped CSV feed and calls fn for every well-formed row.
func streamFeed(ctx context.Context, path string, fn func(record []string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	gz, err := pgzip.NewReader(f)
	if err != nil {
		return errors.Wrapf(err, "create gzip reader for %s", path)
	}
	defer func() { _ = gz.Close() }()

	r := csv.NewReader(gz)
	r.FieldsPerRecord = feedFields
	r.ReuseRecord = true

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			if errors.Is(err, csv.ErrFieldCount) {
				continue
			}
			return errors.Wrapf(err, "read %s", path)
		}

		if record[0] == "" {
			continue
		}
		if err := fn(record); err != nil {
			return err
		}
	}
}
