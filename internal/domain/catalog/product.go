package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for catalog lookups and mutations.
var (
	ErrProductNotFound  = fmt.Errorf("product not found")
	ErrCategoryNotFound = fmt.Errorf("category not found")
	ErrCategoryTaken    = fmt.Errorf("category name already exists")
	ErrCategoryInUse    = fmt.Errorf("category still has products")
)

// Product is a purchasable catalog entry. The ID doubles as the URL slug.
type Product struct {
	ID          string
	Name        string
	Description string
	CategoryID  string
	Price       decimal.Decimal
	Stock       int
	Image       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Category groups products for storefront navigation.
type Category struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID string
	// ActiveOnly hides deactivated products from storefront listings.
	ActiveOnly bool
}

// ProductRepository provides product persistence.
type ProductRepository interface {
	List(ctx context.Context, f ProductFilter) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Upsert(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id string) error
}

// CategoryRepository provides category persistence.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
	// Delete refuses with ErrCategoryInUse while products reference the
	// category.
	Delete(ctx context.Context, id string) error
}
