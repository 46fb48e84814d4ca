package promotion

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the lifecycle states of a campaign.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusPaused   Status = "PAUSED"
	StatusFinished Status = "FINISHED"
)

// ValidStatus reports whether s is one of the known campaign statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusActive, StatusPaused, StatusFinished:
		return true
	}
	return false
}

// DiscountType enumerates the supported per-item discount strategies.
type DiscountType string

const (
	// DiscountPercentage reduces the original price by a percentage.
	DiscountPercentage DiscountType = "PERCENTAGE"
	// DiscountFixed subtracts a fixed amount, floored at zero.
	DiscountFixed DiscountType = "FIXED_AMOUNT"
)

// Promotion is a time-boxed discount campaign header. Its per-SKU items live
// in a sibling table; a campaign without items is invalid.
type Promotion struct {
	ID          string
	Name        string
	Description string
	Status      Status
	StartAt     time.Time
	EndAt       time.Time
	Items       []Item
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Item is a per-SKU discount allocation with its own sale inventory,
// distinct from the product's main stock.
type Item struct {
	ID            string
	PromotionID   string
	ProductID     string
	SKU           string
	Name          string
	Image         string
	OriginalPrice decimal.Decimal
	SalePrice     decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	StockSale     int
	SoldSale      int
	CreatedAt     time.Time
}

// SalePrice computes the discounted price for an original price under the
// given discount type and value. Fixed discounts are floored at zero.
func SalePrice(original decimal.Decimal, typ DiscountType, value decimal.Decimal) decimal.Decimal {
	var sale decimal.Decimal
	switch typ {
	case DiscountPercentage:
		sale = original.Sub(original.Mul(value).Div(decimal.NewFromInt(100)))
	case DiscountFixed:
		sale = original.Sub(value)
	default:
		sale = original
	}
	if sale.IsNegative() {
		return decimal.Zero
	}
	return sale.Round(2)
}

// Update describes a partial header update plus an optional full item
// replacement. Nil pointers mean "leave unchanged"; a nil Items slice means
// "keep the existing set".
type Update struct {
	Name        *string
	Description *string
	StartAt     *time.Time
	EndAt       *time.Time
	Items       []ItemInput
}

// ItemInput is one per-SKU discount config in a create or update payload.
type ItemInput struct {
	ProductID     string
	SKU           string
	Name          string
	Image         string
	OriginalPrice decimal.Decimal
	DiscountType  DiscountType
	DiscountValue decimal.Decimal
	StockSale     int
}

// Repository defines persistence operations for campaigns.
type Repository interface {
	// CreateWithItems inserts the header and all items in one transaction.
	// Returns ErrNameTaken when the campaign name already exists.
	CreateWithItems(ctx context.Context, p *Promotion) error
	// Update persists header changes; when replaceItems is true the whole
	// item set is deleted and re-inserted in the same transaction.
	Update(ctx context.Context, p *Promotion, replaceItems bool) error
	// Delete removes all items then the header in one transaction.
	// Returns ErrNotFound when the header does not exist.
	Delete(ctx context.Context, id string) error
	// UpdateStatus persists only the status and updated_at fields.
	UpdateStatus(ctx context.Context, id string, status Status, updatedAt time.Time) error
	// List returns all campaign headers newest first (items not populated).
	List(ctx context.Context) ([]Promotion, error)
	// GetByID returns one campaign with items, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Promotion, error)
}
