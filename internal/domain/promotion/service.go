package promotion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for campaign validation.
var (
	ErrNotFound         = fmt.Errorf("promotion not found")
	ErrNameRequired     = fmt.Errorf("name required")
	ErrNameTaken        = fmt.Errorf("promotion name already exists")
	ErrEmptyItems       = fmt.Errorf("promotion requires at least one item")
	ErrInvalidDateRange = fmt.Errorf("start_at must be before end_at")
	ErrInvalidStatus    = fmt.Errorf("invalid promotion status")
)

// ItemError indicates a discount item in the payload is invalid.
type ItemError struct {
	Index  int
	Reason string
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d: %s", e.Index, e.Reason)
}

// CreateRequest holds the input for creating a campaign.
type CreateRequest struct {
	Name        string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Items       []ItemInput
}

// Service encapsulates campaign management.
type Service struct {
	promos Repository
	now    func() time.Time
}

// NewService creates a promotion Service backed by the given repository.
func NewService(promos Repository) *Service {
	return &Service{promos: promos, now: time.Now}
}

// Create validates the campaign and persists the header plus all items
// atomically. The duplicate-name pre-check runs inside the repository
// transaction; the unique index on name remains the real guarantee.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Promotion, error) {
	if req.Name == "" {
		return nil, ErrNameRequired
	}
	if !req.StartAt.Before(req.EndAt) {
		return nil, ErrInvalidDateRange
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	now := s.now()
	promoID := uuid.New().String()

	items, err := buildItems(promoID, req.Items, now)
	if err != nil {
		return nil, err
	}

	p := &Promotion{
		ID:          promoID,
		Name:        req.Name,
		Description: req.Description,
		Status:      StatusDraft,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Items:       items,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.promos.CreateWithItems(ctx, p); err != nil {
		return nil, err
	}

	return p, nil
}

// ApplyUpdate applies a partial header update and an optional wholesale item
// replacement. When only one of start_at/end_at is supplied, the stored
// sibling field is used to validate the resulting range.
func (s *Service) ApplyUpdate(ctx context.Context, id string, upd Update) (*Promotion, error) {
	p, err := s.promos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	startAt := p.StartAt
	if upd.StartAt != nil {
		startAt = *upd.StartAt
	}
	endAt := p.EndAt
	if upd.EndAt != nil {
		endAt = *upd.EndAt
	}
	if !startAt.Before(endAt) {
		return nil, ErrInvalidDateRange
	}

	if upd.Name != nil {
		if *upd.Name == "" {
			return nil, ErrNameRequired
		}
		p.Name = *upd.Name
	}
	if upd.Description != nil {
		p.Description = *upd.Description
	}
	p.StartAt = startAt
	p.EndAt = endAt

	now := s.now()
	p.UpdatedAt = now

	replaceItems := upd.Items != nil
	if replaceItems {
		if len(upd.Items) == 0 {
			return nil, ErrEmptyItems
		}
		items, err := buildItems(p.ID, upd.Items, now)
		if err != nil {
			return nil, err
		}
		p.Items = items
	}

	if err := s.promos.Update(ctx, p, replaceItems); err != nil {
		return nil, err
	}

	return p, nil
}

// List returns all campaign headers newest first.
func (s *Service) List(ctx context.Context) ([]Promotion, error) {
	return s.promos.List(ctx)
}

// Get returns one campaign with its items, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Promotion, error) {
	return s.promos.GetByID(ctx, id)
}

// Delete removes the campaign and all of its items.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.promos.Delete(ctx, id)
}

// ChangeStatus validates the target against the campaign status set and
// persists it. Invalid targets are rejected without mutating state.
func (s *Service) ChangeStatus(ctx context.Context, id string, target Status) error {
	if !ValidStatus(target) {
		return ErrInvalidStatus
	}
	return s.promos.UpdateStatus(ctx, id, target, s.now())
}

// buildItems validates every discount config and materialises items with the
// computed sale price.
func buildItems(promoID string, inputs []ItemInput, now time.Time) ([]Item, error) {
	items := make([]Item, len(inputs))
	for i, in := range inputs {
		if in.ProductID == "" {
			return nil, &ItemError{Index: i, Reason: "product_id is required"}
		}
		if in.SKU == "" {
			return nil, &ItemError{Index: i, Reason: "sku is required"}
		}
		if in.OriginalPrice.IsNegative() {
			return nil, &ItemError{Index: i, Reason: "original_price must be non-negative"}
		}
		if in.StockSale < 1 {
			return nil, &ItemError{Index: i, Reason: "stock_sale must be at least 1"}
		}

		switch in.DiscountType {
		case DiscountPercentage:
			if !in.DiscountValue.IsPositive() || in.DiscountValue.GreaterThan(decimal.NewFromInt(100)) {
				return nil, &ItemError{Index: i, Reason: "percentage discount_value must be in (0, 100]"}
			}
		case DiscountFixed:
			if in.DiscountValue.IsNegative() {
				return nil, &ItemError{Index: i, Reason: "fixed discount_value must be non-negative"}
			}
			if in.DiscountValue.GreaterThan(in.OriginalPrice) {
				return nil, &ItemError{Index: i, Reason: "fixed discount_value must not exceed original_price"}
			}
		default:
			return nil, &ItemError{Index: i, Reason: "discount_type must be PERCENTAGE or FIXED_AMOUNT"}
		}

		items[i] = Item{
			ID:            uuid.New().String(),
			PromotionID:   promoID,
			ProductID:     in.ProductID,
			SKU:           in.SKU,
			Name:          in.Name,
			Image:         in.Image,
			OriginalPrice: in.OriginalPrice,
			SalePrice:     SalePrice(in.OriginalPrice, in.DiscountType, in.DiscountValue),
			DiscountType:  in.DiscountType,
			DiscountValue: in.DiscountValue,
			StockSale:     in.StockSale,
			CreatedAt:     now,
		}
	}
	return items, nil
}
