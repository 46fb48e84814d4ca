package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order validation.
var (
	ErrMissingUserID  = fmt.Errorf("user_id required")
	ErrEmptyItems     = fmt.Errorf("items required")
	ErrNotFound       = fmt.Errorf("order not found")
	ErrCodeConflict   = fmt.Errorf("order code already exists")
	ErrInvalidStatus  = fmt.Errorf("invalid order status")
	ErrInvalidPayment = fmt.Errorf("invalid payment method")
	ErrNegativeAmount = fmt.Errorf("shipping_fee and discount_amount must be non-negative")
)

// ItemFieldError indicates a line item in the payload is missing or has an
// invalid required field.
type ItemFieldError struct {
	Index int
	Field string
}

func (e *ItemFieldError) Error() string {
	return fmt.Sprintf("item %d: %s is required", e.Index, e.Field)
}

// AddressFieldError indicates the shipping address is missing a required field.
type AddressFieldError struct {
	Field string
}

func (e *AddressFieldError) Error() string {
	return fmt.Sprintf("shipping_address: %s is required", e.Field)
}

// ItemInput is one cart line in a placement request. All fields are snapshots
// supplied by the caller; the catalog is not consulted.
type ItemInput struct {
	ProductID string
	SKU       string
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int
}

// PlaceRequest holds the input for placing an order.
type PlaceRequest struct {
	UserID          string
	ShippingAddress ShippingAddress
	Items           []ItemInput
	PaymentMethod   PaymentMethod
	Note            string
	ShippingFee     decimal.Decimal
	DiscountAmount  decimal.Decimal
}

// Service encapsulates order placement and status management.
type Service struct {
	orders Repository
	now    func() time.Time
}

// NewService creates an order Service backed by the given repository.
func NewService(orders Repository) *Service {
	return &Service{orders: orders, now: time.Now}
}

// Place validates the request, computes line and order totals, generates the
// order code, and persists the header plus all items atomically. On success
// the returned order carries the freshly built items; nothing is re-read
// from storage.
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*Order, error) {
	if err := validatePlaceRequest(req); err != nil {
		return nil, err
	}

	now := s.now()
	orderID := uuid.New().String()

	subtotal := decimal.Zero
	items := make([]Item, len(req.Items))
	for i, in := range req.Items {
		lineTotal := in.Price.Mul(decimal.NewFromInt(int64(in.Quantity)))
		items[i] = Item{
			ID:        uuid.New().String(),
			OrderID:   orderID,
			ProductID: in.ProductID,
			SKU:       in.SKU,
			Name:      in.Name,
			Image:     in.Image,
			Price:     in.Price,
			Quantity:  in.Quantity,
			Total:     lineTotal,
			CreatedAt: now,
		}
		subtotal = subtotal.Add(lineTotal)
	}

	grandTotal := subtotal.Add(req.ShippingFee).Sub(req.DiscountAmount)
	if grandTotal.IsNegative() {
		grandTotal = decimal.Zero
	}

	method := req.PaymentMethod
	if method == "" {
		method = MethodCOD
	}

	o := &Order{
		ID:              orderID,
		Code:            NewCode(now),
		UserID:          req.UserID,
		Status:          StatusPending,
		PaymentStatus:   PaymentPending,
		PaymentMethod:   method,
		ShippingAddress: req.ShippingAddress,
		Subtotal:        subtotal,
		ShippingFee:     req.ShippingFee,
		DiscountAmount:  req.DiscountAmount,
		GrandTotal:      grandTotal,
		Note:            req.Note,
		History:         []StatusChange{},
		Items:           items,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.orders.CreateWithItems(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	return o, nil
}

// List returns all orders newest first with items populated.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// Get returns one order with items, or ErrNotFound.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ChangeStatus validates the target status, appends a history entry and
// persists the transition. The history is append-only.
func (s *Service) ChangeStatus(ctx context.Context, id string, target Status, note string) (*Order, error) {
	if !ValidStatus(target) {
		return nil, ErrInvalidStatus
	}

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o.History = append(o.History, StatusChange{
		From: o.Status,
		To:   target,
		Note: note,
		At:   now,
	})
	o.Status = target
	o.UpdatedAt = now

	if err := s.orders.UpdateStatus(ctx, o); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return o, nil
}

func validatePlaceRequest(req PlaceRequest) error {
	if req.UserID == "" {
		return ErrMissingUserID
	}
	if len(req.Items) == 0 {
		return ErrEmptyItems
	}
	if req.ShippingAddress.FullName == "" {
		return &AddressFieldError{Field: "full_name"}
	}
	if req.ShippingAddress.PhoneNumber == "" {
		return &AddressFieldError{Field: "phone_number"}
	}
	if req.PaymentMethod != "" && req.PaymentMethod != MethodCOD && req.PaymentMethod != MethodBanking {
		return ErrInvalidPayment
	}
	if req.ShippingFee.IsNegative() || req.DiscountAmount.IsNegative() {
		return ErrNegativeAmount
	}

	for i, in := range req.Items {
		switch {
		case in.ProductID == "":
			return &ItemFieldError{Index: i, Field: "product_id"}
		case in.SKU == "":
			return &ItemFieldError{Index: i, Field: "sku"}
		case in.Name == "":
			return &ItemFieldError{Index: i, Field: "name"}
		case !in.Price.IsPositive():
			return &ItemFieldError{Index: i, Field: "price"}
		case in.Quantity < 1:
			return &ItemFieldError{Index: i, Field: "quantity"}
		}
	}

	return nil
}
