package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the fulfilment states of an order.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusShipping   Status = "SHIPPING"
	StatusDelivered  Status = "DELIVERED"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
	StatusRefunded   Status = "REFUNDED"
)

// ValidStatus reports whether s is one of the known order statuses.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipping, StatusDelivered,
		StatusCompleted, StatusCancelled, StatusRefunded:
		return true
	}
	return false
}

// PaymentStatus enumerates payment states.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentPaid     PaymentStatus = "PAID"
	PaymentFailed   PaymentStatus = "FAILED"
	PaymentRefunded PaymentStatus = "REFUNDED"
)

// PaymentMethod enumerates supported payment methods.
type PaymentMethod string

const (
	MethodCOD     PaymentMethod = "COD"
	MethodBanking PaymentMethod = "BANKING"
)

// ShippingAddress is copied onto the order at placement time so later
// address-book edits never alter order history.
type ShippingAddress struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
	District    string `json:"district"`
	Ward        string `json:"ward"`
	Street      string `json:"street"`
	Note        string `json:"note,omitempty"`
}

// StatusChange is one entry in an order's append-only status history.
type StatusChange struct {
	From Status    `json:"from"`
	To   Status    `json:"to"`
	Note string    `json:"note,omitempty"`
	At   time.Time `json:"at"`
}

// Order is the order header. Line items live in a sibling table and are
// attached here when loaded.
type Order struct {
	ID              string
	Code            string
	UserID          string
	Status          Status
	PaymentStatus   PaymentStatus
	PaymentMethod   PaymentMethod
	ShippingAddress ShippingAddress
	Subtotal        decimal.Decimal
	ShippingFee     decimal.Decimal
	DiscountAmount  decimal.Decimal
	GrandTotal      decimal.Decimal
	Note            string
	History         []StatusChange
	Items           []Item
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Item is a single order line. Price, name and image are snapshots taken at
// purchase time and are never back-filled from the live product.
type Item struct {
	ID        string
	OrderID   string
	ProductID string
	SKU       string
	Name      string
	Image     string
	Price     decimal.Decimal
	Quantity  int
	Total     decimal.Decimal
	CreatedAt time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// CreateWithItems persists the order header and all its items inside a
	// single transaction. Either everything is written or nothing is.
	CreateWithItems(ctx context.Context, o *Order) error
	// List returns all orders newest first with items populated.
	List(ctx context.Context) ([]Order, error)
	// GetByID returns one order with items, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Order, error)
	// UpdateStatus persists a status transition together with the appended
	// history entry.
	UpdateStatus(ctx context.Context, o *Order) error
}
