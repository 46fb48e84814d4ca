package customer

import (
	"context"
	"fmt"
	"time"
)

var ErrMissingUserID = fmt.Errorf("user_id required")

// Customer tracks a storefront visitor. Guests get a generated user_id from
// the client and can later be promoted to full customers.
type Customer struct {
	ID          string
	UserID      string
	FullName    string
	PhoneNumber string
	Email       string
	Guest       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Repository provides customer persistence.
type Repository interface {
	// Upsert inserts a customer keyed by user_id or refreshes the stored
	// profile fields for an existing one.
	Upsert(ctx context.Context, c *Customer) error
	List(ctx context.Context) ([]Customer, error)
}
