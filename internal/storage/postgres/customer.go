package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keoshop/storefront/internal/domain/customer"
)

const (
	upsertCustomerSQL = `INSERT INTO customers (id, user_id, full_name, phone_number, email, guest, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = CASE WHEN EXCLUDED.full_name <> '' THEN EXCLUDED.full_name ELSE customers.full_name END,
			phone_number = CASE WHEN EXCLUDED.phone_number <> '' THEN EXCLUDED.phone_number ELSE customers.phone_number END,
			email = CASE WHEN EXCLUDED.email <> '' THEN EXCLUDED.email ELSE customers.email END,
			guest = EXCLUDED.guest,
			updated_at = EXCLUDED.updated_at`

	listCustomersSQL = `SELECT id, user_id, full_name, phone_number, email, guest, created_at, updated_at
		FROM customers ORDER BY created_at DESC`
)

var _ customer.Repository = (*CustomerRepository)(nil)

// CustomerRepository implements customer.Repository backed by PostgreSQL.
type CustomerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a CustomerRepository that uses the given pool.
func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Upsert inserts a customer keyed by user_id; empty profile fields in the
// payload never blank out previously stored values.
func (r *CustomerRepository) Upsert(ctx context.Context, c *customer.Customer) error {
	_, err := r.pool.Exec(ctx, upsertCustomerSQL,
		c.ID, c.UserID, c.FullName, c.PhoneNumber, c.Email, c.Guest, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upserting customer %q: %w", c.UserID, err)
	}
	return nil
}

// List returns all tracked customers newest first.
func (r *CustomerRepository) List(ctx context.Context) ([]customer.Customer, error) {
	rows, err := r.pool.Query(ctx, listCustomersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	return pgx.CollectRows(rows, scanCustomer)
}

func scanCustomer(row pgx.CollectableRow) (customer.Customer, error) {
	var c customer.Customer
	err := row.Scan(&c.ID, &c.UserID, &c.FullName, &c.PhoneNumber, &c.Email, &c.Guest, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}
