package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/keoshop/storefront/internal/domain/order"
)

const (
	insertOrderSQL = `INSERT INTO orders (id, order_code, user_id, status, payment_status, payment_method,
			shipping_address, subtotal_amount, shipping_fee, discount_amount, grand_total, note, history,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	listOrdersSQL = `SELECT id, order_code, user_id, status, payment_status, payment_method,
			shipping_address, subtotal_amount, shipping_fee, discount_amount, grand_total, note, history,
			created_at, updated_at
		FROM orders ORDER BY created_at DESC`

	getOrderSQL = `SELECT id, order_code, user_id, status, payment_status, payment_method,
			shipping_address, subtotal_amount, shipping_fee, discount_amount, grand_total, note, history,
			created_at, updated_at
		FROM orders WHERE id = $1`

	listOrderItemsSQL = `SELECT id, order_id, product_id, sku, name, image, price, quantity, total, created_at
		FROM order_items WHERE order_id = ANY($1) ORDER BY created_at`

	updateOrderStatusSQL = `UPDATE orders SET status = $2, history = $3, updated_at = $4 WHERE id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// CreateWithItems inserts the order header and bulk-inserts all line items
// inside one transaction. Any failure rolls the whole write back; an
// order_code collision maps to order.ErrCodeConflict.
func (r *OrderRepository) CreateWithItems(ctx context.Context, o *order.Order) error {
	addressJSON, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return fmt.Errorf("marshaling shipping address: %w", err)
	}
	historyJSON, err := json.Marshal(o.History)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, insertOrderSQL,
		o.ID, o.Code, o.UserID, o.Status, o.PaymentStatus, o.PaymentMethod,
		addressJSON, o.Subtotal, o.ShippingFee, o.DiscountAmount, o.GrandTotal,
		o.Note, historyJSON, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrCodeConflict
		}
		return fmt.Errorf("inserting order %q: %w", o.Code, err)
	}

	rows := make([][]any, len(o.Items))
	for i, it := range o.Items {
		rows[i] = []any{it.ID, it.OrderID, it.ProductID, it.SKU, it.Name, it.Image,
			it.Price, it.Quantity, it.Total, it.CreatedAt}
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"order_items"},
		[]string{"id", "order_id", "product_id", "sku", "name", "image", "price", "quantity", "total", "created_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("inserting order items for %q: %w", o.Code, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing order %q: %w", o.Code, err)
	}
	return nil
}

// List returns all orders newest first, with line items attached.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, fmt.Errorf("scanning orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	ids := make([]string, len(orders))
	byID := make(map[string]*order.Order, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
		byID[orders[i].ID] = &orders[i]
	}

	items, err := r.listItems(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		o := byID[it.OrderID]
		o.Items = append(o.Items, it)
	}

	return orders, nil
}

// GetByID returns one order with its items, or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	items, err := r.listItems(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

// UpdateStatus persists the order's status and appended history.
func (r *OrderRepository) UpdateStatus(ctx context.Context, o *order.Order) error {
	historyJSON, err := json.Marshal(o.History)
	if err != nil {
		return fmt.Errorf("marshaling history: %w", err)
	}

	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, o.ID, o.Status, historyJSON, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating order %q status: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderIDs []string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, listOrderItemsSQL, orderIDs)
	if err != nil {
		return nil, fmt.Errorf("listing order items: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanOrderItem)
	if err != nil {
		return nil, fmt.Errorf("scanning order items: %w", err)
	}
	return items, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o           order.Order
		addressJSON []byte
		historyJSON []byte
		subtotal    decimal.Decimal
		shipping    decimal.Decimal
		discount    decimal.Decimal
		grand       decimal.Decimal
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := row.Scan(
		&o.ID, &o.Code, &o.UserID, &o.Status, &o.PaymentStatus, &o.PaymentMethod,
		&addressJSON, &subtotal, &shipping, &discount, &grand, &o.Note, &historyJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return o, err
	}
	if err := json.Unmarshal(addressJSON, &o.ShippingAddress); err != nil {
		return o, fmt.Errorf("unmarshaling shipping address: %w", err)
	}
	if err := json.Unmarshal(historyJSON, &o.History); err != nil {
		return o, fmt.Errorf("unmarshaling history: %w", err)
	}
	o.Subtotal = subtotal
	o.ShippingFee = shipping
	o.DiscountAmount = discount
	o.GrandTotal = grand
	o.CreatedAt = createdAt
	o.UpdatedAt = updatedAt
	return o, nil
}

func scanOrderItem(row pgx.CollectableRow) (order.Item, error) {
	var (
		it    order.Item
		price decimal.Decimal
		total decimal.Decimal
	)
	err := row.Scan(
		&it.ID, &it.OrderID, &it.ProductID, &it.SKU, &it.Name, &it.Image,
		&price, &it.Quantity, &total, &it.CreatedAt,
	)
	it.Price = price
	it.Total = total
	return it, err
}
