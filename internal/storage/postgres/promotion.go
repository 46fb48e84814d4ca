package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/keoshop/storefront/internal/domain/promotion"
)

const (
	promotionNameExistsSQL = `SELECT EXISTS (SELECT 1 FROM promotions WHERE name = $1 AND id <> $2)`

	insertPromotionSQL = `INSERT INTO promotions (id, name, description, status, start_at, end_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	updatePromotionSQL = `UPDATE promotions SET name = $2, description = $3, start_at = $4, end_at = $5, updated_at = $6
		WHERE id = $1`

	updatePromotionStatusSQL = `UPDATE promotions SET status = $2, updated_at = $3 WHERE id = $1`

	deletePromotionSQL      = `DELETE FROM promotions WHERE id = $1`
	deletePromotionItemsSQL = `DELETE FROM promotion_items WHERE promotion_id = $1`

	listPromotionsSQL = `SELECT id, name, description, status, start_at, end_at, created_at, updated_at
		FROM promotions ORDER BY created_at DESC`

	getPromotionSQL = `SELECT id, name, description, status, start_at, end_at, created_at, updated_at
		FROM promotions WHERE id = $1`

	listPromotionItemsSQL = `SELECT id, promotion_id, product_id, sku, name, image, original_price, sale_price,
			discount_type, discount_value, stock_sale, sold_sale, created_at
		FROM promotion_items WHERE promotion_id = $1 ORDER BY created_at`
)

var promotionItemColumns = []string{"id", "promotion_id", "product_id", "sku", "name", "image",
	"original_price", "sale_price", "discount_type", "discount_value", "stock_sale", "sold_sale", "created_at"}

var _ promotion.Repository = (*PromotionRepository)(nil)

// PromotionRepository implements promotion.Repository backed by PostgreSQL.
type PromotionRepository struct {
	pool *pgxpool.Pool
}

// NewPromotionRepository returns a PromotionRepository that uses the given pool.
func NewPromotionRepository(pool *pgxpool.Pool) *PromotionRepository {
	return &PromotionRepository{pool: pool}
}

// CreateWithItems inserts the campaign header and bulk-inserts all items in
// one transaction. The duplicate-name pre-check runs inside the transaction;
// a racing insert that slips past it still fails on the unique index and
// maps to the same ErrNameTaken.
func (r *PromotionRepository) CreateWithItems(ctx context.Context, p *promotion.Promotion) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	taken, err := nameExists(ctx, tx, p.Name, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return promotion.ErrNameTaken
	}

	_, err = tx.Exec(ctx, insertPromotionSQL,
		p.ID, p.Name, p.Description, p.Status, p.StartAt, p.EndAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return promotion.ErrNameTaken
		}
		return fmt.Errorf("inserting promotion %q: %w", p.Name, err)
	}

	if err := copyItems(ctx, tx, p.Items); err != nil {
		return fmt.Errorf("inserting promotion items for %q: %w", p.Name, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing promotion %q: %w", p.Name, err)
	}
	return nil
}

// Update persists header changes; when replaceItems is true the existing
// item set is deleted and the new one inserted inside the same transaction.
func (r *PromotionRepository) Update(ctx context.Context, p *promotion.Promotion, replaceItems bool) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, updatePromotionSQL,
		p.ID, p.Name, p.Description, p.StartAt, p.EndAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return promotion.ErrNameTaken
		}
		return fmt.Errorf("updating promotion %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}

	if replaceItems {
		if _, err := tx.Exec(ctx, deletePromotionItemsSQL, p.ID); err != nil {
			return fmt.Errorf("deleting promotion items for %q: %w", p.ID, err)
		}
		if err := copyItems(ctx, tx, p.Items); err != nil {
			return fmt.Errorf("inserting promotion items for %q: %w", p.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing promotion %q: %w", p.ID, err)
	}
	return nil
}

// Delete removes all items then the header in one transaction. The items
// delete against a missing campaign is a harmless no-op; the header delete
// decides between success and ErrNotFound.
func (r *PromotionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, deletePromotionItemsSQL, id); err != nil {
		return fmt.Errorf("deleting promotion items for %q: %w", id, err)
	}

	tag, err := tx.Exec(ctx, deletePromotionSQL, id)
	if err != nil {
		return fmt.Errorf("deleting promotion %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing promotion delete %q: %w", id, err)
	}
	return nil
}

// UpdateStatus persists only the status and updated_at fields.
func (r *PromotionRepository) UpdateStatus(ctx context.Context, id string, status promotion.Status, updatedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, updatePromotionStatusSQL, id, status, updatedAt)
	if err != nil {
		return fmt.Errorf("updating promotion %q status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return promotion.ErrNotFound
	}
	return nil
}

// List returns all campaign headers newest first.
func (r *PromotionRepository) List(ctx context.Context) ([]promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, listPromotionsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing promotions: %w", err)
	}
	return pgx.CollectRows(rows, scanPromotion)
}

// GetByID returns one campaign with its items, or promotion.ErrNotFound.
func (r *PromotionRepository) GetByID(ctx context.Context, id string) (*promotion.Promotion, error) {
	rows, err := r.pool.Query(ctx, getPromotionSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting promotion %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPromotion)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, promotion.ErrNotFound
		}
		return nil, fmt.Errorf("getting promotion %q: %w", id, err)
	}

	itemRows, err := r.pool.Query(ctx, listPromotionItemsSQL, id)
	if err != nil {
		return nil, fmt.Errorf("listing promotion items for %q: %w", id, err)
	}
	p.Items, err = pgx.CollectRows(itemRows, scanPromotionItem)
	if err != nil {
		return nil, fmt.Errorf("scanning promotion items for %q: %w", id, err)
	}

	return &p, nil
}

func nameExists(ctx context.Context, tx pgx.Tx, name, excludeID string) (bool, error) {
	var taken bool
	if err := tx.QueryRow(ctx, promotionNameExistsSQL, name, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("checking promotion name %q: %w", name, err)
	}
	return taken, nil
}

func copyItems(ctx context.Context, tx pgx.Tx, items []promotion.Item) error {
	rows := make([][]any, len(items))
	for i, it := range items {
		rows[i] = []any{it.ID, it.PromotionID, it.ProductID, it.SKU, it.Name, it.Image,
			it.OriginalPrice, it.SalePrice, it.DiscountType, it.DiscountValue,
			it.StockSale, it.SoldSale, it.CreatedAt}
	}
	_, err := tx.CopyFrom(ctx, pgx.Identifier{"promotion_items"}, promotionItemColumns, pgx.CopyFromRows(rows))
	return err
}

func scanPromotion(row pgx.CollectableRow) (promotion.Promotion, error) {
	var p promotion.Promotion
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.StartAt, &p.EndAt,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

func scanPromotionItem(row pgx.CollectableRow) (promotion.Item, error) {
	var (
		it       promotion.Item
		original decimal.Decimal
		sale     decimal.Decimal
		value    decimal.Decimal
	)
	err := row.Scan(
		&it.ID, &it.PromotionID, &it.ProductID, &it.SKU, &it.Name, &it.Image,
		&original, &sale, &it.DiscountType, &value, &it.StockSale, &it.SoldSale, &it.CreatedAt,
	)
	it.OriginalPrice = original
	it.SalePrice = sale
	it.DiscountValue = value
	return it, err
}
