package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keoshop/storefront/internal/domain/catalog"
)

const (
	listCategoriesSQL = `SELECT id, name, description, created_at FROM categories ORDER BY name`

	insertCategorySQL = `INSERT INTO categories (id, name, description, created_at) VALUES ($1, $2, $3, $4)`

	countCategoryProductsSQL = `SELECT count(*) FROM products WHERE category_id = $1`

	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository returns a CategoryRepository that uses the given pool.
func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.pool.Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// Create inserts a category; duplicate names map to catalog.ErrCategoryTaken.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	_, err := r.pool.Exec(ctx, insertCategorySQL, c.ID, c.Name, c.Description, c.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return catalog.ErrCategoryTaken
		}
		return fmt.Errorf("inserting category %q: %w", c.Name, err)
	}
	return nil
}

// Delete removes a category unless products still reference it.
func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	var inUse int
	if err := r.pool.QueryRow(ctx, countCategoryProductsSQL, id).Scan(&inUse); err != nil {
		return fmt.Errorf("counting products for category %q: %w", id, err)
	}
	if inUse > 0 {
		return catalog.ErrCategoryInUse
	}

	tag, err := r.pool.Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return catalog.ErrCategoryNotFound
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var c catalog.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt)
	return c, err
}
