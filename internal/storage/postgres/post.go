package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/keoshop/storefront/internal/domain/blog"
)

const (
	listPostsSQL = `SELECT id, slug, title, body, published, created_at, updated_at
		FROM posts WHERE (NOT $1 OR published) ORDER BY created_at DESC`

	getPostBySlugSQL = `SELECT id, slug, title, body, published, created_at, updated_at
		FROM posts WHERE slug = $1`

	getPostByIDSQL = `SELECT id, slug, title, body, published, created_at, updated_at
		FROM posts WHERE id = $1`

	insertPostSQL = `INSERT INTO posts (id, slug, title, body, published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	updatePostSQL = `UPDATE posts SET slug = $2, title = $3, body = $4, published = $5, updated_at = $6
		WHERE id = $1`

	deletePostSQL = `DELETE FROM posts WHERE id = $1`
)

var _ blog.Repository = (*PostRepository)(nil)

// PostRepository implements blog.Repository backed by PostgreSQL.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository returns a PostRepository that uses the given pool.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// List returns posts newest first; publishedOnly hides drafts.
func (r *PostRepository) List(ctx context.Context, publishedOnly bool) ([]blog.Post, error) {
	rows, err := r.pool.Query(ctx, listPostsSQL, publishedOnly)
	if err != nil {
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return pgx.CollectRows(rows, scanPost)
}

// GetBySlug returns one post, or blog.ErrNotFound.
func (r *PostRepository) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	rows, err := r.pool.Query(ctx, getPostBySlugSQL, slug)
	if err != nil {
		return nil, fmt.Errorf("getting post %q: %w", slug, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("getting post %q: %w", slug, err)
	}
	return &p, nil
}

// GetByID returns one post, or blog.ErrNotFound.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*blog.Post, error) {
	rows, err := r.pool.Query(ctx, getPostByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting post %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanPost)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, blog.ErrNotFound
		}
		return nil, fmt.Errorf("getting post %q: %w", id, err)
	}
	return &p, nil
}

// Create inserts a post; duplicate slugs map to blog.ErrSlugTaken.
func (r *PostRepository) Create(ctx context.Context, p *blog.Post) error {
	_, err := r.pool.Exec(ctx, insertPostSQL,
		p.ID, p.Slug, p.Title, p.Body, p.Published, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return blog.ErrSlugTaken
		}
		return fmt.Errorf("inserting post %q: %w", p.Slug, err)
	}
	return nil
}

// Update persists all mutable post fields.
func (r *PostRepository) Update(ctx context.Context, p *blog.Post) error {
	tag, err := r.pool.Exec(ctx, updatePostSQL,
		p.ID, p.Slug, p.Title, p.Body, p.Published, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return blog.ErrSlugTaken
		}
		return fmt.Errorf("updating post %q: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

// Delete removes a post, or returns blog.ErrNotFound.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, deletePostSQL, id)
	if err != nil {
		return fmt.Errorf("deleting post %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return blog.ErrNotFound
	}
	return nil
}

func scanPost(row pgx.CollectableRow) (blog.Post, error) {
	var p blog.Post
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
