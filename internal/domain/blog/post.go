package blog

import (
	"context"
	"fmt"
	"time"
)

var (
	ErrNotFound  = fmt.Errorf("post not found")
	ErrSlugTaken = fmt.Errorf("post slug already exists")
)

// Post is a storefront blog article.
type Post struct {
	ID        string
	Slug      string
	Title     string
	Body      string
	Published bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Repository provides blog post persistence.
type Repository interface {
	// List returns posts newest first; publishedOnly hides drafts.
	List(ctx context.Context, publishedOnly bool) ([]Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, p *Post) error
	Update(ctx context.Context, p *Post) error
	Delete(ctx context.Context, id string) error
}
