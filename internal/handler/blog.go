package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/keoshop/storefront/internal/domain/blog"
)

// BlogHandler serves the storefront blog endpoints.
type BlogHandler struct {
	posts blog.Repository
	now   func() time.Time
}

// NewBlogHandler creates a BlogHandler.
func NewBlogHandler(posts blog.Repository) *BlogHandler {
	return &BlogHandler{posts: posts, now: time.Now}
}

type postView struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Published bool      `json:"published"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toPostView(p *blog.Post) postView {
	return postView{
		ID:        p.ID,
		Slug:      p.Slug,
		Title:     p.Title,
		Body:      p.Body,
		Published: p.Published,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// List handles GET /api/posts. Storefront callers only see published posts;
// authenticated back-office requests see drafts too.
func (h *BlogHandler) List(c *gin.Context) {
	publishedOnly := !isAdmin(c)
	posts, err := h.posts.List(c.Request.Context(), publishedOnly)
	if err != nil {
		writeBlogError(c, err)
		return
	}

	views := make([]postView, len(posts))
	for i := range posts {
		views[i] = toPostView(&posts[i])
	}
	respond(c, http.StatusOK, "posts", views)
}

// Get handles GET /api/posts/:slug.
func (h *BlogHandler) Get(c *gin.Context) {
	p, err := h.posts.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		writeBlogError(c, err)
		return
	}
	if !p.Published && !isAdmin(c) {
		writeBlogError(c, blog.ErrNotFound)
		return
	}
	respond(c, http.StatusOK, "post", toPostView(p))
}

type postPayload struct {
	Slug      string `json:"slug"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Published *bool  `json:"published"`
}

// Create handles POST /api/posts.
func (h *BlogHandler) Create(c *gin.Context) {
	var payload postPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if payload.Slug == "" || payload.Title == "" {
		respondError(c, http.StatusBadRequest, "slug and title are required", nil)
		return
	}

	now := h.now()
	p := &blog.Post{
		ID:        uuid.New().String(),
		Slug:      payload.Slug,
		Title:     payload.Title,
		Body:      payload.Body,
		Published: payload.Published != nil && *payload.Published,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.posts.Create(c.Request.Context(), p); err != nil {
		writeBlogError(c, err)
		return
	}

	respond(c, http.StatusCreated, "post created", toPostView(p))
}

// Update handles POST /api/posts/:id/update.
func (h *BlogHandler) Update(c *gin.Context) {
	var payload postPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.posts.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeBlogError(c, err)
		return
	}

	if payload.Slug != "" {
		p.Slug = payload.Slug
	}
	if payload.Title != "" {
		p.Title = payload.Title
	}
	if payload.Body != "" {
		p.Body = payload.Body
	}
	if payload.Published != nil {
		p.Published = *payload.Published
	}
	p.UpdatedAt = h.now()

	if err := h.posts.Update(ctx, p); err != nil {
		writeBlogError(c, err)
		return
	}
	respond(c, http.StatusOK, "post updated", toPostView(p))
}

// Delete handles DELETE /api/posts/:id/delete.
func (h *BlogHandler) Delete(c *gin.Context) {
	if err := h.posts.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeBlogError(c, err)
		return
	}
	respond(c, http.StatusOK, "post deleted", nil)
}

func writeBlogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, blog.ErrNotFound):
		respondError(c, http.StatusNotFound, "post not found", err)
	case errors.Is(err, blog.ErrSlugTaken):
		respondError(c, http.StatusBadRequest, "duplicate post slug", err)
	default:
		respondError(c, http.StatusInternalServerError, "internal error", err)
	}
}
