package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/keoshop/storefront/internal/cache"
	"github.com/keoshop/storefront/internal/domain/catalog"
)

const (
	productListCacheKey = "products:storefront"
	productListCacheTTL = 5 * time.Minute
)

// CatalogHandler serves product and category endpoints. The storefront
// product listing is served read-through from the cache.
type CatalogHandler struct {
	products   catalog.ProductRepository
	categories catalog.CategoryRepository
	cache      cache.Cache
	now        func() time.Time
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(products catalog.ProductRepository, categories catalog.CategoryRepository, c cache.Cache) *CatalogHandler {
	return &CatalogHandler{products: products, categories: categories, cache: c, now: time.Now}
}

type productView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CategoryID  string    `json:"category_id,omitempty"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Image       string    `json:"image,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProductView(p *catalog.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		CategoryID:  p.CategoryID,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Image:       p.Image,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ListProducts handles GET /api/products. The unfiltered active listing is
// the hot path and is cached; filtered listings go straight to storage.
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	filter := catalog.ProductFilter{
		CategoryID: c.Query("category"),
		ActiveOnly: c.Query("all") == "",
	}

	cacheable := filter.CategoryID == "" && filter.ActiveOnly
	if cacheable {
		var views []productView
		if err := h.cache.Get(ctx, productListCacheKey, &views); err == nil {
			respond(c, http.StatusOK, "products", views)
			return
		}
	}

	products, err := h.products.List(ctx, filter)
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	views := make([]productView, len(products))
	for i := range products {
		views[i] = toProductView(&products[i])
	}
	if cacheable {
		_ = h.cache.Set(ctx, productListCacheKey, views, productListCacheTTL)
	}
	respond(c, http.StatusOK, "products", views)
}

// GetProduct handles GET /api/products/:id.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	p, err := h.products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}
	respond(c, http.StatusOK, "product", toProductView(p))
}

// productPayload uses pointers for fields where an absent value must be
// distinguishable from a zero value on partial updates.
type productPayload struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	CategoryID  string   `json:"category_id"`
	Price       *float64 `json:"price"`
	Stock       *int     `json:"stock"`
	Image       string   `json:"image"`
	Active      *bool    `json:"active"`
}

// CreateProduct handles POST /api/products.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if payload.ID == "" || payload.Name == "" {
		respondError(c, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	now := h.now()
	p := &catalog.Product{
		ID:          payload.ID,
		Name:        payload.Name,
		Description: payload.Description,
		CategoryID:  payload.CategoryID,
		Image:       payload.Image,
		Active:      payload.Active == nil || *payload.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if payload.Price != nil {
		p.Price = decimal.NewFromFloat(*payload.Price)
	}
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	if err := h.products.Upsert(c.Request.Context(), p); err != nil {
		writeCatalogError(c, err)
		return
	}

	_ = h.cache.Invalidate(c.Request.Context(), productListCacheKey)
	respond(c, http.StatusCreated, "product created", toProductView(p))
}

// UpdateProduct handles POST /api/products/:id/update.
func (h *CatalogHandler) UpdateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	ctx := c.Request.Context()
	p, err := h.products.GetByID(ctx, c.Param("id"))
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	if payload.Name != "" {
		p.Name = payload.Name
	}
	if payload.Description != "" {
		p.Description = payload.Description
	}
	if payload.CategoryID != "" {
		p.CategoryID = payload.CategoryID
	}
	if payload.Price != nil {
		p.Price = decimal.NewFromFloat(*payload.Price)
	}
	if payload.Stock != nil {
		p.Stock = *payload.Stock
	}
	if payload.Image != "" {
		p.Image = payload.Image
	}
	if payload.Active != nil {
		p.Active = *payload.Active
	}
	p.UpdatedAt = h.now()

	if err := h.products.Upsert(ctx, p); err != nil {
		writeCatalogError(c, err)
		return
	}

	_ = h.cache.Invalidate(ctx, productListCacheKey)
	respond(c, http.StatusOK, "product updated", toProductView(p))
}

// DeleteProduct handles DELETE /api/products/:id/delete.
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.products.Delete(ctx, c.Param("id")); err != nil {
		writeCatalogError(c, err)
		return
	}
	_ = h.cache.Invalidate(ctx, productListCacheKey)
	respond(c, http.StatusOK, "product deleted", nil)
}

type categoryView struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListCategories handles GET /api/categories.
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.categories.List(c.Request.Context())
	if err != nil {
		writeCatalogError(c, err)
		return
	}

	views := make([]categoryView, len(categories))
	for i, cat := range categories {
		views[i] = categoryView{ID: cat.ID, Name: cat.Name, Description: cat.Description, CreatedAt: cat.CreatedAt}
	}
	respond(c, http.StatusOK, "categories", views)
}

type categoryPayload struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateCategory handles POST /api/categories.
func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var payload categoryPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if payload.ID == "" || payload.Name == "" {
		respondError(c, http.StatusBadRequest, "id and name are required", nil)
		return
	}

	cat := &catalog.Category{
		ID:          payload.ID,
		Name:        payload.Name,
		Description: payload.Description,
		CreatedAt:   h.now(),
	}
	if err := h.categories.Create(c.Request.Context(), cat); err != nil {
		writeCatalogError(c, err)
		return
	}

	respond(c, http.StatusCreated, "category created", categoryView{
		ID: cat.ID, Name: cat.Name, Description: cat.Description, CreatedAt: cat.CreatedAt,
	})
}

// DeleteCategory handles DELETE /api/categories/:id/delete.
func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.categories.Delete(ctx, c.Param("id")); err != nil {
		writeCatalogError(c, err)
		return
	}
	_ = h.cache.Invalidate(ctx, productListCacheKey)
	respond(c, http.StatusOK, "category deleted", nil)
}

func writeCatalogError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		respondError(c, http.StatusNotFound, "product not found", err)
	case errors.Is(err, catalog.ErrCategoryNotFound):
		respondError(c, http.StatusNotFound, "category not found", err)
	case errors.Is(err, catalog.ErrCategoryTaken):
		respondError(c, http.StatusBadRequest, "duplicate category name", err)
	case errors.Is(err, catalog.ErrCategoryInUse):
		respondError(c, http.StatusBadRequest, "category still has products", err)
	default:
		respondError(c, http.StatusInternalServerError, "internal error", err)
	}
}
