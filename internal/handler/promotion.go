package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/keoshop/storefront/internal/domain/promotion"
)

// PromotionHandler serves the campaign management endpoints.
type PromotionHandler struct {
	promos *promotion.Service
}

// NewPromotionHandler creates a PromotionHandler.
func NewPromotionHandler(promos *promotion.Service) *PromotionHandler {
	return &PromotionHandler{promos: promos}
}

type promotionItemPayload struct {
	ProductID     string  `json:"product_id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name"`
	Image         string  `json:"image"`
	OriginalPrice float64 `json:"original_price"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	StockSale     int     `json:"stock_sale"`
}

func (p promotionItemPayload) toInput() promotion.ItemInput {
	return promotion.ItemInput{
		ProductID:     p.ProductID,
		SKU:           p.SKU,
		Name:          p.Name,
		Image:         p.Image,
		OriginalPrice: decimal.NewFromFloat(p.OriginalPrice),
		DiscountType:  promotion.DiscountType(p.DiscountType),
		DiscountValue: decimal.NewFromFloat(p.DiscountValue),
		StockSale:     p.StockSale,
	}
}

type createPromotionPayload struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	StartAt     time.Time              `json:"start_at"`
	EndAt       time.Time              `json:"end_at"`
	Items       []promotionItemPayload `json:"items"`
}

type updatePromotionPayload struct {
	Name        *string                `json:"name"`
	Description *string                `json:"description"`
	StartAt     *time.Time             `json:"start_at"`
	EndAt       *time.Time             `json:"end_at"`
	Items       []promotionItemPayload `json:"items"`
}

type promotionItemView struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	SKU           string  `json:"sku"`
	Name          string  `json:"name,omitempty"`
	Image         string  `json:"image,omitempty"`
	OriginalPrice float64 `json:"original_price"`
	SalePrice     float64 `json:"sale_price"`
	DiscountType  string  `json:"discount_type"`
	DiscountValue float64 `json:"discount_value"`
	StockSale     int     `json:"stock_sale"`
	SoldSale      int     `json:"sold_sale"`
}

type promotionView struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Status      string              `json:"status"`
	StartAt     time.Time           `json:"start_at"`
	EndAt       time.Time           `json:"end_at"`
	Items       []promotionItemView `json:"items,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

func toPromotionView(p *promotion.Promotion) promotionView {
	items := make([]promotionItemView, len(p.Items))
	for i, it := range p.Items {
		items[i] = promotionItemView{
			ID:            it.ID,
			ProductID:     it.ProductID,
			SKU:           it.SKU,
			Name:          it.Name,
			Image:         it.Image,
			OriginalPrice: it.OriginalPrice.InexactFloat64(),
			SalePrice:     it.SalePrice.InexactFloat64(),
			DiscountType:  string(it.DiscountType),
			DiscountValue: it.DiscountValue.InexactFloat64(),
			StockSale:     it.StockSale,
			SoldSale:      it.SoldSale,
		}
	}
	return promotionView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      string(p.Status),
		StartAt:     p.StartAt,
		EndAt:       p.EndAt,
		Items:       items,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Create handles POST /api/promotions.
func (h *PromotionHandler) Create(c *gin.Context) {
	var payload createPromotionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	items := make([]promotion.ItemInput, len(payload.Items))
	for i, it := range payload.Items {
		items[i] = it.toInput()
	}

	p, err := h.promos.Create(c.Request.Context(), promotion.CreateRequest{
		Name:        payload.Name,
		Description: payload.Description,
		StartAt:     payload.StartAt,
		EndAt:       payload.EndAt,
		Items:       items,
	})
	if err != nil {
		writePromotionError(c, err)
		return
	}

	respond(c, http.StatusCreated, "promotion created", toPromotionView(p))
}

// Update handles POST /api/promotions/:id/update.
func (h *PromotionHandler) Update(c *gin.Context) {
	var payload updatePromotionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	upd := promotion.Update{
		Name:        payload.Name,
		Description: payload.Description,
		StartAt:     payload.StartAt,
		EndAt:       payload.EndAt,
	}
	if payload.Items != nil {
		upd.Items = make([]promotion.ItemInput, len(payload.Items))
		for i, it := range payload.Items {
			upd.Items[i] = it.toInput()
		}
	}

	p, err := h.promos.ApplyUpdate(c.Request.Context(), c.Param("id"), upd)
	if err != nil {
		writePromotionError(c, err)
		return
	}

	respond(c, http.StatusOK, "promotion updated", toPromotionView(p))
}

// Delete handles DELETE /api/promotions/:id/delete.
func (h *PromotionHandler) Delete(c *gin.Context) {
	if err := h.promos.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writePromotionError(c, err)
		return
	}
	respond(c, http.StatusOK, "promotion deleted", nil)
}

type changePromotionStatusPayload struct {
	Status string `json:"status"`
}

// ChangeStatus handles POST /api/promotions/:id/change-status.
func (h *PromotionHandler) ChangeStatus(c *gin.Context) {
	var payload changePromotionStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.promos.ChangeStatus(c.Request.Context(), c.Param("id"), promotion.Status(payload.Status)); err != nil {
		writePromotionError(c, err)
		return
	}

	respond(c, http.StatusOK, "promotion status updated", nil)
}

// List handles GET /api/promotions.
func (h *PromotionHandler) List(c *gin.Context) {
	promos, err := h.promos.List(c.Request.Context())
	if err != nil {
		writePromotionError(c, err)
		return
	}

	views := make([]promotionView, len(promos))
	for i := range promos {
		views[i] = toPromotionView(&promos[i])
	}
	respond(c, http.StatusOK, "promotions", views)
}

// Detail handles GET /api/promotions/:id.
func (h *PromotionHandler) Detail(c *gin.Context) {
	p, err := h.promos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writePromotionError(c, err)
		return
	}
	respond(c, http.StatusOK, "promotion", toPromotionView(p))
}

func writePromotionError(c *gin.Context, err error) {
	var itemErr *promotion.ItemError
	switch {
	case errors.Is(err, promotion.ErrNotFound):
		respondError(c, http.StatusNotFound, "promotion not found", err)
	case errors.Is(err, promotion.ErrNameTaken):
		respondError(c, http.StatusBadRequest, "duplicate promotion name", err)
	case errors.Is(err, promotion.ErrNameRequired),
		errors.Is(err, promotion.ErrEmptyItems),
		errors.Is(err, promotion.ErrInvalidDateRange),
		errors.Is(err, promotion.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &itemErr):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal error", err)
	}
}
