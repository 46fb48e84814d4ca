package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keoshop/storefront/internal/domain/promotion"
)

type mockPromoRepo struct {
	byID    map[string]*promotion.Promotion
	names   map[string]bool
	created *promotion.Promotion
}

func (m *mockPromoRepo) CreateWithItems(_ context.Context, p *promotion.Promotion) error {
	if m.names[p.Name] {
		return promotion.ErrNameTaken
	}
	m.created = p
	return nil
}

func (m *mockPromoRepo) Update(_ context.Context, p *promotion.Promotion, _ bool) error {
	if _, ok := m.byID[p.ID]; !ok {
		return promotion.ErrNotFound
	}
	m.byID[p.ID] = p
	return nil
}

func (m *mockPromoRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.byID[id]; !ok {
		return promotion.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockPromoRepo) UpdateStatus(_ context.Context, id string, status promotion.Status, _ time.Time) error {
	p, ok := m.byID[id]
	if !ok {
		return promotion.ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *mockPromoRepo) List(_ context.Context) ([]promotion.Promotion, error) {
	out := make([]promotion.Promotion, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPromoRepo) GetByID(_ context.Context, id string) (*promotion.Promotion, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, promotion.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func newPromotionRouter(repo *mockPromoRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewPromotionHandler(promotion.NewService(repo))
	r.POST("/api/promotions", h.Create)
	r.POST("/api/promotions/:id/update", h.Update)
	r.DELETE("/api/promotions/:id/delete", h.Delete)
	r.POST("/api/promotions/:id/change-status", h.ChangeStatus)
	r.GET("/api/promotions/:id", h.Detail)
	return r
}

const createPromotionBody = `{
	"name": "Flash sale hè",
	"start_at": "2025-06-01T00:00:00Z",
	"end_at": "2025-06-08T00:00:00Z",
	"items": [
		{"product_id": "keo-lac", "sku": "KL-300", "original_price": 100000,
		 "discount_type": "PERCENTAGE", "discount_value": 20, "stock_sale": 50}
	]
}`

func TestCreatePromotion_Created(t *testing.T) {
	repo := &mockPromoRepo{}
	r := newPromotionRouter(repo)

	w, env := doJSON(t, r, http.MethodPost, "/api/promotions", createPromotionBody)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var view promotionView
	require.NoError(t, json.Unmarshal(data, &view))

	assert.Equal(t, "DRAFT", view.Status)
	require.Len(t, view.Items, 1)
	assert.InDelta(t, 80000, view.Items[0].SalePrice, 0.001)
	require.NotNil(t, repo.created)
}

func TestCreatePromotion_DuplicateName(t *testing.T) {
	repo := &mockPromoRepo{names: map[string]bool{"Flash sale hè": true}}
	r := newPromotionRouter(repo)

	w, env := doJSON(t, r, http.MethodPost, "/api/promotions", createPromotionBody)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "duplicate promotion name", env.Message)
}

func TestCreatePromotion_InvalidDateRange(t *testing.T) {
	r := newPromotionRouter(&mockPromoRepo{})

	body := `{"name": "Sale", "start_at": "2025-06-08T00:00:00Z", "end_at": "2025-06-01T00:00:00Z",
		"items": [{"product_id": "p", "sku": "s", "original_price": 1,
		"discount_type": "FIXED_AMOUNT", "discount_value": 0, "stock_sale": 1}]}`
	w, env := doJSON(t, r, http.MethodPost, "/api/promotions", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "start_at must be before end_at", env.Message)
}

func TestUpdatePromotion_NotFound(t *testing.T) {
	r := newPromotionRouter(&mockPromoRepo{byID: map[string]*promotion.Promotion{}})

	w, env := doJSON(t, r, http.MethodPost, "/api/promotions/missing/update", `{"name": "New"}`)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "promotion not found", env.Message)
}

func TestChangePromotionStatus(t *testing.T) {
	repo := &mockPromoRepo{byID: map[string]*promotion.Promotion{
		"promo-1": {ID: "promo-1", Status: promotion.StatusDraft},
	}}
	r := newPromotionRouter(repo)

	w, env := doJSON(t, r, http.MethodPost, "/api/promotions/promo-1/change-status", `{"status": "ACTIVE"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, promotion.StatusActive, repo.byID["promo-1"].Status)

	w, env = doJSON(t, r, http.MethodPost, "/api/promotions/promo-1/change-status", `{"status": "ARCHIVED"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid promotion status", env.Message)
	assert.Equal(t, promotion.StatusActive, repo.byID["promo-1"].Status)
}

func TestDeletePromotion(t *testing.T) {
	repo := &mockPromoRepo{byID: map[string]*promotion.Promotion{"promo-1": {ID: "promo-1"}}}
	r := newPromotionRouter(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/promotions/promo-1/delete", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, repo.byID)

	req = httptest.NewRequest(http.MethodDelete, "/api/promotions/promo-1/delete", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)
}
