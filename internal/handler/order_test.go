package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keoshop/storefront/internal/domain/order"
)

type mockOrderRepo struct {
	byID      map[string]*order.Order
	created   *order.Order
	createErr error
}

func (m *mockOrderRepo) CreateWithItems(_ context.Context, o *order.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = o
	return nil
}

func (m *mockOrderRepo) List(_ context.Context) ([]order.Order, error) {
	out := make([]order.Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*order.Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, o *order.Order) error {
	m.byID[o.ID] = o
	return nil
}

func newOrderRouter(repo *mockOrderRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewOrderHandler(order.NewService(repo))
	r.POST("/api/orders", h.Place)
	r.GET("/api/orders", h.List)
	r.GET("/api/orders/:id/detail", h.Detail)
	r.POST("/api/orders/:id/change-status", h.ChangeStatus)
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return w, env
}

const placeBody = `{
	"user_id": "user-1",
	"shipping_address": {"full_name": "Nguyễn Văn A", "phone_number": "0912345678"},
	"items": [
		{"product_id": "keo-lac", "sku": "KL-300", "name": "Kẹo lạc 300g", "price": 100000, "quantity": 2}
	]
}`

func TestPlaceOrder_Created(t *testing.T) {
	repo := &mockOrderRepo{}
	r := newOrderRouter(repo)

	w, env := doJSON(t, r, http.MethodPost, "/api/orders", placeBody)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)

	data, err := json.Marshal(env.Data)
	require.NoError(t, err)
	var view orderView
	require.NoError(t, json.Unmarshal(data, &view))

	assert.InDelta(t, 200000, view.Subtotal, 0.001)
	assert.InDelta(t, 200000, view.GrandTotal, 0.001)
	assert.True(t, strings.HasPrefix(view.Code, "ORD-"), "order code = %s", view.Code)
	assert.Equal(t, "PENDING", view.Status)
	require.Len(t, view.Items, 1)
	assert.Equal(t, 2, view.Items[0].Quantity)
	require.NotNil(t, repo.created)
}

func TestPlaceOrder_ValidationError(t *testing.T) {
	r := newOrderRouter(&mockOrderRepo{})

	body := strings.Replace(placeBody, `"user_id": "user-1",`, `"user_id": "",`, 1)
	w, env := doJSON(t, r, http.MethodPost, "/api/orders", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "user_id required", env.Message)
}

func TestPlaceOrder_ItemErrorNamesIndexAndField(t *testing.T) {
	r := newOrderRouter(&mockOrderRepo{})

	body := strings.Replace(placeBody, `"sku": "KL-300",`, `"sku": "",`, 1)
	w, env := doJSON(t, r, http.MethodPost, "/api/orders", body)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "item 0: sku is required", env.Message)
}

func TestPlaceOrder_MalformedBody(t *testing.T) {
	r := newOrderRouter(&mockOrderRepo{})

	w, env := doJSON(t, r, http.MethodPost, "/api/orders", `{"items": "nope"}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
}

func TestOrderDetail_NotFound(t *testing.T) {
	r := newOrderRouter(&mockOrderRepo{byID: map[string]*order.Order{}})

	req := httptest.NewRequest(http.MethodGet, "/api/orders/missing/detail", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "order not found", env.Message)
}

func TestChangeOrderStatus(t *testing.T) {
	repo := &mockOrderRepo{byID: map[string]*order.Order{
		"o-1": {ID: "o-1", Status: order.StatusPending, History: []order.StatusChange{}},
	}}
	r := newOrderRouter(repo)

	w, env := doJSON(t, r, http.MethodPost, "/api/orders/o-1/change-status",
		`{"status": "PROCESSING", "note": "packing"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, order.StatusProcessing, repo.byID["o-1"].Status)
	require.Len(t, repo.byID["o-1"].History, 1)

	w, env = doJSON(t, r, http.MethodPost, "/api/orders/o-1/change-status", `{"status": "SHIPPED"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid order status", env.Message)
}
