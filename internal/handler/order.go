package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/keoshop/storefront/internal/domain/order"
)

// OrderHandler serves order placement and management endpoints.
type OrderHandler struct {
	orders *order.Service
}

// NewOrderHandler creates an OrderHandler.
func NewOrderHandler(orders *order.Service) *OrderHandler {
	return &OrderHandler{orders: orders}
}

type shippingAddressPayload struct {
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	City        string `json:"city"`
	District    string `json:"district"`
	Ward        string `json:"ward"`
	Street      string `json:"street"`
	Note        string `json:"note"`
}

type orderItemPayload struct {
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Image     string  `json:"image"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
}

type placeOrderPayload struct {
	UserID          string                 `json:"user_id"`
	ShippingAddress shippingAddressPayload `json:"shipping_address"`
	Items           []orderItemPayload     `json:"items"`
	PaymentMethod   string                 `json:"payment_method"`
	Note            string                 `json:"note"`
	ShippingFee     float64                `json:"shipping_fee"`
	DiscountAmount  float64                `json:"discount_amount"`
}

func (p placeOrderPayload) toRequest() order.PlaceRequest {
	items := make([]order.ItemInput, len(p.Items))
	for i, it := range p.Items {
		items[i] = order.ItemInput{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Image:     it.Image,
			Price:     decimal.NewFromFloat(it.Price),
			Quantity:  it.Quantity,
		}
	}
	return order.PlaceRequest{
		UserID: p.UserID,
		ShippingAddress: order.ShippingAddress{
			FullName:    p.ShippingAddress.FullName,
			PhoneNumber: p.ShippingAddress.PhoneNumber,
			City:        p.ShippingAddress.City,
			District:    p.ShippingAddress.District,
			Ward:        p.ShippingAddress.Ward,
			Street:      p.ShippingAddress.Street,
			Note:        p.ShippingAddress.Note,
		},
		Items:          items,
		PaymentMethod:  order.PaymentMethod(p.PaymentMethod),
		Note:           p.Note,
		ShippingFee:    decimal.NewFromFloat(p.ShippingFee),
		DiscountAmount: decimal.NewFromFloat(p.DiscountAmount),
	}
}

type orderItemView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Image     string  `json:"image,omitempty"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Total     float64 `json:"total"`
}

type orderView struct {
	ID              string                `json:"id"`
	Code            string                `json:"order_code"`
	UserID          string                `json:"user_id"`
	Status          string                `json:"status"`
	PaymentStatus   string                `json:"payment_status"`
	PaymentMethod   string                `json:"payment_method"`
	ShippingAddress order.ShippingAddress `json:"shipping_address"`
	Subtotal        float64               `json:"subtotal"`
	ShippingFee     float64               `json:"shipping_fee"`
	DiscountAmount  float64               `json:"discount_amount"`
	GrandTotal      float64               `json:"grand_total"`
	Note            string                `json:"note,omitempty"`
	History         []order.StatusChange  `json:"history"`
	Items           []orderItemView       `json:"items"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
}

func toOrderView(o *order.Order) orderView {
	items := make([]orderItemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemView{
			ID:        it.ID,
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Image:     it.Image,
			Price:     it.Price.InexactFloat64(),
			Quantity:  it.Quantity,
			Total:     it.Total.InexactFloat64(),
		}
	}
	history := o.History
	if history == nil {
		history = []order.StatusChange{}
	}
	return orderView{
		ID:              o.ID,
		Code:            o.Code,
		UserID:          o.UserID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		PaymentMethod:   string(o.PaymentMethod),
		ShippingAddress: o.ShippingAddress,
		Subtotal:        o.Subtotal.InexactFloat64(),
		ShippingFee:     o.ShippingFee.InexactFloat64(),
		DiscountAmount:  o.DiscountAmount.InexactFloat64(),
		GrandTotal:      o.GrandTotal.InexactFloat64(),
		Note:            o.Note,
		History:         history,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var payload placeOrderPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	o, err := h.orders.Place(c.Request.Context(), payload.toRequest())
	if err != nil {
		writeOrderError(c, err)
		return
	}

	respond(c, http.StatusCreated, "order placed", toOrderView(o))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.List(c.Request.Context())
	if err != nil {
		writeOrderError(c, err)
		return
	}

	views := make([]orderView, len(orders))
	for i := range orders {
		views[i] = toOrderView(&orders[i])
	}
	respond(c, http.StatusOK, "orders", views)
}

// Detail handles GET /api/orders/:id/detail.
func (h *OrderHandler) Detail(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeOrderError(c, err)
		return
	}
	respond(c, http.StatusOK, "order", toOrderView(o))
}

type changeOrderStatusPayload struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

// ChangeStatus handles POST /api/orders/:id/change-status.
func (h *OrderHandler) ChangeStatus(c *gin.Context) {
	var payload changeOrderStatusPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}

	o, err := h.orders.ChangeStatus(c.Request.Context(), c.Param("id"), order.Status(payload.Status), payload.Note)
	if err != nil {
		writeOrderError(c, err)
		return
	}

	respond(c, http.StatusOK, "order status updated", toOrderView(o))
}

func writeOrderError(c *gin.Context, err error) {
	var (
		itemErr *order.ItemFieldError
		addrErr *order.AddressFieldError
	)
	switch {
	case errors.Is(err, order.ErrNotFound):
		respondError(c, http.StatusNotFound, "order not found", err)
	case errors.Is(err, order.ErrCodeConflict):
		respondError(c, http.StatusBadRequest, "duplicate order code", err)
	case errors.Is(err, order.ErrMissingUserID),
		errors.Is(err, order.ErrEmptyItems),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidPayment),
		errors.Is(err, order.ErrNegativeAmount):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &itemErr), errors.As(err, &addrErr):
		respondError(c, http.StatusBadRequest, err.Error(), nil)
	default:
		respondError(c, http.StatusInternalServerError, "internal error", err)
	}
}
