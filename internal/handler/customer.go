package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/keoshop/storefront/internal/domain/customer"
)

// CustomerHandler serves visitor tracking and the back-office customer list.
type CustomerHandler struct {
	customers customer.Repository
	now       func() time.Time
}

// NewCustomerHandler creates a CustomerHandler.
func NewCustomerHandler(customers customer.Repository) *CustomerHandler {
	return &CustomerHandler{customers: customers, now: time.Now}
}

type trackCustomerPayload struct {
	UserID      string `json:"user_id"`
	FullName    string `json:"full_name"`
	PhoneNumber string `json:"phone_number"`
	Email       string `json:"email"`
	Guest       bool   `json:"guest"`
}

type customerView struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	FullName    string    `json:"full_name,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Email       string    `json:"email,omitempty"`
	Guest       bool      `json:"guest"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCustomerView(c *customer.Customer) customerView {
	return customerView{
		ID:          c.ID,
		UserID:      c.UserID,
		FullName:    c.FullName,
		PhoneNumber: c.PhoneNumber,
		Email:       c.Email,
		Guest:       c.Guest,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

// Track handles POST /api/customers/track. Visitors are upserted by user_id;
// a guest placeholder id generated by the client is accepted.
func (h *CustomerHandler) Track(c *gin.Context) {
	var payload trackCustomerPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if payload.UserID == "" {
		respondError(c, http.StatusBadRequest, customer.ErrMissingUserID.Error(), nil)
		return
	}

	now := h.now()
	cust := &customer.Customer{
		ID:          uuid.New().String(),
		UserID:      payload.UserID,
		FullName:    payload.FullName,
		PhoneNumber: payload.PhoneNumber,
		Email:       payload.Email,
		Guest:       payload.Guest,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.customers.Upsert(c.Request.Context(), cust); err != nil {
		respondError(c, http.StatusInternalServerError, "internal error", err)
		return
	}

	respond(c, http.StatusOK, "customer tracked", toCustomerView(cust))
}

// List handles GET /api/customers.
func (h *CustomerHandler) List(c *gin.Context) {
	customers, err := h.customers.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error", err)
		return
	}

	views := make([]customerView, len(customers))
	for i := range customers {
		views[i] = toCustomerView(&customers[i])
	}
	respond(c, http.StatusOK, "customers", views)
}
