package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/keoshop/storefront/internal/domain/location"
)

// LocationHandler serves the read-only address lookup endpoints used by the
// checkout form.
type LocationHandler struct {
	locations location.Repository
}

// NewLocationHandler creates a LocationHandler.
func NewLocationHandler(locations location.Repository) *LocationHandler {
	return &LocationHandler{locations: locations}
}

// Provinces handles GET /api/locations/provinces.
func (h *LocationHandler) Provinces(c *gin.Context) {
	provinces, err := h.locations.Provinces(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error", err)
		return
	}
	respond(c, http.StatusOK, "provinces", provinces)
}

// Districts handles GET /api/locations/provinces/:code/districts.
func (h *LocationHandler) Districts(c *gin.Context) {
	districts, err := h.locations.Districts(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error", err)
		return
	}
	respond(c, http.StatusOK, "districts", districts)
}

// Wards handles GET /api/locations/districts/:code/wards.
func (h *LocationHandler) Wards(c *gin.Context) {
	wards, err := h.locations.Wards(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error", err)
		return
	}
	respond(c, http.StatusOK, "wards", wards)
}
