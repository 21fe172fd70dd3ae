package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"quiet-path-router/internal/geocoding"
)

const (
	defaultGeocodeLimit = 5
	maxGeocodeLimit     = 10
)

type geocodeResponse struct {
	Results []geocoding.GeocodingResult `json:"results"`
}

// Geocode resolves a free-text query into candidate locations
func (h *Handler) Geocode(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		writeError(c, http.StatusBadRequest, "MISSING_QUERY", "query parameter q is required", nil)
		return
	}

	limit := defaultGeocodeLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(c, http.StatusBadRequest, "INVALID_LIMIT", "limit must be a positive integer", nil)
			return
		}
		limit = parsed
		if limit > maxGeocodeLimit {
			limit = maxGeocodeLimit
		}
	}

	results, err := h.Geocoder.Search(c.Request.Context(), query, limit)
	if err != nil {
		writeError(c, http.StatusBadGateway, "GEOCODING_FAILED", "could not resolve query", err.Error())
		return
	}

	c.JSON(http.StatusOK, geocodeResponse{Results: results})
}
