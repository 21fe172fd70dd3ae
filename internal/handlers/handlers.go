package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"quiet-path-router/internal/database"
	"quiet-path-router/internal/geocoding"
	"quiet-path-router/internal/routing"
	"quiet-path-router/internal/scoring"
)

// Handler provides common handler dependencies
type Handler struct {
	DB          database.DataStore
	Geocoder    geocoding.Geocoder
	RouteFinder routing.RouteFinder
	Scorer      scoring.Scorer

	// Now supplies the clock for scoring and report timestamps. Injectable
	// so temporal behavior is deterministic under test.
	Now func() time.Time
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func writeError(c *gin.Context, status int, code, message string, details interface{}) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// Health reports whether the store is reachable
func (h *Handler) Health(c *gin.Context) {
	if err := h.DB.HealthCheck(c.Request.Context()); err != nil {
		writeError(c, 503, "STORE_UNAVAILABLE", "database health check failed", err.Error())
		return
	}
	c.JSON(200, gin.H{"status": "ok"})
}
