package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"quiet-path-router/internal/database"
	"quiet-path-router/internal/models"
)

type createReportRequest struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	Category string  `json:"category"`
}

type reportResponse struct {
	models.Report
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateReport stores a new user observation. The category must be one of
// the known names; coordinates must be real geographic values.
func (h *Handler) CreateReport(c *gin.Context) {
	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "could not parse request body", err.Error())
		return
	}

	category := models.ParseReportCategory(req.Category)
	if category == models.ReportCategoryUnknown {
		writeError(c, http.StatusBadRequest, "INVALID_CATEGORY", "unknown report category: "+req.Category, nil)
		return
	}
	if req.Lat < -90 || req.Lat > 90 || req.Lng < -180 || req.Lng > 180 {
		writeError(c, http.StatusBadRequest, "INVALID_COORDINATES", "lat must be in [-90,90] and lng in [-180,180]", nil)
		return
	}

	report := &models.Report{
		ID:        uuid.NewString(),
		Location:  models.Coordinates{Lat: req.Lat, Lng: req.Lng},
		Category:  category,
		CreatedAt: h.now().UTC(),
	}

	created, err := h.DB.Reports().Create(c.Request.Context(), report)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "REPORT_CREATE_FAILED", "could not store report", err.Error())
		return
	}

	log.Printf("[REPORTS] Created: id=%s category=%s location=(%.6f,%.6f)", created.ID, created.Category, created.Location.Lat, created.Location.Lng)

	c.JSON(http.StatusCreated, reportResponse{Report: *created, ExpiresAt: created.ExpiresAt()})
}

type listReportsResponse struct {
	Reports []reportResponse `json:"reports"`
}

// ListReports returns the currently active reports inside a bounding box.
// Expired reports never appear, whether or not the sweep has removed them
// yet.
func (h *Handler) ListReports(c *gin.Context) {
	bounds, ok := parseBounds(c)
	if !ok {
		return
	}

	reports, err := h.DB.Reports().ListActive(c.Request.Context(), bounds, h.now())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "REPORT_LOOKUP_FAILED", "could not load active reports", err.Error())
		return
	}

	out := make([]reportResponse, 0, len(reports))
	for _, r := range reports {
		out = append(out, reportResponse{Report: r, ExpiresAt: r.ExpiresAt()})
	}

	c.JSON(http.StatusOK, listReportsResponse{Reports: out})
}

// DeleteReport removes a report by ID
func (h *Handler) DeleteReport(c *gin.Context) {
	id := c.Param("id")

	err := h.DB.Reports().Delete(c.Request.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeError(c, http.StatusNotFound, "REPORT_NOT_FOUND", "no report with id "+id, nil)
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "REPORT_DELETE_FAILED", "could not delete report", err.Error())
		return
	}

	log.Printf("[REPORTS] Deleted: id=%s", id)
	c.Status(http.StatusNoContent)
}
