package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quiet-path-router/internal/models"
	"quiet-path-router/internal/scoring"
)

// reportFetchMargin widens a route's bounding box (in degrees) before
// querying reports, so observations just past the geometry still count.
// 0.001 degrees is roughly 100 m of latitude.
const reportFetchMargin = 0.001

type computeRoutesRequest struct {
	Origin           *models.Coordinates `json:"origin"`
	OriginQuery      string              `json:"origin_query"`
	Destination      *models.Coordinates `json:"destination"`
	DestinationQuery string              `json:"destination_query"`
	Preferences      models.Preferences  `json:"preferences"`

	// DepartureTime is optional RFC3339; empty means "now"
	DepartureTime string `json:"departure_time"`
}

type computeRoutesResponse struct {
	GeneratedAt       time.Time            `json:"generated_at"`
	DepartureTime     time.Time            `json:"departure_time"`
	Origin            models.Coordinates   `json:"origin"`
	Destination       models.Coordinates   `json:"destination"`
	Routes            []models.ScoredRoute `json:"routes"`
	ReportsConsidered int                  `json:"reports_considered"`
}

// ComputeRoutes resolves the requested endpoints, fetches candidate walking
// paths from the routing oracle and returns them ranked by comfort score,
// best first, with exactly one route marked recommended.
func (h *Handler) ComputeRoutes(c *gin.Context) {
	var req computeRoutesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_BODY", "could not parse request body", err.Error())
		return
	}

	if err := req.Preferences.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_PREFERENCES", err.Error(), nil)
		return
	}

	departAt := h.now()
	if req.DepartureTime != "" {
		parsed, err := time.Parse(time.RFC3339, req.DepartureTime)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_TIME", "departure_time must be RFC3339", err.Error())
			return
		}
		departAt = parsed
	}

	ctx := c.Request.Context()

	origin, ok := h.resolveEndpoint(c, "origin", req.Origin, req.OriginQuery)
	if !ok {
		return
	}
	dest, ok := h.resolveEndpoint(c, "destination", req.Destination, req.DestinationQuery)
	if !ok {
		return
	}

	candidates, err := h.RouteFinder.FindRoutes(ctx, origin, dest)
	if err != nil {
		writeError(c, http.StatusBadGateway, "ROUTE_LOOKUP_FAILED", "could not fetch candidate routes", err.Error())
		return
	}

	ranked := h.Scorer.ScoreRoutes(candidates, req.Preferences, departAt)

	// Reports are snapshotted per call over the union of all candidate
	// geometries; the count lets clients surface how much crowd signal
	// backed the ranking.
	reportsConsidered := 0
	var allPoints []models.Coordinates
	for _, r := range candidates {
		allPoints = append(allPoints, r.Geometry...)
	}
	if len(allPoints) > 0 {
		bounds := models.BoundsOf(allPoints).Expand(reportFetchMargin)
		reports, err := h.DB.Reports().ListActive(ctx, bounds, departAt)
		if err != nil {
			writeError(c, http.StatusInternalServerError, "REPORT_LOOKUP_FAILED", "could not load active reports", err.Error())
			return
		}
		reportsConsidered = len(reports)
	}

	log.Printf("[ROUTES] Ranked candidates: origin=(%.6f,%.6f) dest=(%.6f,%.6f) candidates=%d reports=%d",
		origin.Lat, origin.Lng, dest.Lat, dest.Lng, len(ranked), reportsConsidered)

	c.JSON(http.StatusOK, computeRoutesResponse{
		GeneratedAt:       h.now().UTC(),
		DepartureTime:     departAt.UTC(),
		Origin:            origin,
		Destination:       dest,
		Routes:            ranked,
		ReportsConsidered: reportsConsidered,
	})
}

// resolveEndpoint turns either explicit coordinates or a free-text query
// into a point. Writes the error response itself and returns ok=false on
// failure.
func (h *Handler) resolveEndpoint(c *gin.Context, field string, coords *models.Coordinates, query string) (models.Coordinates, bool) {
	if coords != nil {
		return *coords, true
	}
	if query == "" {
		writeError(c, http.StatusBadRequest, "MISSING_ENDPOINT", field+" requires coordinates or a text query", nil)
		return models.Coordinates{}, false
	}

	result, err := h.Geocoder.GeocodeWithRetry(c.Request.Context(), query, 3)
	if err != nil {
		writeError(c, http.StatusBadGateway, "GEOCODING_FAILED", "could not resolve "+field+" query", err.Error())
		return models.Coordinates{}, false
	}
	return result.Coords, true
}

type segmentCost struct {
	Segment models.RoadSegment        `json:"segment"`
	Cost    scoring.EdgeCostBreakdown `json:"cost"`
}

type segmentCostsResponse struct {
	EvaluatedAt       time.Time     `json:"evaluated_at"`
	Segments          []segmentCost `json:"segments"`
	ReportsConsidered int           `json:"reports_considered"`
}

// SegmentCosts evaluates the perceived walking cost of every stored road
// segment inside a bounding box, against the live report set and the given
// (or current) time. This is the attribute-level view of the cost model:
// each segment comes back with its four multipliers and final cost.
func (h *Handler) SegmentCosts(c *gin.Context) {
	bounds, ok := parseBounds(c)
	if !ok {
		return
	}

	prefs := models.Preferences{
		Quietness:  parseFloatDefault(c.Query("quietness"), 0),
		Brightness: parseFloatDefault(c.Query("brightness"), 0),
	}
	if err := prefs.Validate(); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_PREFERENCES", err.Error(), nil)
		return
	}

	at := h.now()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_TIME", "at must be RFC3339", err.Error())
			return
		}
		at = parsed
	}

	ctx := c.Request.Context()

	segments, err := h.DB.RoadSegments().ListWithin(ctx, bounds)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "SEGMENT_LOOKUP_FAILED", "could not load road segments", err.Error())
		return
	}

	reports, err := h.DB.Reports().ListActive(ctx, bounds.Expand(reportFetchMargin), at)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "REPORT_LOOKUP_FAILED", "could not load active reports", err.Error())
		return
	}

	costs := make([]segmentCost, 0, len(segments))
	for _, seg := range segments {
		costs = append(costs, segmentCost{
			Segment: seg,
			Cost:    scoring.EdgeCost(seg, prefs, reports, at),
		})
	}

	log.Printf("[SEGMENTS] Evaluated costs: segments=%d reports=%d at=%s", len(costs), len(reports), at.Format(time.RFC3339))

	c.JSON(http.StatusOK, segmentCostsResponse{
		EvaluatedAt:       at,
		Segments:          costs,
		ReportsConsidered: len(reports),
	})
}

// parseBounds reads min_lat/min_lng/max_lat/max_lng query parameters.
// Writes the error response itself and returns ok=false when any is
// missing or malformed.
func parseBounds(c *gin.Context) (models.BoundingBox, bool) {
	var bounds models.BoundingBox
	fields := []struct {
		name string
		dest *float64
	}{
		{"min_lat", &bounds.MinLat},
		{"min_lng", &bounds.MinLng},
		{"max_lat", &bounds.MaxLat},
		{"max_lng", &bounds.MaxLng},
	}
	for _, f := range fields {
		raw := c.Query(f.name)
		if raw == "" {
			writeError(c, http.StatusBadRequest, "MISSING_BOUNDS", "query parameter "+f.name+" is required", nil)
			return bounds, false
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_BOUNDS", "query parameter "+f.name+" must be a number", nil)
			return bounds, false
		}
		*f.dest = v
	}
	if bounds.MinLat > bounds.MaxLat || bounds.MinLng > bounds.MaxLng {
		writeError(c, http.StatusBadRequest, "INVALID_BOUNDS", "min bounds must not exceed max bounds", nil)
		return bounds, false
	}
	return bounds, true
}

func parseFloatDefault(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
