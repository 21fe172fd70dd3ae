package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"quiet-path-router/internal/models"
)

// RouteFinder returns candidate walking paths between two points. The
// scoring layer treats it as an oracle: it supplies geometry, distance,
// duration and step boundaries, nothing more.
type RouteFinder interface {
	FindRoutes(ctx context.Context, origin, dest models.Coordinates) ([]models.CandidateRoute, error)
}

// ErrRouteLookupFailed is returned when the OSRM API fails or finds no path
type ErrRouteLookupFailed struct {
	Origin models.Coordinates
	Dest   models.Coordinates
	Reason string
}

func (e *ErrRouteLookupFailed) Error() string {
	return fmt.Sprintf("route lookup failed: %s", e.Reason)
}

type osrmRouteFinder struct {
	baseURL    string
	httpClient *http.Client
}

type osrmRouteResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Geometry osrmGeometry `json:"geometry"`
	Legs     []osrmLeg    `json:"legs"`
}

type osrmGeometry struct {
	Coordinates [][2]float64 `json:"coordinates"` // GeoJSON order: lng, lat
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmManeuver struct {
	Location [2]float64 `json:"location"`
}

// NewOSRMRouteFinder creates a route finder backed by an OSRM instance with
// a foot profile. An empty baseURL falls back to the public demo server.
func NewOSRMRouteFinder(baseURL string) RouteFinder {
	if baseURL == "" {
		baseURL = "https://router.project-osrm.org"
	}
	return &osrmRouteFinder{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (f *osrmRouteFinder) FindRoutes(ctx context.Context, origin, dest models.Coordinates) ([]models.CandidateRoute, error) {
	queryURL := fmt.Sprintf("%s/route/v1/foot/%.6f,%.6f;%.6f,%.6f?alternatives=true&steps=true&geometries=geojson&overview=full",
		f.baseURL, origin.Lng, origin.Lat, dest.Lng, dest.Lat)

	req, err := http.NewRequestWithContext(ctx, "GET", queryURL, nil)
	if err != nil {
		log.Printf("[ERROR] Failed to create OSRM route request: err=%v", err)
		return nil, &ErrRouteLookupFailed{Origin: origin, Dest: dest, Reason: err.Error()}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		log.Printf("[ERROR] OSRM route request failed: origin=(%.6f,%.6f) dest=(%.6f,%.6f) err=%v", origin.Lat, origin.Lng, dest.Lat, dest.Lng, err)
		return nil, &ErrRouteLookupFailed{Origin: origin, Dest: dest, Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		log.Printf("[ERROR] OSRM route API error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &ErrRouteLookupFailed{
			Origin: origin,
			Dest:   dest,
			Reason: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body)),
		}
	}

	var osrmResp osrmRouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&osrmResp); err != nil {
		log.Printf("[ERROR] Failed to decode OSRM route response: err=%v", err)
		return nil, &ErrRouteLookupFailed{Origin: origin, Dest: dest, Reason: err.Error()}
	}

	if osrmResp.Code != "Ok" {
		log.Printf("[ERROR] OSRM returned error code: code=%s", osrmResp.Code)
		return nil, &ErrRouteLookupFailed{Origin: origin, Dest: dest, Reason: fmt.Sprintf("OSRM error: %s", osrmResp.Code)}
	}

	if len(osrmResp.Routes) == 0 {
		log.Printf("[ERROR] OSRM returned no routes: origin=(%.6f,%.6f) dest=(%.6f,%.6f)", origin.Lat, origin.Lng, dest.Lat, dest.Lng)
		return nil, &ErrRouteLookupFailed{Origin: origin, Dest: dest, Reason: "no routes found"}
	}

	candidates := make([]models.CandidateRoute, 0, len(osrmResp.Routes))
	for i, r := range osrmResp.Routes {
		candidates = append(candidates, toCandidateRoute(fmt.Sprintf("route-%d", i), r))
	}

	log.Printf("[OSRM] Routes found: origin=(%.6f,%.6f) dest=(%.6f,%.6f) candidates=%d", origin.Lat, origin.Lng, dest.Lat, dest.Lng, len(candidates))
	return candidates, nil
}

func toCandidateRoute(id string, r osrmRoute) models.CandidateRoute {
	geometry := make([]models.Coordinates, 0, len(r.Geometry.Coordinates))
	for _, c := range r.Geometry.Coordinates {
		geometry = append(geometry, models.Coordinates{Lat: c[1], Lng: c[0]})
	}

	var steps []models.RouteStep
	for _, leg := range r.Legs {
		for _, s := range leg.Steps {
			steps = append(steps, models.RouteStep{
				Location:        models.Coordinates{Lat: s.Maneuver.Location[1], Lng: s.Maneuver.Location[0]},
				DistanceMeters:  s.Distance,
				DurationSeconds: s.Duration,
			})
		}
	}

	return models.CandidateRoute{
		ID:              id,
		Geometry:        geometry,
		DistanceMeters:  r.Distance,
		DurationSeconds: r.Duration,
		Steps:           steps,
	}
}
