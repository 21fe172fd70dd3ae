package testutil

import (
	"context"

	"quiet-path-router/internal/geocoding"
	"quiet-path-router/internal/models"
)

// RouteCall tracks a call to the route finder
type RouteCall struct {
	Origin models.Coordinates
	Dest   models.Coordinates
}

// MockRouteFinder is a canned-response oracle for testing
type MockRouteFinder struct {
	Routes []models.CandidateRoute
	Err    error
	Calls  []RouteCall
}

func NewMockRouteFinder(routes ...models.CandidateRoute) *MockRouteFinder {
	return &MockRouteFinder{Routes: routes}
}

func (m *MockRouteFinder) FindRoutes(ctx context.Context, origin, dest models.Coordinates) ([]models.CandidateRoute, error) {
	m.Calls = append(m.Calls, RouteCall{Origin: origin, Dest: dest})
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Routes, nil
}

// MockGeocoder resolves queries from a fixed table
type MockGeocoder struct {
	Results map[string]models.Coordinates
	Err     error
}

func NewMockGeocoder() *MockGeocoder {
	return &MockGeocoder{Results: make(map[string]models.Coordinates)}
}

// SetResult registers the coordinates a query resolves to
func (m *MockGeocoder) SetResult(query string, coords models.Coordinates) {
	m.Results[query] = coords
}

func (m *MockGeocoder) Geocode(ctx context.Context, query string) (*geocoding.GeocodingResult, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	coords, ok := m.Results[query]
	if !ok {
		return nil, &geocoding.ErrGeocodingFailed{Query: query, Reason: "no results found"}
	}
	return &geocoding.GeocodingResult{Coords: coords, DisplayName: query}, nil
}

func (m *MockGeocoder) GeocodeWithRetry(ctx context.Context, query string, maxRetries int) (*geocoding.GeocodingResult, error) {
	return m.Geocode(ctx, query)
}

func (m *MockGeocoder) Search(ctx context.Context, query string, limit int) ([]geocoding.GeocodingResult, error) {
	result, err := m.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}
	return []geocoding.GeocodingResult{*result}, nil
}
