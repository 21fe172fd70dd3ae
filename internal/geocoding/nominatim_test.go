package geocoding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestGeocoder(serverURL string, client *http.Client) *nominatimGeocoder {
	return &nominatimGeocoder{
		baseURL:     serverURL,
		httpClient:  client,
		rateLimiter: time.NewTicker(time.Millisecond),
	}
}

func TestGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua == "" {
			t.Error("expected a User-Agent header")
		}
		json.NewEncoder(w).Encode([]nominatimResponse{
			{Lat: "45.5017", Lon: "-73.5673", DisplayName: "Montreal, Quebec, Canada"},
		})
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL, server.Client())

	result, err := g.Geocode(context.Background(), "Montreal")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Coords.Lat != 45.5017 || result.Coords.Lng != -73.5673 {
		t.Errorf("unexpected coords: %+v", result.Coords)
	}
	if result.DisplayName != "Montreal, Quebec, Canada" {
		t.Errorf("unexpected display name: %s", result.DisplayName)
	}
}

func TestGeocode_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResponse{})
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL, server.Client())

	_, err := g.Geocode(context.Background(), "nowhere at all")
	if err == nil {
		t.Fatal("expected error for empty result set")
	}
	if _, ok := err.(*ErrGeocodingFailed); !ok {
		t.Errorf("expected *ErrGeocodingFailed, got %T", err)
	}
}

func TestSearch_SkipsMalformedEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResponse{
			{Lat: "not-a-number", Lon: "-73.5", DisplayName: "bad"},
			{Lat: "45.5", Lon: "-73.5", DisplayName: "good"},
		})
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL, server.Client())

	results, err := g.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 valid result, got %d", len(results))
	}
	if results[0].DisplayName != "good" {
		t.Errorf("kept the wrong entry: %+v", results[0])
	}
}

func TestSearch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL, server.Client())

	_, err := g.Search(context.Background(), "query", 5)
	if err == nil {
		t.Fatal("expected error for HTTP 429")
	}
}

func TestGeocodeWithRetry_RecoversAfterFailure(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			http.Error(w, "temporarily unavailable", http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode([]nominatimResponse{
			{Lat: "45.5", Lon: "-73.5", DisplayName: "eventually"},
		})
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL, server.Client())

	result, err := g.GeocodeWithRetry(context.Background(), "flaky", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Errorf("expected 2 attempts, got %d", attempts)
	}
	if result.DisplayName != "eventually" {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestGeocodeWithRetry_GivesUp(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]nominatimResponse{})
	}))
	defer server.Close()

	g := newTestGeocoder(server.URL, server.Client())

	// maxRetries of 1 means a single attempt, no backoff wait
	_, err := g.GeocodeWithRetry(context.Background(), "nowhere", 1)
	if err == nil {
		t.Fatal("expected error after retries exhausted")
	}
	if _, ok := err.(*ErrGeocodingFailed); !ok {
		t.Errorf("expected *ErrGeocodingFailed, got %T", err)
	}
}

func TestSearch_ContextCancelled(t *testing.T) {
	g := &nominatimGeocoder{
		baseURL:     "http://127.0.0.1:0",
		httpClient:  &http.Client{},
		rateLimiter: time.NewTicker(time.Hour), // never fires
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Search(ctx, "query", 1)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
