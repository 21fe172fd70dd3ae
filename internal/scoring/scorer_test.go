package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiet-path-router/internal/models"
)

var noon = time.Date(2025, 6, 3, 12, 0, 0, 0, time.UTC)

func fastStraightRoute() models.CandidateRoute {
	return models.CandidateRoute{
		ID:              "A",
		DistanceMeters:  1000,
		DurationSeconds: 700,
		Steps:           make([]models.RouteStep, 2),
	}
}

func slowWindingRoute() models.CandidateRoute {
	return models.CandidateRoute{
		ID:              "B",
		DistanceMeters:  1100,
		DurationSeconds: 900,
		Steps:           make([]models.RouteStep, 20),
	}
}

func TestScoreRoutes_QuietRouteWinsUnderQuietness(t *testing.T) {
	engine := NewEngine()
	prefs := models.Preferences{Quietness: 1.0, Brightness: 0}

	ranked := engine.ScoreRoutes([]models.CandidateRoute{fastStraightRoute(), slowWindingRoute()}, prefs, noon)
	require.Len(t, ranked, 2)

	// A is faster and straighter, so its noise proxy is higher; with
	// quietness dominating, the winding route B must rank first.
	assert.Equal(t, "B", ranked[0].ID)
	assert.Equal(t, "A", ranked[1].ID)
	assert.Greater(t, ranked[1].NoiseScore, ranked[0].NoiseScore)
	assert.Greater(t, ranked[0].OverallScore, ranked[1].OverallScore)

	assert.True(t, ranked[0].Recommended)
	assert.False(t, ranked[1].Recommended)
}

func TestScoreRoutes_NoPreferencesDegeneratesToOracleOrder(t *testing.T) {
	engine := NewEngine()
	routes := []models.CandidateRoute{fastStraightRoute(), slowWindingRoute()}

	ranked := engine.ScoreRoutes(routes, models.Preferences{}, noon)
	require.Len(t, ranked, 2)

	for _, r := range ranked {
		assert.Equal(t, 50.0, r.OverallScore)
	}
	// Stable sort preserves the oracle's ordering on ties
	assert.Equal(t, "A", ranked[0].ID)
	assert.Equal(t, "B", ranked[1].ID)
	assert.True(t, ranked[0].Recommended)
}

func TestScoreRoutes_ZeroDurationDoesNotDivide(t *testing.T) {
	engine := NewEngine()
	route := models.CandidateRoute{ID: "broken", DistanceMeters: 500, DurationSeconds: 0}

	ranked := engine.ScoreRoutes([]models.CandidateRoute{route}, models.Preferences{Quietness: 1}, noon)
	require.Len(t, ranked, 1)

	// Speed proxy collapses to zero; turn proxy stays 1.0 with no steps
	assert.InDelta(t, 0.3, ranked[0].NoiseScore, 1e-9)
	assert.False(t, isNaN(ranked[0].OverallScore))
}

func TestScoreRoutes_ZeroStepsYieldsFullTurnScore(t *testing.T) {
	engine := NewEngine()
	// Straight arterial: fast and stepless
	route := models.CandidateRoute{ID: "straight", DistanceMeters: 3000, DurationSeconds: 200}

	ranked := engine.ScoreRoutes([]models.CandidateRoute{route}, models.Preferences{Quietness: 1}, noon)
	require.Len(t, ranked, 1)

	// speedScore saturates at 1.0 and turnScore is 1.0, so the noise proxy
	// hits its 0.9 ceiling
	assert.InDelta(t, 0.9, ranked[0].NoiseScore, 1e-9)
	assert.InDelta(t, 0.9, ranked[0].LightingScore, 1e-9)
	assert.Equal(t, ranked[0].LightingScore, ranked[0].SafetyScore)
}

func TestScoreRoutes_ScoreBands(t *testing.T) {
	engine := NewEngine()
	routes := []models.CandidateRoute{
		{ID: "r1", DistanceMeters: 100, DurationSeconds: 10000, Steps: make([]models.RouteStep, 500)},
		{ID: "r2", DistanceMeters: 5000, DurationSeconds: 100},
		fastStraightRoute(),
		slowWindingRoute(),
	}

	for q := 0.0; q <= 1.0; q += 0.5 {
		for b := 0.0; b <= 1.0; b += 0.5 {
			ranked := engine.ScoreRoutes(routes, models.Preferences{Quietness: q, Brightness: b}, noon)
			for _, r := range ranked {
				assert.GreaterOrEqual(t, r.NoiseScore, 0.1)
				assert.LessOrEqual(t, r.NoiseScore, 0.9)
				assert.GreaterOrEqual(t, r.LightingScore, 0.2)
				assert.LessOrEqual(t, r.LightingScore, 0.9)
				assert.GreaterOrEqual(t, r.OverallScore, 0.0)
				assert.LessOrEqual(t, r.OverallScore, 100.0)
			}
		}
	}
}

func TestScoreRoutes_Idempotent(t *testing.T) {
	engine := NewEngine()
	routes := []models.CandidateRoute{fastStraightRoute(), slowWindingRoute()}
	prefs := models.Preferences{Quietness: 0.6, Brightness: 0.4}

	first := engine.ScoreRoutes(routes, prefs, noon)
	second := engine.ScoreRoutes(routes, prefs, noon)

	assert.Equal(t, first, second)
}

func TestScoreRoutes_DoesNotMutateInput(t *testing.T) {
	routes := []models.CandidateRoute{fastStraightRoute(), slowWindingRoute()}
	engine := NewEngine()

	engine.ScoreRoutes(routes, models.Preferences{Quietness: 1}, noon)

	assert.Equal(t, "A", routes[0].ID)
	assert.Equal(t, "B", routes[1].ID)
}

func TestScoreRoutes_Empty(t *testing.T) {
	engine := NewEngine()
	ranked := engine.ScoreRoutes(nil, models.Preferences{Quietness: 1}, noon)
	assert.Empty(t, ranked)
}

func TestScoreRoutes_ExactlyOneRecommended(t *testing.T) {
	engine := NewEngine()
	routes := []models.CandidateRoute{
		fastStraightRoute(), slowWindingRoute(),
		{ID: "C", DistanceMeters: 900, DurationSeconds: 800, Steps: make([]models.RouteStep, 5)},
	}

	ranked := engine.ScoreRoutes(routes, models.Preferences{Quietness: 0.5, Brightness: 0.5}, noon)

	recommended := 0
	for _, r := range ranked {
		if r.Recommended {
			recommended++
		}
	}
	assert.Equal(t, 1, recommended)
}

func isNaN(f float64) bool { return f != f }
