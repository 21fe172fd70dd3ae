package scoring

import (
	"sort"
	"time"

	"quiet-path-router/internal/models"
)

// Oracle-returned paths carry geometry and pace but no per-segment road
// attributes, so the route scorer derives proxy signals from shape and
// speed instead:
//
//   - average speed: faster routes imply major-road travel and more
//     traffic noise; the signal saturates at 15 m/s.
//   - turn density: many steps per km imply winding local streets.
//
// Lighting is modeled as positively correlated with major-road character
// (busier roads are assumed better lit). Safety is an alias of lighting;
// it is not modeled independently.
const (
	speedSaturationMPS = 15.0
	turnDensityDamping = 0.1

	speedProxyWeight = 0.7
	turnProxyWeight  = 0.3
)

// Scorer ranks candidate routes by how well they match the caller's
// comfort preferences at the given departure time
type Scorer interface {
	ScoreRoutes(routes []models.CandidateRoute, prefs models.Preferences, now time.Time) []models.ScoredRoute
}

type engine struct{}

// NewEngine creates the comfort scoring engine. The engine is stateless and
// safe for concurrent use; every call works only on its own inputs.
func NewEngine() Scorer {
	return &engine{}
}

// ScoreRoutes annotates each candidate with noise, lighting, safety and
// overall scores, then returns them sorted best-first. The sort is stable,
// so routes with equal scores keep the oracle's original order. Exactly the
// top route is marked recommended. The input slice and its routes are never
// mutated. The departure time is part of the contract; the current proxy
// signals derive from shape and pace only.
func (e *engine) ScoreRoutes(routes []models.CandidateRoute, prefs models.Preferences, now time.Time) []models.ScoredRoute {
	scored := make([]models.ScoredRoute, 0, len(routes))
	for _, route := range routes {
		scored = append(scored, scoreOne(route, prefs))
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].OverallScore > scored[j].OverallScore
	})

	if len(scored) > 0 {
		scored[0].Recommended = true
	}
	return scored
}

func scoreOne(route models.CandidateRoute, prefs models.Preferences) models.ScoredRoute {
	speedScore := 0.0
	if route.DurationSeconds > 0 {
		avgSpeed := route.DistanceMeters / route.DurationSeconds
		speedScore = avgSpeed / speedSaturationMPS
		if speedScore > 1.0 {
			speedScore = 1.0
		}
	}

	turnScore := 1.0
	if len(route.Steps) > 0 && route.DistanceMeters > 0 {
		turnsPerKm := float64(len(route.Steps)) / (route.DistanceMeters / 1000.0)
		turnScore = 1.0 / (1.0 + turnDensityDamping*turnsPerKm)
	}

	noiseScore := clamp(speedProxyWeight*speedScore+turnProxyWeight*turnScore, 0.1, 0.9)
	lightingScore := clamp(noiseScore*1.2, 0.2, 0.9)
	safetyScore := lightingScore

	overall := ((100 - noiseScore*prefs.Quietness*100) + lightingScore*prefs.Brightness*100) / 2

	return models.ScoredRoute{
		CandidateRoute: route,
		NoiseScore:     noiseScore,
		LightingScore:  lightingScore,
		SafetyScore:    safetyScore,
		OverallScore:   overall,
	}
}
