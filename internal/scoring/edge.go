package scoring

import (
	"time"

	"quiet-path-router/internal/models"
)

// EdgeCostBreakdown carries the individual factors behind a segment cost
type EdgeCostBreakdown struct {
	NoiseMultiplier    float64 `json:"noise_multiplier"`
	DarknessMultiplier float64 `json:"darkness_multiplier"`
	ReportsMultiplier  float64 `json:"reports_multiplier"`
	ZoneMultiplier     float64 `json:"zone_multiplier"`
	CostMeters         float64 `json:"cost_meters"`
}

// EdgeCost computes the perceived cost of walking one segment: the physical
// distance scaled by the noise, darkness, report and zone multipliers. The
// factors combine multiplicatively so a single severe one can dominate.
// Unknown attributes fall back to neutral defaults; this never fails for
// well-formed input.
func EdgeCost(seg models.RoadSegment, prefs models.Preferences, reports []models.Report, now time.Time) EdgeCostBreakdown {
	b := EdgeCostBreakdown{
		NoiseMultiplier:    NoiseMultiplier(seg.Class, prefs.Quietness),
		DarknessMultiplier: DarknessMultiplier(seg.Lit, prefs.Brightness, IsNight(now)),
		ReportsMultiplier:  ReportsMultiplier(seg, reports),
		ZoneMultiplier:     ZoneMultiplier(seg, now),
	}
	b.CostMeters = seg.DistanceMeters * b.NoiseMultiplier * b.DarknessMultiplier * b.ReportsMultiplier * b.ZoneMultiplier
	return b
}
