package scoring

import (
	"time"

	"quiet-path-router/internal/models"
)

// Clamp bands for the attribute multipliers. Multipliers are always kept in
// a bounded positive band so edge costs stay monotonic and safe to feed
// into a shortest-path search later.
const (
	noiseMultiplierMin = 0.5
	noiseMultiplierMax = 3.0

	darknessMultiplierMin = 0.5
	darknessMultiplierMax = 2.5

	// Reports can push a segment well above baseline but never past this
	// ceiling. There is no floor: safe/quiet reports may legitimately make
	// a segment cheaper than baseline.
	reportsMultiplierCeiling = 5.0

	// Reports farther than this from both segment endpoints are ignored
	reportInfluenceRadiusMeters = 50.0
)

// noiseWeights orders road classes from loudest to quietest. The unknown
// class takes the residential weight.
var noiseWeights = map[models.RoadClass]float64{
	models.RoadClassMotorway:     3.0,
	models.RoadClassTrunk:        2.8,
	models.RoadClassPrimary:      2.5,
	models.RoadClassSecondary:    2.0,
	models.RoadClassTertiary:     1.5,
	models.RoadClassResidential:  1.0,
	models.RoadClassLivingStreet: 0.8,
	models.RoadClassPedestrian:   0.6,
	models.RoadClassPath:         0.5,
	models.RoadClassFootway:      0.5,
	models.RoadClassCycleway:     0.7,
	models.RoadClassUnknown:      1.0,
}

var darknessWeights = map[models.LitStatus]float64{
	models.LitYes:     0.5,
	models.LitLimited: 1.0,
	models.LitNo:      2.0,
	models.LitUnknown: 1.5,
}

// reportWeights holds the per-category contribution of a report at distance
// zero. Safe and quiet carry negative weight: they lower the accumulator.
var reportWeights = map[models.ReportCategory]float64{
	models.ReportLoud:        2.0,
	models.ReportDark:        1.8,
	models.ReportCrowded:     1.5,
	models.ReportObstruction: 3.0,
	models.ReportSafe:        -0.7,
	models.ReportQuiet:       -0.5,
}

// NoiseMultiplier maps a road class and the user's quietness preference to
// a cost multiplier. A quietness of zero returns exactly 1.0 so that
// no-preference routes are unaffected by road-class noise.
func NoiseMultiplier(class models.RoadClass, quietness float64) float64 {
	if quietness == 0 {
		return 1.0
	}
	base, ok := noiseWeights[class]
	if !ok {
		base = noiseWeights[models.RoadClassUnknown]
	}
	return clamp(1.0+(base-1.0)*quietness, noiseMultiplierMin, noiseMultiplierMax)
}

// DarknessMultiplier maps a segment's lighting status and the user's
// brightness preference to a cost multiplier. Lighting is irrelevant by
// day or when the user does not care, in which case the result is 1.0.
func DarknessMultiplier(lit models.LitStatus, brightness float64, night bool) float64 {
	if brightness == 0 || !night {
		return 1.0
	}
	base, ok := darknessWeights[lit]
	if !ok {
		base = darknessWeights[models.LitUnknown]
	}
	return clamp(1.0+(base-1.0)*brightness, darknessMultiplierMin, darknessMultiplierMax)
}

// IsNight reports whether the local hour counts as night for the darkness
// model. The boundary is fixed: before 06:00 or after 18:00.
func IsNight(now time.Time) bool {
	h := now.Hour()
	return h < 6 || h > 18
}

// ZoneMultiplier adjusts cost for segments flagged as school, nightlife or
// market zones based on the given local time. Zone effects model objective
// conditions, so they apply regardless of user preference. Multipliers
// compound when a segment carries more than one active flag.
func ZoneMultiplier(seg models.RoadSegment, now time.Time) float64 {
	m := 1.0
	h := now.Hour()
	wd := now.Weekday()

	if seg.SchoolZone {
		weekday := wd >= time.Monday && wd <= time.Friday
		if weekday && ((h >= 7 && h <= 9) || (h >= 14 && h <= 16)) {
			m *= 1.8
		}
	}
	if seg.NightlifeZone {
		weekend := wd == time.Friday || wd == time.Saturday || wd == time.Sunday
		if weekend && (h >= 21 || h <= 2) {
			m *= 2.0
		}
	}
	if seg.MarketZone && h >= 8 && h <= 20 {
		m *= 1.5
	}
	return m
}

// ReportsMultiplier aggregates nearby active reports into a segment-level
// penalty. Each report within 50 m of either segment endpoint contributes
// its category weight scaled down linearly with distance; a report at
// exactly 50 m contributes nothing. Distance to the segment is approximated
// by the nearer of the two endpoints rather than true point-to-polyline
// distance.
func ReportsMultiplier(seg models.RoadSegment, reports []models.Report) float64 {
	start, end := seg.Endpoints()
	m := 1.0
	for _, r := range reports {
		d := DistanceMeters(r.Location, start)
		if d2 := DistanceMeters(r.Location, end); d2 < d {
			d = d2
		}
		if d >= reportInfluenceRadiusMeters {
			continue
		}
		weight, ok := reportWeights[r.Category]
		if !ok {
			continue
		}
		m += weight * (1 - d/reportInfluenceRadiusMeters)
	}
	if m > reportsMultiplierCeiling {
		return reportsMultiplierCeiling
	}
	return m
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
