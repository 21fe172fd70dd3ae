package models

import (
	"encoding/json"
	"time"
)

// Coordinates represents a geographic point
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// BoundingBox is a lat/lng aligned rectangle used for spatial queries
type BoundingBox struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

// Contains reports whether the point lies inside the box (inclusive)
func (b BoundingBox) Contains(p Coordinates) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// Expand grows the box by the given margin in degrees on every side
func (b BoundingBox) Expand(margin float64) BoundingBox {
	return BoundingBox{
		MinLat: b.MinLat - margin,
		MinLng: b.MinLng - margin,
		MaxLat: b.MaxLat + margin,
		MaxLng: b.MaxLng + margin,
	}
}

// BoundsOf returns the bounding box of a set of points
func BoundsOf(points []Coordinates) BoundingBox {
	if len(points) == 0 {
		return BoundingBox{}
	}
	b := BoundingBox{
		MinLat: points[0].Lat, MaxLat: points[0].Lat,
		MinLng: points[0].Lng, MaxLng: points[0].Lng,
	}
	for _, p := range points[1:] {
		if p.Lat < b.MinLat {
			b.MinLat = p.Lat
		}
		if p.Lat > b.MaxLat {
			b.MaxLat = p.Lat
		}
		if p.Lng < b.MinLng {
			b.MinLng = p.Lng
		}
		if p.Lng > b.MaxLng {
			b.MaxLng = p.Lng
		}
	}
	return b
}

// Preferences holds the caller's comfort weighting, each in [0,1].
// Zero means "ignore this dimension entirely".
type Preferences struct {
	Quietness  float64 `json:"quietness"`
	Brightness float64 `json:"brightness"`
}

// Validate rejects out-of-range preference values. The scoring engine never
// clamps preferences; bad values must be rejected before scoring so upstream
// bugs are not masked.
func (p Preferences) Validate() error {
	if p.Quietness < 0 || p.Quietness > 1 {
		return &ErrInvalidPreference{Field: "quietness", Value: p.Quietness}
	}
	if p.Brightness < 0 || p.Brightness > 1 {
		return &ErrInvalidPreference{Field: "brightness", Value: p.Brightness}
	}
	return nil
}

// ErrInvalidPreference is returned when a preference value is outside [0,1]
type ErrInvalidPreference struct {
	Field string
	Value float64
}

func (e *ErrInvalidPreference) Error() string {
	return "preference " + e.Field + " must be in [0,1]"
}

// RoadClass is the OSM-style highway classification of a segment
type RoadClass int

const (
	RoadClassUnknown RoadClass = iota
	RoadClassMotorway
	RoadClassTrunk
	RoadClassPrimary
	RoadClassSecondary
	RoadClassTertiary
	RoadClassResidential
	RoadClassLivingStreet
	RoadClassPedestrian
	RoadClassPath
	RoadClassFootway
	RoadClassCycleway
)

var roadClassNames = map[RoadClass]string{
	RoadClassUnknown:      "unknown",
	RoadClassMotorway:     "motorway",
	RoadClassTrunk:        "trunk",
	RoadClassPrimary:      "primary",
	RoadClassSecondary:    "secondary",
	RoadClassTertiary:     "tertiary",
	RoadClassResidential:  "residential",
	RoadClassLivingStreet: "living_street",
	RoadClassPedestrian:   "pedestrian",
	RoadClassPath:         "path",
	RoadClassFootway:      "footway",
	RoadClassCycleway:     "cycleway",
}

func (c RoadClass) String() string {
	if name, ok := roadClassNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseRoadClass maps a road class name to its enum value. Unrecognized
// names map to RoadClassUnknown rather than failing, since attribute data
// is best-effort.
func ParseRoadClass(s string) RoadClass {
	for class, name := range roadClassNames {
		if name == s {
			return class
		}
	}
	// Accept the hyphenated OSM spelling too
	if s == "living-street" {
		return RoadClassLivingStreet
	}
	return RoadClassUnknown
}

// MarshalJSON encodes the road class as its name
func (c RoadClass) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a road class name; unknown names become
// RoadClassUnknown
func (c *RoadClass) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseRoadClass(s)
	return nil
}

// LitStatus is the street-lighting indicator of a segment
type LitStatus int

const (
	LitUnknown LitStatus = iota
	LitYes
	LitNo
	LitLimited
)

var litStatusNames = map[LitStatus]string{
	LitUnknown: "unknown",
	LitYes:     "yes",
	LitNo:      "no",
	LitLimited: "limited",
}

func (l LitStatus) String() string {
	if name, ok := litStatusNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseLitStatus maps a lighting value to its enum; unrecognized values
// become LitUnknown.
func ParseLitStatus(s string) LitStatus {
	for lit, name := range litStatusNames {
		if name == s {
			return lit
		}
	}
	return LitUnknown
}

// MarshalJSON encodes the lit status as its name
func (l LitStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.String())
}

// UnmarshalJSON decodes a lit status name; unknown values become LitUnknown
func (l *LitStatus) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = ParseLitStatus(s)
	return nil
}

// ReportCategory classifies a user-submitted report
type ReportCategory int

const (
	ReportCategoryUnknown ReportCategory = iota
	ReportLoud
	ReportDark
	ReportCrowded
	ReportObstruction
	ReportSafe
	ReportQuiet
)

var reportCategoryNames = map[ReportCategory]string{
	ReportCategoryUnknown: "unknown",
	ReportLoud:            "loud",
	ReportDark:            "dark",
	ReportCrowded:         "crowded",
	ReportObstruction:     "obstruction",
	ReportSafe:            "safe",
	ReportQuiet:           "quiet",
}

func (c ReportCategory) String() string {
	if name, ok := reportCategoryNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseReportCategory maps a category name to its enum; unrecognized names
// become ReportCategoryUnknown.
func ParseReportCategory(s string) ReportCategory {
	for cat, name := range reportCategoryNames {
		if name == s {
			return cat
		}
	}
	return ReportCategoryUnknown
}

// MarshalJSON encodes the category as its name
func (c ReportCategory) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON decodes a category name; unknown names become
// ReportCategoryUnknown
func (c *ReportCategory) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*c = ParseReportCategory(s)
	return nil
}

// Retention returns how long reports of this category stay active before
// the expiry sweep removes them.
func (c ReportCategory) Retention() time.Duration {
	switch c {
	case ReportLoud:
		return 4 * time.Hour
	case ReportCrowded:
		return 2 * time.Hour
	case ReportObstruction:
		return 4 * 7 * 24 * time.Hour
	case ReportDark:
		return 30 * 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// RoadSegment is one contiguous piece of road with roughly uniform
// attributes, sourced from the road-attribute store
type RoadSegment struct {
	ID             int64         `json:"id"`
	Class          RoadClass     `json:"road_class"`
	Lit            LitStatus     `json:"lit"`
	SchoolZone     bool          `json:"school_zone"`
	NightlifeZone  bool          `json:"nightlife_zone"`
	MarketZone     bool          `json:"market_zone"`
	Geometry       []Coordinates `json:"geometry"`
	DistanceMeters float64       `json:"distance_meters"`
}

// Endpoints returns the first and last point of the segment geometry
func (s *RoadSegment) Endpoints() (Coordinates, Coordinates) {
	if len(s.Geometry) == 0 {
		return Coordinates{}, Coordinates{}
	}
	return s.Geometry[0], s.Geometry[len(s.Geometry)-1]
}

// Report is a user-submitted, time-limited point observation
type Report struct {
	ID        string         `json:"id"`
	Location  Coordinates    `json:"location"`
	Category  ReportCategory `json:"category"`
	CreatedAt time.Time      `json:"created_at"`
}

// ExpiresAt returns the instant this report stops being active
func (r *Report) ExpiresAt() time.Time {
	return r.CreatedAt.Add(r.Category.Retention())
}

// RouteStep is one maneuver boundary within a candidate route
type RouteStep struct {
	Location        Coordinates `json:"location"`
	DistanceMeters  float64     `json:"distance_meters"`
	DurationSeconds float64     `json:"duration_seconds"`
}

// CandidateRoute is one path returned by the routing oracle. It is
// immutable input to scoring; scoring attaches derived fields on a new
// ScoredRoute value instead of mutating the candidate.
type CandidateRoute struct {
	ID              string        `json:"id"`
	Geometry        []Coordinates `json:"geometry"`
	DistanceMeters  float64       `json:"distance_meters"`
	DurationSeconds float64       `json:"duration_seconds"`
	Steps           []RouteStep   `json:"steps"`
}

// Bounds returns the bounding box of the route geometry
func (r *CandidateRoute) Bounds() BoundingBox {
	return BoundsOf(r.Geometry)
}

// ScoredRoute is a candidate route annotated with comfort scores
type ScoredRoute struct {
	CandidateRoute
	NoiseScore    float64 `json:"noise_score"`
	LightingScore float64 `json:"lighting_score"`
	SafetyScore   float64 `json:"safety_score"`
	OverallScore  float64 `json:"overall_score"`
	Recommended   bool    `json:"recommended"`
}
