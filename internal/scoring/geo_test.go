package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"quiet-path-router/internal/models"
)

func TestDistanceMeters_SamePointIsZero(t *testing.T) {
	points := []models.Coordinates{
		{Lat: 0, Lng: 0},
		{Lat: 45.5017, Lng: -73.5673},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 89.9, Lng: 179.9},
	}
	for _, p := range points {
		assert.Equal(t, 0.0, DistanceMeters(p, p), "d(p,p) must be zero for %+v", p)
	}
}

func TestDistanceMeters_Symmetry(t *testing.T) {
	p1 := models.Coordinates{Lat: 45.5017, Lng: -73.5673}
	p2 := models.Coordinates{Lat: 45.5088, Lng: -73.5540}

	assert.Equal(t, DistanceMeters(p1, p2), DistanceMeters(p2, p1))
}

func TestDistanceMeters_KnownDistance(t *testing.T) {
	// One degree of latitude is roughly 111.2 km on a 6371 km sphere
	p1 := models.Coordinates{Lat: 0, Lng: 0}
	p2 := models.Coordinates{Lat: 1, Lng: 0}

	d := DistanceMeters(p1, p2)
	assert.InDelta(t, 111195, d, 50)
}

func TestDistanceMeters_ShortDistance(t *testing.T) {
	// ~50m north of the origin: 50 / 111195 degrees of latitude
	p1 := models.Coordinates{Lat: 45.0, Lng: -73.0}
	p2 := models.Coordinates{Lat: 45.0 + 50.0/111195.0, Lng: -73.0}

	d := DistanceMeters(p1, p2)
	assert.InDelta(t, 50.0, d, 0.1)
}
