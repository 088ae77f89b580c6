package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversine_IdenticalPoints(t *testing.T) {
	d := Haversine(55.7558, 37.6173, 55.7558, 37.6173)
	assert.Equal(t, 0.0, RoundKm(d))
}

func TestHaversine_KnownDistance(t *testing.T) {
	// Moscow -> Saint Petersburg, ~634 km
	d := Haversine(55.7558, 37.6173, 59.9311, 30.3609)
	assert.InDelta(t, 634, d, 5)
}

func TestHaversine_Symmetry(t *testing.T) {
	a := Haversine(48.8566, 2.3522, 51.5074, -0.1278)
	b := Haversine(51.5074, -0.1278, 48.8566, 2.3522)
	assert.InDelta(t, a, b, 1e-9)
}

func TestRoundKm(t *testing.T) {
	assert.Equal(t, 12.3, RoundKm(12.349))
	assert.Equal(t, 12.4, RoundKm(12.35))
	assert.Equal(t, 0.0, RoundKm(0.04))
}
