package geospatial_test

import (
	"math"
	"testing"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/pkg/geospatial"
)

func TestBearing_CardinalDirections(t *testing.T) {
	origin := domain.Coordinate{Lon: -2.93, Lat: 43.26}

	cases := []struct {
		name string
		to   domain.Coordinate
		want float64
	}{
		{"north", domain.Coordinate{Lon: -2.93, Lat: 43.27}, 0},
		{"east", domain.Coordinate{Lon: -2.92, Lat: 43.26}, 90},
		{"south", domain.Coordinate{Lon: -2.93, Lat: 43.25}, 180},
		{"west", domain.Coordinate{Lon: -2.94, Lat: 43.26}, 270},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := geospatial.Bearing(origin, tc.to)
			if math.Abs(got-tc.want) > 0.01 {
				t.Errorf("expected %.0f°, got %.2f°", tc.want, got)
			}
		})
	}
}

func TestNormalizeBearing(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{0, 0},
		{360, 0},
		{-90, 270},
		{450, 90},
		{-720, 0},
	}
	for _, tc := range cases {
		if got := geospatial.NormalizeBearing(tc.in); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("NormalizeBearing(%.0f): expected %.0f, got %.6f", tc.in, tc.want, got)
		}
	}
}

func TestArrivalBearing(t *testing.T) {
	geometry := []domain.Coordinate{
		{Lon: -2.95, Lat: 43.20},
		{Lon: -2.94, Lat: 43.24},
		{Lon: -2.94, Lat: 43.26}, // final leg heads due north
	}
	bearing, ok := geospatial.ArrivalBearing(geometry)
	if !ok {
		t.Fatal("expected a defined arrival bearing")
	}
	if math.Abs(bearing) > 0.01 {
		t.Errorf("expected ~0° (north), got %.2f°", bearing)
	}
}

func TestArrivalBearing_Degenerate(t *testing.T) {
	if _, ok := geospatial.ArrivalBearing(nil); ok {
		t.Error("empty geometry cannot have an arrival bearing")
	}
	if _, ok := geospatial.ArrivalBearing([]domain.Coordinate{{Lon: 1, Lat: 2}}); ok {
		t.Error("single point cannot have an arrival bearing")
	}
	same := domain.Coordinate{Lon: -2.93, Lat: 43.26}
	if _, ok := geospatial.ArrivalBearing([]domain.Coordinate{same, same}); ok {
		t.Error("zero-length final segment cannot have an arrival bearing")
	}
}
