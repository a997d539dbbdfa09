package geospatial

import (
	"math"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// Bearing returns the compass bearing in degrees from one coordinate to
// another, where 0° is north and 90° is east. It uses the flat
// atan2(Δlon, Δlat) approximation, which is what the map camera expects
// over showcase-scale distances.
func Bearing(from, to domain.Coordinate) float64 {
	deg := math.Atan2(to.Lon-from.Lon, to.Lat-from.Lat) * 180 / math.Pi
	return NormalizeBearing(deg)
}

// ArrivalBearing returns the direction of travel over the final segment
// of a route geometry, so a camera can arrive "facing" the destination
// along the road. Routes with fewer than two points, or with a
// zero-length final segment, have no arrival direction; ok is false and
// the caller falls back to a straight-line bearing.
func ArrivalBearing(geometry []domain.Coordinate) (bearing float64, ok bool) {
	if len(geometry) < 2 {
		return 0, false
	}
	a := geometry[len(geometry)-2]
	b := geometry[len(geometry)-1]
	if a == b {
		return 0, false
	}
	return Bearing(a, b), true
}

// NormalizeBearing maps any angle into [0, 360).
func NormalizeBearing(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
