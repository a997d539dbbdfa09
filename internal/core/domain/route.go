package domain

// TravelProfile selects how the directions provider routes between two points.
type TravelProfile string

const (
	ProfileDriving TravelProfile = "driving"
	ProfileWalking TravelProfile = "walking"
	ProfileCycling TravelProfile = "cycling"
)

// Route is a resolved path between two points as returned by the
// directions provider. Distance is meters, Duration is seconds; both are
// carried through unchanged from the provider response.
type Route struct {
	Geometry []Coordinate `json:"geometry"`
	Distance float64      `json:"distance"`
	Duration float64      `json:"duration"`
}

// Origin returns the first coordinate of the route geometry.
func (r *Route) Origin() Coordinate {
	if len(r.Geometry) == 0 {
		return Coordinate{}
	}
	return r.Geometry[0]
}

// Destination returns the last coordinate of the route geometry.
func (r *Route) Destination() Coordinate {
	if len(r.Geometry) == 0 {
		return Coordinate{}
	}
	return r.Geometry[len(r.Geometry)-1]
}
