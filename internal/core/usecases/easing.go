package usecases

// easeInOutCubic maps linear progress t in [0,1] onto a cubic
// slow-fast-slow curve. Used by the route draw animation.
func easeInOutCubic(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := -2*t + 2
	return 1 - u*u*u/2
}
