package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoRouteFound means the directions provider answered but returned
	// zero routes between the two points.
	ErrNoRouteFound = errors.New("no route found")

	// ErrRendererUnavailable means the map renderer is not ready to accept
	// commands (style not loaded, session torn down mid-operation).
	// Teardown paths treat it as a benign no-op.
	ErrRendererUnavailable = errors.New("renderer unavailable")

	// ErrAutoplayBlocked is the recognized outcome of an audio autoplay
	// attempt rejected by the client runtime. It is not fatal; it flips
	// the intro controller into its manual-start state.
	ErrAutoplayBlocked = errors.New("audio autoplay blocked")
)

// NetworkError wraps a failed directions request so callers can
// distinguish transport failures from empty provider results.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("directions request failed: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetworkError reports whether err is (or wraps) a NetworkError.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
