package ports

import (
	"context"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// DirectionsProvider returns a routed path between two coordinates.
// Implementations call the external service exactly once per request;
// retry policy, if any, belongs to the caller. A provider answer with
// zero routes surfaces domain.ErrNoRouteFound; transport failures are
// wrapped in *domain.NetworkError.
type DirectionsProvider interface {
	FetchRoute(ctx context.Context, origin, destination domain.Coordinate, profile domain.TravelProfile) (*domain.Route, error)
}
