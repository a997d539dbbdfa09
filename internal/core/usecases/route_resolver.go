package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/pkg/geospatial"
	"github.com/aitorfdez/flyover/internal/pkg/metrics"
)

// RouteResolver turns two coordinates into a routed path via the
// directions provider, with an optional read-through cache on the
// resolved geometry. It performs no map mutation and no retries; a
// failure surfaces to the orchestrator as-is.
type RouteResolver struct {
	provider ports.DirectionsProvider
	cache    ports.CacheService
	cacheTTL int
	log      *slog.Logger
}

// NewRouteResolver creates a RouteResolver. cache may be nil.
func NewRouteResolver(provider ports.DirectionsProvider, cache ports.CacheService, cacheTTLSeconds int, log *slog.Logger) *RouteResolver {
	if log == nil {
		log = slog.Default()
	}
	return &RouteResolver{provider: provider, cache: cache, cacheTTL: cacheTTLSeconds, log: log}
}

// Resolve fetches a route between origin and destination. Both
// coordinates must be finite and non-identical; profile defaults to
// driving. Distance and duration come through unchanged from the
// provider.
func (r *RouteResolver) Resolve(ctx context.Context, origin, destination domain.Coordinate, profile domain.TravelProfile) (*domain.Route, error) {
	if !origin.IsFinite() || !destination.IsFinite() {
		return nil, fmt.Errorf("resolve route: coordinates must be finite")
	}
	// Endpoints within a meter of each other have no meaningful route.
	if geospatial.Haversine(origin.Lat, origin.Lon, destination.Lat, destination.Lon) < 1 {
		return nil, fmt.Errorf("resolve route: origin and destination coincide")
	}
	if profile == "" {
		profile = domain.ProfileDriving
	}

	key := routeCacheKey(origin, destination, profile)
	if r.cache != nil {
		if data, err := r.cache.Get(ctx, key); err == nil && len(data) > 0 {
			var route domain.Route
			if err := json.Unmarshal(data, &route); err == nil && len(route.Geometry) >= 2 {
				metrics.RoutesResolved.WithLabelValues("cache_hit").Inc()
				return &route, nil
			}
		}
	}

	ctx, span := otel.Tracer("flyover/engine").Start(ctx, "directions.fetch_route")
	defer span.End()

	start := time.Now()
	route, err := r.provider.FetchRoute(ctx, origin, destination, profile)
	metrics.RouteResolveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		switch {
		case domain.IsNetworkError(err):
			metrics.RoutesResolved.WithLabelValues("network_error").Inc()
		default:
			metrics.RoutesResolved.WithLabelValues("no_route").Inc()
		}
		return nil, err
	}
	if len(route.Geometry) < 2 {
		metrics.RoutesResolved.WithLabelValues("no_route").Inc()
		return nil, domain.ErrNoRouteFound
	}
	metrics.RoutesResolved.WithLabelValues("ok").Inc()

	if r.cache != nil {
		if data, err := json.Marshal(route); err == nil {
			if err := r.cache.Set(ctx, key, data, r.cacheTTL); err != nil {
				r.log.Debug("route cache write failed", "error", err)
			}
		}
	}

	return route, nil
}

func routeCacheKey(origin, destination domain.Coordinate, profile domain.TravelProfile) string {
	return fmt.Sprintf("route:%s:%.6f,%.6f:%.6f,%.6f",
		profile, origin.Lon, origin.Lat, destination.Lon, destination.Lat)
}
