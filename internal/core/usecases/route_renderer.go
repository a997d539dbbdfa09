package usecases

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/pkg/metrics"
)

const (
	routeSourceID    = "flyover-route"
	routeGlowLayerID = "flyover-route-glow"
	routeLineLayerID = "flyover-route-line"
)

// RouteStyle describes the glow/line layer pair a route is drawn with.
// Two overlapping passes keep the line legible against arbitrary map
// styles: a wide faint glow beneath a narrow opaque line.
type RouteStyle struct {
	LineColor   string
	LineWidth   float64
	LineOpacity float64
	GlowColor   string
	GlowWidth   float64
	GlowOpacity float64
}

// DefaultRouteStyle returns the stock route appearance.
func DefaultRouteStyle() RouteStyle {
	return RouteStyle{
		LineColor:   "#3b82f6",
		LineWidth:   4,
		LineOpacity: 0.95,
		GlowColor:   "#93c5fd",
		GlowWidth:   12,
		GlowOpacity: 0.35,
	}
}

// RouteRenderer owns the map's route source and layers. It knows how to
// add a route, animate its reveal, write it in one shot, and tear it
// down. The generation token is checked every animation frame; a stale
// draw loop stops silently, leaving whatever was last drawn for the
// orchestrator to remove on proper clear.
type RouteRenderer struct {
	renderer ports.MapRenderer
	clock    ports.FrameClock
	gen      *Generation
	log      *slog.Logger

	mu    sync.Mutex
	shown bool
}

// NewRouteRenderer creates a RouteRenderer bound to one map session.
func NewRouteRenderer(renderer ports.MapRenderer, clock ports.FrameClock, gen *Generation, log *slog.Logger) *RouteRenderer {
	if log == nil {
		log = slog.Default()
	}
	return &RouteRenderer{renderer: renderer, clock: clock, gen: gen, log: log}
}

// ShowRoute materializes the route source and its glow/line layer pair.
// Any previously displayed route is torn down first, without touching
// the camera. The source starts with a two-point prefix so a following
// AnimateDraw reveals from (almost) zero; InstantDraw overwrites it with
// the full geometry.
func (rr *RouteRenderer) ShowRoute(route *domain.Route, style RouteStyle) error {
	if route == nil || len(route.Geometry) < 2 {
		return fmt.Errorf("show route: geometry needs at least 2 points")
	}

	rr.mu.Lock()
	defer rr.mu.Unlock()

	if rr.shown {
		rr.removeLocked()
	}

	prefix := domain.LineString{Coordinates: route.Geometry[:2]}
	if err := rr.renderer.AddLineSource(routeSourceID, prefix); err != nil {
		return fmt.Errorf("add route source: %w", err)
	}
	glow := ports.LineLayerSpec{
		ID:       routeGlowLayerID,
		SourceID: routeSourceID,
		Color:    style.GlowColor,
		Width:    style.GlowWidth,
		Opacity:  style.GlowOpacity,
		Blur:     1,
	}
	if err := rr.renderer.AddLineLayer(glow); err != nil {
		// Roll back the half-added source so a failed show leaves nothing behind.
		_ = rr.renderer.RemoveSource(routeSourceID)
		return fmt.Errorf("add glow layer: %w", err)
	}
	line := ports.LineLayerSpec{
		ID:       routeLineLayerID,
		SourceID: routeSourceID,
		Color:    style.LineColor,
		Width:    style.LineWidth,
		Opacity:  style.LineOpacity,
	}
	if err := rr.renderer.AddLineLayer(line); err != nil {
		_ = rr.renderer.RemoveLayer(routeGlowLayerID)
		_ = rr.renderer.RemoveSource(routeSourceID)
		return fmt.Errorf("add line layer: %w", err)
	}

	rr.shown = true
	return nil
}

// AnimateDraw progressively reveals the route from its origin over the
// given duration using an ease-in-out-cubic curve, recomputing the
// revealed coordinate prefix every frame. At least two points are always
// revealed so a degenerate zero-length line is never rendered. The loop
// stops without error the instant gen goes stale.
func (rr *RouteRenderer) AnimateDraw(ctx context.Context, route *domain.Route, duration time.Duration, gen int64) error {
	total := len(route.Geometry)
	if total < 2 {
		return fmt.Errorf("animate draw: geometry needs at least 2 points")
	}
	if duration <= 0 {
		return rr.InstantDraw(route)
	}

	start := rr.clock.Now()
	for {
		if err := rr.clock.Frame(ctx); err != nil {
			return err
		}
		if !rr.gen.IsCurrent(gen) {
			metrics.StaleChainsAbandoned.Inc()
			return nil
		}

		t := float64(rr.clock.Now().Sub(start)) / float64(duration)
		if t >= 1 {
			return rr.setData(route.Geometry)
		}

		n := 2 + int(easeInOutCubic(t)*float64(total-2))
		if n > total {
			n = total
		}
		if err := rr.setData(route.Geometry[:n]); err != nil {
			return err
		}
	}
}

// InstantDraw writes the full geometry in one call. Used when the
// session is in the top view, which favors clarity over spectacle.
func (rr *RouteRenderer) InstantDraw(route *domain.Route) error {
	return rr.setData(route.Geometry)
}

// Teardown removes the route layers and source if present. Calling it
// when nothing is displayed is a no-op, as is a renderer that has
// already gone away.
func (rr *RouteRenderer) Teardown() {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	if !rr.shown {
		return
	}
	rr.removeLocked()
}

// Shown reports whether a route is currently materialized on the map.
func (rr *RouteRenderer) Shown() bool {
	rr.mu.Lock()
	defer rr.mu.Unlock()
	return rr.shown
}

func (rr *RouteRenderer) setData(coords []domain.Coordinate) error {
	err := rr.renderer.SetLineData(routeSourceID, domain.LineString{Coordinates: coords})
	if errors.Is(err, domain.ErrRendererUnavailable) {
		return nil
	}
	return err
}

func (rr *RouteRenderer) removeLocked() {
	for _, id := range []string{routeLineLayerID, routeGlowLayerID} {
		if err := rr.renderer.RemoveLayer(id); err != nil && !errors.Is(err, domain.ErrRendererUnavailable) {
			rr.log.Debug("remove layer failed", "layer", id, "error", err)
		}
	}
	if err := rr.renderer.RemoveSource(routeSourceID); err != nil && !errors.Is(err, domain.ErrRendererUnavailable) {
		rr.log.Debug("remove source failed", "error", err)
	}
	rr.shown = false
}
