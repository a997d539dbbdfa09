package usecases

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/pkg/metrics"
)

// EngineState is the orchestrator's lifecycle position.
type EngineState int

const (
	StateIdle EngineState = iota
	StateResolving
	StateDrawing
	StateDisplayed
	StateClearing
)

func (s EngineState) String() string {
	switch s {
	case StateResolving:
		return "resolving"
	case StateDrawing:
		return "drawing"
	case StateDisplayed:
		return "displayed"
	case StateClearing:
		return "clearing"
	default:
		return "idle"
	}
}

// Orchestrator is the top-level coordinator for one map session. On
// landmark selection it drives resolver → route renderer → camera
// director as one cancellable unit; it owns the generation counter, the
// cached original viewport, and all interruption logic. Exactly one
// generation is ever allowed to mutate renderer or camera state, so what
// is visible always corresponds to the latest request.
type Orchestrator struct {
	gen      *Generation
	resolver *RouteResolver
	routes   *RouteRenderer
	camera   *CameraDirector
	view     *ViewModeController
	renderer ports.MapRenderer
	events   ports.EventPublisher
	tun      Tunables
	style    RouteStyle
	profile  domain.TravelProfile
	project  *domain.Project
	log      *slog.Logger

	mu             sync.Mutex
	state          EngineState
	activeLandmark *domain.Landmark
	activeRoute    *domain.Route
	savedViewport  *domain.CameraState
	cinematic      bool
}

// OrchestratorDeps bundles the collaborators an Orchestrator is built from.
type OrchestratorDeps struct {
	Generation *Generation
	Resolver   *RouteResolver
	Routes     *RouteRenderer
	Camera     *CameraDirector
	View       *ViewModeController
	Renderer   ports.MapRenderer
	Events     ports.EventPublisher // optional
	Project    *domain.Project
	Tunables   Tunables
	Style      RouteStyle
	Profile    domain.TravelProfile
	Log        *slog.Logger
}

// NewOrchestrator creates an idle orchestrator for one session.
func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Profile == "" {
		d.Profile = domain.ProfileDriving
	}
	return &Orchestrator{
		gen:      d.Generation,
		resolver: d.Resolver,
		routes:   d.Routes,
		camera:   d.Camera,
		view:     d.View,
		renderer: d.Renderer,
		events:   d.Events,
		project:  d.Project,
		tun:      d.Tunables,
		style:    d.Style,
		profile:  d.Profile,
		log:      d.Log,
		state:    StateIdle,
	}
}

// State returns the current lifecycle state.
func (o *Orchestrator) State() EngineState {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// ActiveLandmark returns the landmark whose route is displayed, or nil.
func (o *Orchestrator) ActiveLandmark() *domain.Landmark {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.activeLandmark
}

// SelectLandmark starts the resolve → draw → fly chain for a landmark.
// A selection arriving while a route is resolving or displayed is a
// replacement: the current route is torn down (camera untouched) and a
// fresh generation invalidates everything in flight. The returned
// channel delivers the chain's terminal error, nil on success or on a
// stale chain that unwound.
func (o *Orchestrator) SelectLandmark(ctx context.Context, lm domain.Landmark) <-chan error {
	res := make(chan error, 1)

	o.mu.Lock()
	if o.state == StateDrawing || o.state == StateDisplayed {
		o.routes.Teardown()
	}
	g := o.gen.Next()
	o.state = StateResolving
	o.activeLandmark = nil
	o.activeRoute = nil
	o.mu.Unlock()

	o.log.Info("landmark selected", "landmark", lm.ID, "generation", g)

	go func() {
		res <- o.runSelection(ctx, g, lm)
	}()
	return res
}

func (o *Orchestrator) runSelection(ctx context.Context, g int64, lm domain.Landmark) error {
	route, err := o.resolver.Resolve(ctx, o.project.Building.Location, lm.Location, o.profile)
	if err != nil {
		o.mu.Lock()
		if o.gen.IsCurrent(g) && o.state == StateResolving {
			o.state = StateIdle
		}
		o.mu.Unlock()
		o.log.Warn("route resolution failed", "landmark", lm.ID, "error", err)
		if o.events != nil {
			_ = o.events.PublishRouteFailed(ctx, o.project.ID, lm.ID, err)
		}
		return err
	}

	o.mu.Lock()
	if !o.gen.IsCurrent(g) {
		o.mu.Unlock()
		metrics.StaleChainsAbandoned.Inc()
		return nil
	}
	// Cache the viewport once per displayed lifecycle so a clear can
	// restore where the user was before the first selection.
	if o.savedViewport == nil {
		if cam, err := o.renderer.Camera(); err == nil {
			o.savedViewport = &cam
		}
	}
	o.state = StateDrawing
	o.activeRoute = route
	o.activeLandmark = &lm
	mode := o.view.Mode()
	o.mu.Unlock()

	if err := o.routes.ShowRoute(route, o.style); err != nil {
		o.unwind(g)
		return err
	}

	if mode == domain.ViewTilted {
		if err := o.routes.AnimateDraw(ctx, route, o.tun.DrawDuration, g); err != nil {
			return err
		}
	} else {
		if err := o.routes.InstantDraw(route); err != nil {
			return err
		}
	}

	if !o.gen.IsCurrent(g) {
		metrics.StaleChainsAbandoned.Inc()
		return nil
	}

	o.setCinematic(true)
	stages := SelectionStages(o.project.Building, lm, route, mode, o.tun)
	err = o.camera.RunSequence(ctx, stages, g)
	o.setCinematic(false)
	if err != nil {
		return err
	}

	o.mu.Lock()
	if !o.gen.IsCurrent(g) {
		o.mu.Unlock()
		metrics.StaleChainsAbandoned.Inc()
		return nil
	}
	o.state = StateDisplayed
	o.mu.Unlock()

	o.view.MarkPlaced()
	o.log.Info("route displayed", "landmark", lm.ID, "distance_m", route.Distance, "duration_s", route.Duration)
	if o.events != nil {
		_ = o.events.PublishRouteShown(ctx, o.project.ID, lm.ID, route)
	}
	return nil
}

// ClearRoute invalidates anything in flight, tears the route down, and
// restores the viewport cached before the first selection. Valid from
// Resolving, Drawing, or Displayed; a no-op when idle.
func (o *Orchestrator) ClearRoute(ctx context.Context) error {
	o.mu.Lock()
	if o.state == StateIdle || o.state == StateClearing {
		o.mu.Unlock()
		return nil
	}
	o.gen.Next()
	o.state = StateClearing
	lm := o.activeLandmark
	saved := o.savedViewport
	o.activeLandmark = nil
	o.activeRoute = nil
	o.savedViewport = nil
	o.mu.Unlock()

	o.camera.Interrupt()
	o.routes.Teardown()

	if saved != nil {
		if err := o.camera.Snap(*saved, o.tun.ToggleDuration); err != nil {
			o.log.Debug("viewport restore failed", "error", err)
		}
	}

	o.mu.Lock()
	o.state = StateIdle
	o.mu.Unlock()

	metrics.RoutesCleared.Inc()
	if lm != nil {
		o.log.Info("route cleared", "landmark", lm.ID)
		if o.events != nil {
			_ = o.events.PublishRouteCleared(ctx, o.project.ID, lm.ID)
		}
	}
	return nil
}

// BackgroundClick handles a click on empty map space.
//
// Mid-cinematic it is an implicit "skip to the result": camera motion
// stops and the view snaps to the top-mode framing of building plus
// landmark, with the route kept. Otherwise it clears the route if one
// exists, and is a no-op on an idle session.
func (o *Orchestrator) BackgroundClick(ctx context.Context) error {
	o.mu.Lock()
	cinematic := o.cinematic
	lm := o.activeLandmark
	state := o.state
	o.mu.Unlock()

	if cinematic && lm != nil {
		o.camera.Interrupt()
		o.gen.Next()

		b := domain.BoundsOf(o.project.Building.Location, lm.Location)
		if err := o.camera.SnapFit(b, o.tun.FitPadding); err != nil {
			o.log.Debug("interrupt snap failed", "error", err)
		}

		o.mu.Lock()
		o.state = StateDisplayed
		o.mu.Unlock()
		o.view.MarkPlaced()
		o.log.Info("cinematic interrupted, snapped to result", "landmark", lm.ID)
		return nil
	}

	if state == StateIdle {
		return nil
	}
	return o.ClearRoute(ctx)
}

// SetViewMode applies a user view-mode toggle.
func (o *Orchestrator) SetViewMode(mode domain.ViewMode) error {
	return o.view.Toggle(mode)
}

func (o *Orchestrator) setCinematic(v bool) {
	o.mu.Lock()
	o.cinematic = v
	o.mu.Unlock()
}

func (o *Orchestrator) unwind(g int64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.gen.IsCurrent(g) {
		return
	}
	o.state = StateIdle
	o.activeLandmark = nil
	o.activeRoute = nil
}
