package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/core/usecases"
	"github.com/aitorfdez/flyover/internal/pkg/logging"
	"github.com/aitorfdez/flyover/internal/pkg/metrics"
)

// WebSocketHandler runs one engine session per connection. The client
// identifies its project with ?project=<uuid-or-slug>, then exchanges
// JSON frames: outbound renderer commands ({"op": ...}) and inbound
// interaction events ({"event": ...}).
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		projectKey := c.Query("project")
		log := logging.Component("session").With(
			"project", projectKey,
			"remote", c.RemoteAddr().String(),
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		project, landmarks, err := loadProject(ctx, deps, projectKey)
		if err != nil {
			log.Error("project load failed", "error", err)
			writeFrame(c, map[string]interface{}{"op": "error", "message": "project lookup failed"})
			return
		}
		if project == nil {
			writeFrame(c, map[string]interface{}{"op": "error", "message": "unknown project: " + projectKey})
			return
		}

		metrics.ActiveSessions.Inc()
		defer metrics.ActiveSessions.Dec()
		log.Info("session connected", "landmarks", len(landmarks))

		bridge := NewRendererBridge(c, project.IntroAudioURL, log)
		defer bridge.Close()

		eng := newSessionEngine(deps, bridge, project, landmarks, log)

		// Hand the client everything it needs to boot its map.
		_ = bridge.Send(map[string]interface{}{
			"op":        "init",
			"project":   project,
			"landmarks": landmarks,
		})

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := bridge.Ping(); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var ev clientEvent
			if err := json.Unmarshal(msg, &ev); err != nil {
				_ = bridge.Send(map[string]interface{}{"op": "error", "message": "invalid JSON"})
				continue
			}

			if bridge.HandleEvent(ev) {
				continue
			}
			eng.dispatch(ctx, ev)
		}

		log.Info("session disconnected")
	}
}

// writeFrame is for errors before the bridge exists.
func writeFrame(c *websocket.Conn, frame map[string]interface{}) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	_ = c.WriteMessage(websocket.TextMessage, data)
}

func loadProject(ctx context.Context, deps *Dependencies, key string) (*domain.Project, []domain.Landmark, error) {
	if key == "" {
		return nil, nil, nil
	}

	var (
		project *domain.Project
		err     error
	)
	if _, uerr := uuid.Parse(key); uerr == nil {
		project, err = deps.Projects.GetProject(ctx, key)
	} else {
		project, err = deps.Projects.GetProjectBySlug(ctx, key)
	}
	if err != nil || project == nil {
		return nil, nil, err
	}

	landmarks, err := deps.Projects.ListLandmarks(ctx, project.ID)
	if err != nil {
		return nil, nil, err
	}
	return project, landmarks, nil
}

// sessionEngine is the per-connection assembly of the cinematic engine:
// one generation counter, one frame clock, and one orchestrator, all
// talking to the client through the bridge.
type sessionEngine struct {
	bridge  *RendererBridge
	orch    *usecases.Orchestrator
	intro   *usecases.IntroController
	project *domain.Project
	marks   map[string]domain.Landmark
	log     *slog.Logger

	introOnce sync.Once
	hasIntro  bool
}

func newSessionEngine(deps *Dependencies, bridge *RendererBridge, project *domain.Project, landmarks []domain.Landmark, log *slog.Logger) *sessionEngine {
	gen := &usecases.Generation{}
	clock := ports.NewTickClock(deps.FrameInterval)

	routes := usecases.NewRouteRenderer(bridge, clock, gen, log)
	camera := usecases.NewCameraDirector(bridge, clock, gen, log)
	view := usecases.NewViewModeController(bridge, deps.Tunables, log)

	orch := usecases.NewOrchestrator(usecases.OrchestratorDeps{
		Generation: gen,
		Resolver:   deps.Resolver,
		Routes:     routes,
		Camera:     camera,
		View:       view,
		Renderer:   bridge,
		Events:     deps.Events,
		Project:    project,
		Tunables:   deps.Tunables,
		Style:      usecases.DefaultRouteStyle(),
		Profile:    deps.Profile,
		Log:        log,
	})

	tour := usecases.NewLandmarkTour(camera, orch, clock, gen, deps.Tunables, log)

	intro := usecases.NewIntroController(usecases.IntroDeps{
		Audio:     bridge,
		Camera:    camera,
		View:      view,
		Orch:      orch,
		Tour:      tour,
		Events:    deps.Events,
		Project:   project,
		Landmarks: landmarks,
		DefaultCamera: domain.CameraState{
			Center:  project.Building.Location,
			Zoom:    deps.Tunables.IntroZoom,
			Pitch:   deps.Tunables.TiltedPitch,
			Bearing: deps.Tunables.TiltedBearing,
		},
		Tunables: deps.Tunables,
		Log:      log,
	})

	marks := make(map[string]domain.Landmark, len(landmarks))
	for _, lm := range landmarks {
		marks[lm.ID] = lm
	}

	return &sessionEngine{
		bridge:   bridge,
		orch:     orch,
		intro:    intro,
		project:  project,
		marks:    marks,
		log:      log,
		hasIntro: project.IntroAudioURL != "",
	}
}

// dispatch routes one session-level client event into the engine. Each
// action runs on its own goroutine; the orchestrator's generation token
// settles any races between them.
func (s *sessionEngine) dispatch(ctx context.Context, ev clientEvent) {
	switch ev.Event {
	case "style_loaded":
		if !s.hasIntro {
			return
		}
		s.introOnce.Do(func() {
			go func() {
				if err := s.intro.Run(ctx); errors.Is(err, domain.ErrAutoplayBlocked) {
					_ = s.bridge.Send(map[string]interface{}{"op": "intro_blocked"})
				}
			}()
		})

	case "start_intro":
		go func() {
			if err := s.intro.ManualStart(ctx); err != nil {
				s.log.Warn("manual intro start failed", "error", err)
			}
		}()

	case "select_landmark":
		lm, ok := s.marks[ev.LandmarkID]
		if !ok {
			_ = s.bridge.Send(map[string]interface{}{"op": "error", "message": "unknown landmark: " + ev.LandmarkID})
			return
		}
		errs := s.orch.SelectLandmark(ctx, lm)
		go func() {
			err := <-errs
			if err == nil {
				return
			}
			reason := "internal"
			switch {
			case errors.Is(err, domain.ErrNoRouteFound):
				reason = "no_route"
			case domain.IsNetworkError(err):
				reason = "network"
			}
			_ = s.bridge.Send(map[string]interface{}{
				"op":          "route_failed",
				"landmark_id": lm.ID,
				"reason":      reason,
			})
		}()

	case "background_click":
		go func() {
			if err := s.orch.BackgroundClick(ctx); err != nil {
				s.log.Warn("background click failed", "error", err)
			}
		}()

	case "set_view_mode":
		mode := domain.ParseViewMode(ev.Mode)
		go func() {
			if err := s.orch.SetViewMode(mode); err != nil {
				s.log.Warn("view mode toggle failed", "error", err)
			}
		}()

	case "clear_route":
		go func() {
			if err := s.orch.ClearRoute(ctx); err != nil {
				s.log.Warn("route clear failed", "error", err)
			}
		}()

	default:
		_ = s.bridge.Send(map[string]interface{}{"op": "error", "message": "unknown event: " + ev.Event})
	}
}
