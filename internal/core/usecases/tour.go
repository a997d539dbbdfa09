package usecases

import (
	"context"
	"log/slog"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
)

// LandmarkTour flies the camera over each landmark in turn. The intro
// sequence starts it after the narration ends, when the session is
// still idle. Any user interaction bumps the generation and the tour
// quietly stops where it is.
type LandmarkTour struct {
	camera *CameraDirector
	orch   *Orchestrator
	clock  ports.FrameClock
	gen    *Generation
	tun    Tunables
	log    *slog.Logger
}

// NewLandmarkTour creates a tour runner for one session.
func NewLandmarkTour(camera *CameraDirector, orch *Orchestrator, clock ports.FrameClock, gen *Generation, tun Tunables, log *slog.Logger) *LandmarkTour {
	if log == nil {
		log = slog.Default()
	}
	return &LandmarkTour{camera: camera, orch: orch, clock: clock, gen: gen, tun: tun, log: log}
}

// Start visits each landmark with a slow tilted flight and a short hold.
// It returns nil when abandoned: a stale tour is not an error.
func (t *LandmarkTour) Start(ctx context.Context, landmarks []domain.Landmark) error {
	start := t.gen.Current()
	t.log.Info("landmark tour starting", "landmarks", len(landmarks))

	for _, lm := range landmarks {
		if !t.gen.IsCurrent(start) || t.orch.State() != StateIdle {
			t.log.Debug("landmark tour abandoned", "at", lm.Title)
			return nil
		}

		target := domain.CameraState{
			Center:  lm.Location,
			Zoom:    t.tun.ApproachZoom,
			Pitch:   t.tun.TiltedPitch,
			Bearing: t.tun.TiltedBearing,
		}
		if err := t.camera.MoveTo(ctx, target, t.tun.ApproachDuration); err != nil {
			return err
		}
		if err := t.clock.Sleep(ctx, t.tun.HoldDuration); err != nil {
			return err
		}
	}

	t.log.Info("landmark tour finished")
	return nil
}

var _ ports.TourController = (*LandmarkTour)(nil)
