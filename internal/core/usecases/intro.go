package usecases

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/pkg/metrics"
)

// IntroController couples the optional intro audio to the first camera
// flight. It runs at most once per session: autoplay is attempted, and
// on the usual policy rejection the controller flips into a manual-start
// state and waits for an explicit user action to retry. Once playback
// has successfully started the sequence never re-triggers, whatever the
// inputs do afterwards.
type IntroController struct {
	audio   ports.AudioPlayer
	camera  *CameraDirector
	view    *ViewModeController
	orch    *Orchestrator
	tour    ports.TourController // optional
	events  ports.EventPublisher // optional
	project *domain.Project
	marks   []domain.Landmark
	defCam  domain.CameraState
	tun     Tunables
	log     *slog.Logger

	mu      sync.Mutex
	started bool
	manual  bool
}

// IntroDeps bundles the collaborators an IntroController is built from.
type IntroDeps struct {
	Audio         ports.AudioPlayer
	Camera        *CameraDirector
	View          *ViewModeController
	Orch          *Orchestrator
	Tour          ports.TourController
	Events        ports.EventPublisher
	Project       *domain.Project
	Landmarks     []domain.Landmark
	DefaultCamera domain.CameraState
	Tunables      Tunables
	Log           *slog.Logger
}

// NewIntroController creates an intro controller for one session.
func NewIntroController(d IntroDeps) *IntroController {
	if d.Log == nil {
		d.Log = slog.Default()
	}
	return &IntroController{
		audio:   d.Audio,
		camera:  d.Camera,
		view:    d.View,
		orch:    d.Orch,
		tour:    d.Tour,
		events:  d.Events,
		project: d.Project,
		marks:   d.Landmarks,
		defCam:  d.DefaultCamera,
		tun:     d.Tunables,
		log:     d.Log,
	}
}

// Run attempts the autoplay path. It returns domain.ErrAutoplayBlocked
// when the client rejects autoplay, in which case the caller surfaces a
// start affordance and a later ManualStart retries. Any call after the
// sequence has started is a no-op.
func (ic *IntroController) Run(ctx context.Context) error {
	ic.mu.Lock()
	if ic.started || ic.manual {
		ic.mu.Unlock()
		return nil
	}
	ic.mu.Unlock()

	err := ic.begin(ctx)
	if errors.Is(err, domain.ErrAutoplayBlocked) {
		ic.mu.Lock()
		ic.manual = true
		ic.mu.Unlock()
		metrics.IntroRuns.WithLabelValues("autoplay_blocked").Inc()
		ic.log.Info("intro autoplay blocked, waiting for manual start")
	}
	return err
}

// ManualStart retries playback after an autoplay rejection. A no-op
// unless the controller is waiting for a manual start.
func (ic *IntroController) ManualStart(ctx context.Context) error {
	ic.mu.Lock()
	if ic.started || !ic.manual {
		ic.mu.Unlock()
		return nil
	}
	ic.mu.Unlock()

	err := ic.begin(ctx)
	if err == nil {
		metrics.IntroRuns.WithLabelValues("manual_start").Inc()
	}
	return err
}

// Pending reports whether the controller is waiting for a manual start.
func (ic *IntroController) Pending() bool {
	ic.mu.Lock()
	defer ic.mu.Unlock()
	return ic.manual && !ic.started
}

func (ic *IntroController) begin(ctx context.Context) error {
	done, err := ic.audio.Play(ctx)
	if err != nil {
		return err
	}

	ic.mu.Lock()
	if ic.started {
		// Lost a race with a concurrent trigger; one sequence is enough.
		ic.mu.Unlock()
		ic.audio.Stop()
		return nil
	}
	ic.started = true
	ic.mu.Unlock()

	metrics.IntroRuns.WithLabelValues("started").Inc()
	ic.log.Info("intro sequence started", "project", ic.project.ID)
	if ic.events != nil {
		_ = ic.events.PublishIntroStarted(ctx, ic.project.ID)
	}

	// Flight to the client building runs alongside the audio.
	go func() {
		target := domain.CameraState{
			Center:  ic.project.Building.Location,
			Zoom:    ic.tun.IntroZoom,
			Pitch:   ic.tun.TiltedPitch,
			Bearing: ic.tun.TiltedBearing,
		}
		if err := ic.camera.MoveTo(ctx, target, ic.tun.IntroDuration); err != nil {
			ic.log.Debug("intro flight aborted", "error", err)
			return
		}
		ic.view.MarkPlaced()
	}()

	go ic.afterAudio(ctx, done)
	return nil
}

// afterAudio runs once the audio asset finishes: start the landmark tour
// when the session is still idle and there is something to tour,
// otherwise settle back onto the default camera.
func (ic *IntroController) afterAudio(ctx context.Context, done <-chan struct{}) {
	select {
	case <-ctx.Done():
		return
	case <-done:
	}

	if ic.tour != nil && len(ic.marks) > 1 && ic.orch.State() == StateIdle {
		if err := ic.tour.Start(ctx, ic.marks); err != nil {
			ic.log.Warn("tour start failed", "error", err)
		}
		return
	}

	if err := ic.camera.Snap(ic.defCam, ic.tun.ToggleDuration); err != nil {
		ic.log.Debug("default camera restore failed", "error", err)
	}
}
