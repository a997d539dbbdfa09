package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/pkg/geospatial"
	"github.com/aitorfdez/flyover/internal/pkg/metrics"
)

// CameraDirector issues single-shot and multi-stage camera moves against
// the map renderer. Sequences check the generation token and the
// interrupt flag before every stage; on either tripping, the sequence
// stops cleanly without starting the next stage. Camera motion already
// handed to the renderer is left alone; visual continuity belongs to the
// renderer, not the engine.
type CameraDirector struct {
	renderer    ports.MapRenderer
	clock       ports.FrameClock
	gen         *Generation
	log         *slog.Logger
	interrupted atomic.Bool
}

// NewCameraDirector creates a CameraDirector bound to one map session.
func NewCameraDirector(renderer ports.MapRenderer, clock ports.FrameClock, gen *Generation, log *slog.Logger) *CameraDirector {
	if log == nil {
		log = slog.Default()
	}
	return &CameraDirector{renderer: renderer, clock: clock, gen: gen, log: log}
}

// MoveTo runs a single eased transition and returns when it has had time
// to visually complete.
func (d *CameraDirector) MoveTo(ctx context.Context, target domain.CameraState, duration time.Duration) error {
	if err := d.renderer.EaseTo(target, duration); err != nil {
		return fmt.Errorf("ease to: %w", err)
	}
	return d.clock.Sleep(ctx, duration)
}

// Snap issues an eased transition without waiting for it to finish.
func (d *CameraDirector) Snap(target domain.CameraState, duration time.Duration) error {
	return d.renderer.EaseTo(target, duration)
}

// SnapFit instantly frames the given bounds in a top-down pose. Used
// when a user interruption means "skip to the result".
func (d *CameraDirector) SnapFit(b domain.Bounds, padding float64) error {
	return d.renderer.FitBounds(b, padding, 0, 0, 0)
}

// Interrupt stops the running sequence at its next stage boundary.
func (d *CameraDirector) Interrupt() {
	d.interrupted.Store(true)
}

// RunSequence executes stages strictly in order. Before each stage it
// verifies gen is still current and no interruption has been raised.
func (d *CameraDirector) RunSequence(ctx context.Context, stages []domain.FlightStage, gen int64) error {
	d.interrupted.Store(false)

	for i, st := range stages {
		if !d.gen.IsCurrent(gen) {
			metrics.StaleChainsAbandoned.Inc()
			return nil
		}
		if d.interrupted.Load() {
			metrics.SequencesInterrupted.Inc()
			d.log.Debug("camera sequence interrupted", "stage", i)
			return nil
		}

		var err error
		switch st.Kind {
		case domain.StageHold:
			err = d.clock.Sleep(ctx, st.Duration)
		case domain.StageFly:
			if err = d.renderer.FlyTo(st.Target, st.Duration); err == nil {
				err = d.clock.Sleep(ctx, st.Duration)
			}
		case domain.StageEase:
			if err = d.renderer.EaseTo(st.Target, st.Duration); err == nil {
				err = d.clock.Sleep(ctx, st.Duration)
			}
		case domain.StageFit:
			if err = d.renderer.FitBounds(st.Bounds, st.Padding, st.Target.Pitch, st.Target.Bearing, st.Duration); err == nil {
				err = d.clock.Sleep(ctx, st.Duration)
			}
		}
		if err != nil {
			return fmt.Errorf("flight stage %d: %w", i, err)
		}
	}
	return nil
}

// SelectionStages builds the cinematic played after a landmark's route
// resolves.
//
// In the tilted mode: approach the landmark along its road arrival
// direction, hold so the destination registers, then ease out to a
// bounding view of building and landmark at reduced pitch with the
// bearing partway unwound. In the top mode the whole sequence collapses
// to a single instant fit of both points.
func SelectionStages(building domain.ClientBuilding, lm domain.Landmark, route *domain.Route, mode domain.ViewMode, tun Tunables) []domain.FlightStage {
	bounds := domain.BoundsOf(building.Location, lm.Location)

	if mode == domain.ViewTop {
		return []domain.FlightStage{{
			Kind:    domain.StageFit,
			Bounds:  bounds,
			Padding: tun.FitPadding,
			Target:  domain.CameraState{Pitch: 0, Bearing: 0},
		}}
	}

	approachBearing, ok := geospatial.ArrivalBearing(route.Geometry)
	if !ok {
		approachBearing = geospatial.Bearing(building.Location, lm.Location)
	}

	// Scale the signed bearing so the reveal unwinds toward north by the
	// shorter way round rather than through a full rotation.
	signedBearing := approachBearing
	if signedBearing > 180 {
		signedBearing -= 360
	}

	return []domain.FlightStage{
		{
			Kind: domain.StageFly,
			Target: domain.CameraState{
				Center:  lm.Location,
				Zoom:    tun.ApproachZoom,
				Pitch:   tun.ApproachPitch,
				Bearing: approachBearing,
			},
			Duration: tun.ApproachDuration,
		},
		{
			Kind:     domain.StageHold,
			Duration: tun.HoldDuration,
		},
		{
			Kind:    domain.StageFit,
			Bounds:  bounds,
			Padding: tun.FitPadding,
			Target: domain.CameraState{
				Pitch:   tun.RevealPitch,
				Bearing: signedBearing * tun.RevealBearingFactor,
			},
			Duration: tun.RevealDuration,
		},
	}
}
