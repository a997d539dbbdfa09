package usecases_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/usecases"
)

func TestCameraDirector_RunSequenceExecutesInOrder(t *testing.T) {
	renderer := &fakeRenderer{}
	gen := &usecases.Generation{}
	d := usecases.NewCameraDirector(renderer, newFakeClock(time.Millisecond), gen, nil)

	g := gen.Next()
	stages := []domain.FlightStage{
		{Kind: domain.StageFly, Target: domain.CameraState{Zoom: 15}, Duration: time.Second},
		{Kind: domain.StageHold, Duration: time.Second},
		{Kind: domain.StageFit, Bounds: domain.BoundsOf(testBuilding.Location, testLandmark.Location), Padding: 80, Duration: time.Second},
	}
	if err := d.RunSequence(context.Background(), stages, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := renderer.opList()
	want := []string{"fly_to", "fit_bounds"}
	if len(got) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestCameraDirector_StaleGenerationAbandonsSequence(t *testing.T) {
	renderer := &fakeRenderer{}
	gen := &usecases.Generation{}
	d := usecases.NewCameraDirector(renderer, newFakeClock(time.Millisecond), gen, nil)

	g := gen.Next()
	gen.Next() // invalidate before it runs

	stages := []domain.FlightStage{
		{Kind: domain.StageFly, Target: domain.CameraState{Zoom: 15}, Duration: time.Second},
	}
	if err := d.RunSequence(context.Background(), stages, g); err != nil {
		t.Fatalf("stale sequence must unwind silently, got %v", err)
	}
	if n := len(renderer.opList()); n != 0 {
		t.Errorf("stale sequence issued %d renderer commands", n)
	}
}

func TestCameraDirector_InterruptStopsAtStageBoundary(t *testing.T) {
	renderer := &fakeRenderer{}
	gen := &usecases.Generation{}
	d := usecases.NewCameraDirector(renderer, newFakeClock(time.Millisecond), gen, nil)

	// Interrupt arrives while the first stage is airborne.
	renderer.flyToFn = func(domain.CameraState, time.Duration) error {
		d.Interrupt()
		return nil
	}

	g := gen.Next()
	stages := []domain.FlightStage{
		{Kind: domain.StageFly, Target: domain.CameraState{Zoom: 15}, Duration: time.Second},
		{Kind: domain.StageHold, Duration: time.Second},
		{Kind: domain.StageFit, Padding: 80, Duration: time.Second},
	}
	if err := d.RunSequence(context.Background(), stages, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := renderer.opList()
	if len(got) != 1 || got[0] != "fly_to" {
		t.Errorf("expected the sequence to stop after the first stage, got %v", got)
	}
}

func TestSelectionStages_TopModeCollapsesToInstantFit(t *testing.T) {
	route := straightRoute(testBuilding.Location, testLandmark.Location)
	stages := usecases.SelectionStages(testBuilding, testLandmark, route, domain.ViewTop, usecases.DefaultTunables())

	if len(stages) != 1 {
		t.Fatalf("top mode must produce exactly one stage, got %d", len(stages))
	}
	st := stages[0]
	if st.Kind != domain.StageFit {
		t.Errorf("expected a fit stage, got kind %d", st.Kind)
	}
	if st.Target.Pitch != 0 || st.Target.Bearing != 0 {
		t.Errorf("top fit must be flat: pitch %.1f bearing %.1f", st.Target.Pitch, st.Target.Bearing)
	}
	if st.Duration != 0 {
		t.Errorf("top fit must be instant, got %v", st.Duration)
	}
}

func TestSelectionStages_TiltedApproachHoldReveal(t *testing.T) {
	tun := usecases.DefaultTunables()
	route := straightRoute(testBuilding.Location, testLandmark.Location)
	stages := usecases.SelectionStages(testBuilding, testLandmark, route, domain.ViewTilted, tun)

	if len(stages) != 3 {
		t.Fatalf("tilted mode must produce 3 stages, got %d", len(stages))
	}
	if stages[0].Kind != domain.StageFly || stages[1].Kind != domain.StageHold || stages[2].Kind != domain.StageFit {
		t.Fatalf("expected fly/hold/fit, got %d/%d/%d", stages[0].Kind, stages[1].Kind, stages[2].Kind)
	}

	fly := stages[0]
	if fly.Target.Center != testLandmark.Location {
		t.Error("approach must center on the landmark")
	}
	if fly.Target.Zoom != tun.ApproachZoom || fly.Target.Pitch != tun.ApproachPitch {
		t.Errorf("approach pose: zoom %.1f pitch %.1f", fly.Target.Zoom, fly.Target.Pitch)
	}

	if stages[1].Duration != tun.HoldDuration {
		t.Errorf("hold duration: expected %v, got %v", tun.HoldDuration, stages[1].Duration)
	}

	reveal := stages[2]
	if reveal.Target.Pitch != tun.RevealPitch {
		t.Errorf("reveal pitch: expected %.1f, got %.1f", tun.RevealPitch, reveal.Target.Pitch)
	}
}

func TestSelectionStages_RevealBearingUnwindsShortWay(t *testing.T) {
	tun := usecases.DefaultTunables()

	// Route arriving from the east: final segment heads due west (270°).
	building := domain.ClientBuilding{Location: domain.Coordinate{Lon: -2.90, Lat: 43.26}}
	lm := domain.Landmark{ID: "west", Location: domain.Coordinate{Lon: -2.95, Lat: 43.26}}
	route := &domain.Route{Geometry: []domain.Coordinate{
		{Lon: -2.90, Lat: 43.26},
		{Lon: -2.94, Lat: 43.26},
		{Lon: -2.95, Lat: 43.26},
	}}

	stages := usecases.SelectionStages(building, lm, route, domain.ViewTilted, tun)

	approach := stages[0].Target.Bearing
	if math.Abs(approach-270) > 0.5 {
		t.Fatalf("expected westbound approach bearing ~270, got %.2f", approach)
	}

	// 270° unwinds as -90°, so the reveal must sit at -90 × factor, not
	// 270 × factor which would swing the long way round.
	reveal := stages[2].Target.Bearing
	want := -90 * tun.RevealBearingFactor
	if math.Abs(reveal-want) > 0.5 {
		t.Errorf("expected reveal bearing %.2f, got %.2f", want, reveal)
	}
}

func TestSelectionStages_FallsBackToStraightLineBearing(t *testing.T) {
	// Degenerate tail: the last two points coincide, so the arrival
	// direction is undefined and the straight building→landmark bearing
	// is used instead.
	building := domain.ClientBuilding{Location: domain.Coordinate{Lon: -2.93, Lat: 43.26}}
	lm := domain.Landmark{ID: "north", Location: domain.Coordinate{Lon: -2.93, Lat: 43.30}}
	route := &domain.Route{Geometry: []domain.Coordinate{
		{Lon: -2.93, Lat: 43.30},
		{Lon: -2.93, Lat: 43.30},
	}}

	stages := usecases.SelectionStages(building, lm, route, domain.ViewTilted, usecases.DefaultTunables())
	if b := stages[0].Target.Bearing; math.Abs(b) > 0.5 {
		t.Errorf("expected due-north fallback bearing ~0, got %.2f", b)
	}
}
