package usecases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
	"github.com/aitorfdez/flyover/internal/core/usecases"
)

func testRoute(n int) *domain.Route {
	coords := make([]domain.Coordinate, n)
	for i := range coords {
		coords[i] = domain.Coordinate{Lon: -2.935 + float64(i)*0.001, Lat: 43.263 + float64(i)*0.0005}
	}
	return &domain.Route{Geometry: coords, Distance: 1000, Duration: 240}
}

func TestRouteRenderer_ShowRouteRequiresTwoPoints(t *testing.T) {
	rr := usecases.NewRouteRenderer(&fakeRenderer{}, newFakeClock(time.Millisecond), &usecases.Generation{}, nil)

	if err := rr.ShowRoute(testRoute(1), usecases.DefaultRouteStyle()); err == nil {
		t.Error("expected error for single-point geometry")
	}
	if err := rr.ShowRoute(nil, usecases.DefaultRouteStyle()); err == nil {
		t.Error("expected error for nil route")
	}
}

func TestRouteRenderer_ShowRouteAddsSourceAndLayerPair(t *testing.T) {
	renderer := &fakeRenderer{}
	rr := usecases.NewRouteRenderer(renderer, newFakeClock(time.Millisecond), &usecases.Generation{}, nil)

	if err := rr.ShowRoute(testRoute(10), usecases.DefaultRouteStyle()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !rr.Shown() {
		t.Error("route should be marked shown")
	}

	want := []string{
		"add_source:flyover-route",
		"add_layer:flyover-route-glow",
		"add_layer:flyover-route-line",
	}
	got := renderer.opList()
	if len(got) != len(want) {
		t.Fatalf("expected ops %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRouteRenderer_ShowRouteReplacesPrevious(t *testing.T) {
	renderer := &fakeRenderer{}
	rr := usecases.NewRouteRenderer(renderer, newFakeClock(time.Millisecond), &usecases.Generation{}, nil)

	if err := rr.ShowRoute(testRoute(5), usecases.DefaultRouteStyle()); err != nil {
		t.Fatalf("first show: %v", err)
	}
	if err := rr.ShowRoute(testRoute(8), usecases.DefaultRouteStyle()); err != nil {
		t.Fatalf("second show: %v", err)
	}

	// The second show must tear the first down before re-adding.
	got := renderer.opList()
	want := []string{
		"add_source:flyover-route",
		"add_layer:flyover-route-glow",
		"add_layer:flyover-route-line",
		"remove_layer:flyover-route-line",
		"remove_layer:flyover-route-glow",
		"remove_source:flyover-route",
		"add_source:flyover-route",
		"add_layer:flyover-route-glow",
		"add_layer:flyover-route-line",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d ops, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("op %d: expected %s, got %s", i, want[i], got[i])
		}
	}
}

func TestRouteRenderer_ShowRouteRollsBackOnLayerFailure(t *testing.T) {
	boom := errors.New("layer rejected")
	renderer := &fakeRenderer{
		addLayerFn: func(spec ports.LineLayerSpec) error {
			if spec.ID == "flyover-route-line" {
				return boom
			}
			return nil
		},
	}
	rr := usecases.NewRouteRenderer(renderer, newFakeClock(time.Millisecond), &usecases.Generation{}, nil)

	if err := rr.ShowRoute(testRoute(5), usecases.DefaultRouteStyle()); !errors.Is(err, boom) {
		t.Fatalf("expected layer error, got %v", err)
	}
	if rr.Shown() {
		t.Error("failed show must not mark the route shown")
	}

	// Partial state must be rolled back.
	got := renderer.opList()
	last2 := got[len(got)-2:]
	if last2[0] != "remove_layer:flyover-route-glow" || last2[1] != "remove_source:flyover-route" {
		t.Errorf("expected rollback ops at tail, got %v", got)
	}
}

func TestRouteRenderer_AnimateDrawRevealsMonotonically(t *testing.T) {
	renderer := &fakeRenderer{}
	clock := newFakeClock(10 * time.Millisecond)
	gen := &usecases.Generation{}
	rr := usecases.NewRouteRenderer(renderer, clock, gen, nil)

	route := testRoute(50)
	g := gen.Next()
	if err := rr.AnimateDraw(context.Background(), route, 100*time.Millisecond, g); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(renderer.setDataCalls) == 0 {
		t.Fatal("expected at least one set_data call")
	}
	prev := 0
	for i, coords := range renderer.setDataCalls {
		if len(coords) < 2 {
			t.Errorf("frame %d revealed %d points; at least 2 required", i, len(coords))
		}
		if len(coords) < prev {
			t.Errorf("frame %d shrank the reveal: %d after %d", i, len(coords), prev)
		}
		prev = len(coords)
	}
	final := renderer.setDataCalls[len(renderer.setDataCalls)-1]
	if len(final) != len(route.Geometry) {
		t.Errorf("final frame must carry full geometry: %d of %d points", len(final), len(route.Geometry))
	}
}

func TestRouteRenderer_AnimateDrawStopsWhenStale(t *testing.T) {
	renderer := &fakeRenderer{}
	clock := newFakeClock(10 * time.Millisecond)
	gen := &usecases.Generation{}
	rr := usecases.NewRouteRenderer(renderer, clock, gen, nil)

	g := gen.Next()
	clock.onFrame = func(frame int) {
		if frame == 3 {
			gen.Next() // a newer request arrives mid-draw
		}
	}

	if err := rr.AnimateDraw(context.Background(), testRoute(50), time.Second, g); err != nil {
		t.Fatalf("stale draw must unwind silently, got %v", err)
	}

	// The loop checks staleness after frame 3, so at most 2 writes landed.
	if n := len(renderer.setDataCalls); n > 2 {
		t.Errorf("stale loop kept writing: %d set_data calls", n)
	}
}

func TestRouteRenderer_TeardownIsIdempotent(t *testing.T) {
	renderer := &fakeRenderer{}
	rr := usecases.NewRouteRenderer(renderer, newFakeClock(time.Millisecond), &usecases.Generation{}, nil)

	rr.Teardown() // nothing shown yet
	if n := len(renderer.opList()); n != 0 {
		t.Fatalf("teardown before show must be a no-op, got %d ops", n)
	}

	if err := rr.ShowRoute(testRoute(5), usecases.DefaultRouteStyle()); err != nil {
		t.Fatalf("show: %v", err)
	}
	rr.Teardown()
	n := len(renderer.opList())
	rr.Teardown() // second teardown must not touch the renderer again
	if len(renderer.opList()) != n {
		t.Error("repeated teardown re-issued renderer commands")
	}
	if rr.Shown() {
		t.Error("route still marked shown after teardown")
	}
}

func TestRouteRenderer_GoneRendererIsNotAnError(t *testing.T) {
	renderer := &fakeRenderer{
		setDataFn: func(string, domain.LineString) error { return domain.ErrRendererUnavailable },
	}
	rr := usecases.NewRouteRenderer(renderer, newFakeClock(time.Millisecond), &usecases.Generation{}, nil)

	if err := rr.InstantDraw(testRoute(5)); err != nil {
		t.Errorf("unavailable renderer during draw should be silent, got %v", err)
	}
}
