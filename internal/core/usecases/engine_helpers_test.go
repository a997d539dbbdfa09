package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
)

// --- Fake FrameClock ---

// fakeClock advances virtual time instantly: every Frame adds one step,
// every Sleep adds its full duration. Tests run animation loops to
// completion without waiting.
type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	step    time.Duration
	frames  int
	onFrame func(frame int)
}

func newFakeClock(step time.Duration) *fakeClock {
	return &fakeClock{now: time.Unix(0, 0), step: step}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Frame(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(c.step)
	c.frames++
	frame := c.frames
	hook := c.onFrame
	c.mu.Unlock()
	if hook != nil {
		hook(frame)
	}
	return nil
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
	return nil
}

// --- Fake MapRenderer ---

type fakeRenderer struct {
	mu  sync.Mutex
	ops []string

	setDataCalls [][]domain.Coordinate
	easeTargets  []domain.CameraState
	flyTargets   []domain.CameraState
	fitCalls     []fitCall

	cam    domain.CameraState
	camErr error

	addSourceFn func(id string, line domain.LineString) error
	addLayerFn  func(spec ports.LineLayerSpec) error
	setDataFn   func(id string, line domain.LineString) error
	easeToFn    func(target domain.CameraState, d time.Duration) error
	flyToFn     func(target domain.CameraState, d time.Duration) error
	fitFn       func(b domain.Bounds, padding, pitch, bearing float64, d time.Duration) error
}

type fitCall struct {
	bounds         domain.Bounds
	padding        float64
	pitch, bearing float64
}

func (r *fakeRenderer) record(op string) {
	r.mu.Lock()
	r.ops = append(r.ops, op)
	r.mu.Unlock()
}

func (r *fakeRenderer) opList() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ops...)
}

func (r *fakeRenderer) AddLineSource(id string, line domain.LineString) error {
	r.record("add_source:" + id)
	if r.addSourceFn != nil {
		return r.addSourceFn(id, line)
	}
	return nil
}

func (r *fakeRenderer) SetLineData(id string, line domain.LineString) error {
	r.record("set_data:" + id)
	r.mu.Lock()
	r.setDataCalls = append(r.setDataCalls, append([]domain.Coordinate(nil), line.Coordinates...))
	r.mu.Unlock()
	if r.setDataFn != nil {
		return r.setDataFn(id, line)
	}
	return nil
}

func (r *fakeRenderer) AddLineLayer(spec ports.LineLayerSpec) error {
	r.record("add_layer:" + spec.ID)
	if r.addLayerFn != nil {
		return r.addLayerFn(spec)
	}
	return nil
}

func (r *fakeRenderer) RemoveLayer(id string) error {
	r.record("remove_layer:" + id)
	return nil
}

func (r *fakeRenderer) RemoveSource(id string) error {
	r.record("remove_source:" + id)
	return nil
}

func (r *fakeRenderer) EaseTo(target domain.CameraState, d time.Duration) error {
	r.record("ease_to")
	r.mu.Lock()
	r.easeTargets = append(r.easeTargets, target)
	r.mu.Unlock()
	if r.easeToFn != nil {
		return r.easeToFn(target, d)
	}
	return nil
}

func (r *fakeRenderer) FlyTo(target domain.CameraState, d time.Duration) error {
	r.record("fly_to")
	r.mu.Lock()
	r.flyTargets = append(r.flyTargets, target)
	r.mu.Unlock()
	if r.flyToFn != nil {
		return r.flyToFn(target, d)
	}
	return nil
}

func (r *fakeRenderer) FitBounds(b domain.Bounds, padding float64, pitch, bearing float64, d time.Duration) error {
	r.record("fit_bounds")
	r.mu.Lock()
	r.fitCalls = append(r.fitCalls, fitCall{bounds: b, padding: padding, pitch: pitch, bearing: bearing})
	r.mu.Unlock()
	if r.fitFn != nil {
		return r.fitFn(b, padding, pitch, bearing, d)
	}
	return nil
}

func (r *fakeRenderer) Camera() (domain.CameraState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cam, r.camErr
}

func (r *fakeRenderer) StyleLoaded() bool { return true }

// --- Fake DirectionsProvider ---

type fakeProvider struct {
	mu          sync.Mutex
	calls       int
	lastReq     [2]domain.Coordinate
	lastProfile domain.TravelProfile
	fetchFn     func(ctx context.Context, origin, destination domain.Coordinate, profile domain.TravelProfile) (*domain.Route, error)
}

func (p *fakeProvider) FetchRoute(ctx context.Context, origin, destination domain.Coordinate, profile domain.TravelProfile) (*domain.Route, error) {
	p.mu.Lock()
	p.calls++
	p.lastReq = [2]domain.Coordinate{origin, destination}
	p.lastProfile = profile
	p.mu.Unlock()
	if p.fetchFn != nil {
		return p.fetchFn(ctx, origin, destination, profile)
	}
	return straightRoute(origin, destination), nil
}

func (p *fakeProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// straightRoute builds a simple 4-point route between two coordinates.
func straightRoute(a, b domain.Coordinate) *domain.Route {
	mid1 := domain.Coordinate{Lon: a.Lon + (b.Lon-a.Lon)/3, Lat: a.Lat + (b.Lat-a.Lat)/3}
	mid2 := domain.Coordinate{Lon: a.Lon + 2*(b.Lon-a.Lon)/3, Lat: a.Lat + 2*(b.Lat-a.Lat)/3}
	return &domain.Route{
		Geometry: []domain.Coordinate{a, mid1, mid2, b},
		Distance: 1200,
		Duration: 300,
	}
}

// --- Fake CacheService ---

type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(ctx context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.data[key], nil
}

func (c *fakeCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	c.mu.Lock()
	c.data[key] = value
	c.mu.Unlock()
	return nil
}

func (c *fakeCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	delete(c.data, key)
	c.mu.Unlock()
	return nil
}

// --- Fake EventPublisher ---

type fakeEvents struct {
	mu      sync.Mutex
	shown   int
	cleared int
	failed  int
	intros  int
}

func (e *fakeEvents) PublishRouteShown(ctx context.Context, projectID, landmarkID string, route *domain.Route) error {
	e.mu.Lock()
	e.shown++
	e.mu.Unlock()
	return nil
}

func (e *fakeEvents) PublishRouteCleared(ctx context.Context, projectID, landmarkID string) error {
	e.mu.Lock()
	e.cleared++
	e.mu.Unlock()
	return nil
}

func (e *fakeEvents) PublishRouteFailed(ctx context.Context, projectID, landmarkID string, cause error) error {
	e.mu.Lock()
	e.failed++
	e.mu.Unlock()
	return nil
}

func (e *fakeEvents) PublishIntroStarted(ctx context.Context, projectID string) error {
	e.mu.Lock()
	e.intros++
	e.mu.Unlock()
	return nil
}

func (e *fakeEvents) counts() (shown, cleared, failed, intros int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.shown, e.cleared, e.failed, e.intros
}

// --- Fake AudioPlayer ---

type fakeAudio struct {
	mu     sync.Mutex
	plays  int
	stops  int
	playFn func(ctx context.Context) (<-chan struct{}, error)
}

func (a *fakeAudio) Play(ctx context.Context) (<-chan struct{}, error) {
	a.mu.Lock()
	a.plays++
	a.mu.Unlock()
	if a.playFn != nil {
		return a.playFn(ctx)
	}
	done := make(chan struct{})
	close(done)
	return done, nil
}

func (a *fakeAudio) Stop() {
	a.mu.Lock()
	a.stops++
	a.mu.Unlock()
}

func (a *fakeAudio) playCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.plays
}

// --- Fake TourController ---

type fakeTour struct {
	mu      sync.Mutex
	started int
	notify  chan struct{}
}

func (t *fakeTour) Start(ctx context.Context, landmarks []domain.Landmark) error {
	t.mu.Lock()
	t.started++
	t.mu.Unlock()
	if t.notify != nil {
		t.notify <- struct{}{}
	}
	return nil
}

// --- Shared fixtures ---

var (
	testBuilding = domain.ClientBuilding{
		ID:       "bld-1",
		Name:     "Sales Office",
		Location: domain.Coordinate{Lon: -2.9350, Lat: 43.2630},
	}
	testLandmark = domain.Landmark{
		ID:        "lm-1",
		ProjectID: "prj-1",
		Title:     "Guggenheim",
		Location:  domain.Coordinate{Lon: -2.9340, Lat: 43.2687},
	}
	testProject = domain.Project{
		ID:       "prj-1",
		Slug:     "bilbao-tower",
		Name:     "Bilbao Tower",
		Building: testBuilding,
	}
)
