package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
)

// RendererBridge drives one browser map client over a WebSocket. It
// translates MapRenderer and AudioPlayer calls into JSON command frames
// and folds the client's event frames back into shadow state (camera
// pose, style readiness, audio acks).
//
// All engine goroutines of a session share one bridge; writes are
// serialized under a mutex. Once the socket fails every command returns
// domain.ErrRendererUnavailable and the engine unwinds on its own.
type RendererBridge struct {
	conn *websocket.Conn
	log  *slog.Logger

	writeMu sync.Mutex

	closed      atomic.Bool
	styleLoaded atomic.Bool

	camMu  sync.Mutex
	camera domain.CameraState

	audioMu   sync.Mutex
	audioURL  string
	audioWait chan bool     // true = playing, false = autoplay blocked
	audioDone chan struct{} // closed on audio_ended
}

// NewRendererBridge wraps an accepted WebSocket connection.
func NewRendererBridge(conn *websocket.Conn, audioURL string, log *slog.Logger) *RendererBridge {
	if log == nil {
		log = slog.Default()
	}
	return &RendererBridge{conn: conn, audioURL: audioURL, log: log}
}

// Close marks the bridge unusable. Pending audio waiters are released.
func (b *RendererBridge) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.audioMu.Lock()
	if b.audioWait != nil {
		close(b.audioWait)
		b.audioWait = nil
	}
	if b.audioDone != nil {
		close(b.audioDone)
		b.audioDone = nil
	}
	b.audioMu.Unlock()
}

func (b *RendererBridge) send(frame map[string]interface{}) error {
	if b.closed.Load() {
		return domain.ErrRendererUnavailable
	}
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	b.writeMu.Lock()
	err = b.conn.WriteMessage(websocket.TextMessage, data)
	b.writeMu.Unlock()
	if err != nil {
		b.Close()
		return domain.ErrRendererUnavailable
	}
	return nil
}

// Send writes an arbitrary frame to the client. Session code uses it
// for frames outside the renderer command set (init, route_failed,
// intro_blocked).
func (b *RendererBridge) Send(frame map[string]interface{}) error {
	return b.send(frame)
}

// Ping writes a WebSocket ping control frame.
func (b *RendererBridge) Ping() error {
	if b.closed.Load() {
		return domain.ErrRendererUnavailable
	}
	b.writeMu.Lock()
	err := b.conn.WriteMessage(websocket.PingMessage, nil)
	b.writeMu.Unlock()
	if err != nil {
		b.Close()
		return domain.ErrRendererUnavailable
	}
	return nil
}

func lineCoords(line domain.LineString) [][2]float64 {
	coords := make([][2]float64, len(line.Coordinates))
	for i, c := range line.Coordinates {
		coords[i] = [2]float64{c.Lon, c.Lat}
	}
	return coords
}

func geojsonLine(line domain.LineString) map[string]interface{} {
	return map[string]interface{}{
		"type": "Feature",
		"geometry": map[string]interface{}{
			"type":        "LineString",
			"coordinates": lineCoords(line),
		},
	}
}

// --- ports.MapRenderer ---

func (b *RendererBridge) AddLineSource(id string, line domain.LineString) error {
	return b.send(map[string]interface{}{
		"op":   "add_source",
		"id":   id,
		"data": geojsonLine(line),
	})
}

func (b *RendererBridge) SetLineData(id string, line domain.LineString) error {
	return b.send(map[string]interface{}{
		"op":   "set_data",
		"id":   id,
		"data": geojsonLine(line),
	})
}

func (b *RendererBridge) AddLineLayer(spec ports.LineLayerSpec) error {
	return b.send(map[string]interface{}{
		"op":    "add_layer",
		"layer": spec,
	})
}

func (b *RendererBridge) RemoveLayer(id string) error {
	return b.send(map[string]interface{}{"op": "remove_layer", "id": id})
}

func (b *RendererBridge) RemoveSource(id string) error {
	return b.send(map[string]interface{}{"op": "remove_source", "id": id})
}

func (b *RendererBridge) EaseTo(target domain.CameraState, duration time.Duration) error {
	err := b.send(map[string]interface{}{
		"op":          "ease_to",
		"center":      target.Center,
		"zoom":        target.Zoom,
		"pitch":       target.Pitch,
		"bearing":     target.Bearing,
		"duration_ms": duration.Milliseconds(),
	})
	if err == nil {
		b.setCamera(target)
	}
	return err
}

func (b *RendererBridge) FlyTo(target domain.CameraState, duration time.Duration) error {
	err := b.send(map[string]interface{}{
		"op":          "fly_to",
		"center":      target.Center,
		"zoom":        target.Zoom,
		"pitch":       target.Pitch,
		"bearing":     target.Bearing,
		"duration_ms": duration.Milliseconds(),
	})
	if err == nil {
		b.setCamera(target)
	}
	return err
}

func (b *RendererBridge) FitBounds(bounds domain.Bounds, padding float64, pitch, bearing float64, duration time.Duration) error {
	err := b.send(map[string]interface{}{
		"op":          "fit_bounds",
		"bounds":      [2][2]float64{{bounds.MinLon, bounds.MinLat}, {bounds.MaxLon, bounds.MaxLat}},
		"padding":     padding,
		"pitch":       pitch,
		"bearing":     bearing,
		"duration_ms": duration.Milliseconds(),
	})
	if err == nil {
		// Zoom is chosen client-side; carry the last known value.
		b.camMu.Lock()
		b.camera.Center = bounds.Center()
		b.camera.Pitch = pitch
		b.camera.Bearing = bearing
		b.camMu.Unlock()
	}
	return err
}

// Camera returns the shadow camera pose: the last pose commanded by the
// engine or reported by the client, whichever came later.
func (b *RendererBridge) Camera() (domain.CameraState, error) {
	if b.closed.Load() {
		return domain.CameraState{}, domain.ErrRendererUnavailable
	}
	b.camMu.Lock()
	defer b.camMu.Unlock()
	return b.camera, nil
}

func (b *RendererBridge) StyleLoaded() bool {
	return b.styleLoaded.Load()
}

func (b *RendererBridge) setCamera(s domain.CameraState) {
	b.camMu.Lock()
	b.camera = s
	b.camMu.Unlock()
}

// --- ports.AudioPlayer ---

// Play asks the client to start the intro narration. It blocks until
// the client acks with audio_playing or audio_blocked, then returns a
// channel closed when the asset ends.
func (b *RendererBridge) Play(ctx context.Context) (<-chan struct{}, error) {
	b.audioMu.Lock()
	if b.audioWait != nil {
		// A Play is already in flight; only one narration exists.
		b.audioMu.Unlock()
		return nil, domain.ErrRendererUnavailable
	}
	wait := make(chan bool, 1)
	done := make(chan struct{})
	b.audioWait = wait
	b.audioDone = done
	b.audioMu.Unlock()

	if err := b.send(map[string]interface{}{"op": "play_audio", "url": b.audioURL}); err != nil {
		b.clearAudio()
		return nil, err
	}

	select {
	case <-ctx.Done():
		b.clearAudio()
		return nil, ctx.Err()
	case playing, ok := <-wait:
		if !ok {
			return nil, domain.ErrRendererUnavailable
		}
		if !playing {
			b.clearAudio()
			return nil, domain.ErrAutoplayBlocked
		}
		return done, nil
	}
}

func (b *RendererBridge) Stop() {
	_ = b.send(map[string]interface{}{"op": "stop_audio"})
	b.clearAudio()
}

func (b *RendererBridge) clearAudio() {
	b.audioMu.Lock()
	b.audioWait = nil
	b.audioDone = nil
	b.audioMu.Unlock()
}

// --- inbound events ---

// clientEvent is one frame sent by the map client.
type clientEvent struct {
	Event      string              `json:"event"`
	LandmarkID string              `json:"landmark_id,omitempty"`
	Mode       string              `json:"mode,omitempty"`
	Camera     *domain.CameraState `json:"camera,omitempty"`
}

// HandleEvent folds renderer-level events into bridge state. It returns
// true when the event was consumed here; session-level events
// (select_landmark, background_click, ...) return false and are handled
// by the session loop.
func (b *RendererBridge) HandleEvent(ev clientEvent) bool {
	switch ev.Event {
	case "camera":
		if ev.Camera != nil {
			b.setCamera(*ev.Camera)
		}
		return true

	case "style_loaded":
		b.styleLoaded.Store(true)
		// The session loop also reacts to this one (intro autostart).
		return false

	case "audio_playing", "audio_blocked":
		b.audioMu.Lock()
		wait := b.audioWait
		b.audioMu.Unlock()
		if wait != nil {
			select {
			case wait <- ev.Event == "audio_playing":
			default:
			}
		}
		return true

	case "audio_ended":
		b.audioMu.Lock()
		done := b.audioDone
		b.audioDone = nil
		b.audioWait = nil
		b.audioMu.Unlock()
		if done != nil {
			close(done)
		}
		return true
	}
	return false
}

var (
	_ ports.MapRenderer = (*RendererBridge)(nil)
	_ ports.AudioPlayer = (*RendererBridge)(nil)
)
