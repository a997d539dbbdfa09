package ports

import (
	"time"

	"github.com/aitorfdez/flyover/internal/core/domain"
)

// LineLayerSpec describes one rendered line pass over a route source.
// A route is drawn as two overlapping passes: a wide low-opacity glow
// beneath a crisp line.
type LineLayerSpec struct {
	ID       string  `json:"id"`
	SourceID string  `json:"source_id"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	Opacity  float64 `json:"opacity"`
	Blur     float64 `json:"blur,omitempty"`
}

// MapRenderer is the engine's command surface onto the map client. The
// engine only issues commands and reads camera state; rendering itself
// (tiles, hit-testing, visual continuity of in-progress motion) belongs
// to the client. Implementations return domain.ErrRendererUnavailable
// when the client cannot accept commands; teardown callers treat that
// as a no-op.
type MapRenderer interface {
	AddLineSource(id string, line domain.LineString) error
	SetLineData(id string, line domain.LineString) error
	AddLineLayer(spec LineLayerSpec) error
	RemoveLayer(id string) error
	RemoveSource(id string) error

	EaseTo(target domain.CameraState, duration time.Duration) error
	FlyTo(target domain.CameraState, duration time.Duration) error
	FitBounds(b domain.Bounds, padding float64, pitch, bearing float64, duration time.Duration) error

	Camera() (domain.CameraState, error)
	StyleLoaded() bool
}
