package domain

import "time"

// CameraState is a full camera pose on the map renderer.
type CameraState struct {
	Center  Coordinate `json:"center"`
	Zoom    float64    `json:"zoom"`
	Pitch   float64    `json:"pitch"`
	Bearing float64    `json:"bearing"`
}

// ViewMode is the camera projection mode.
type ViewMode int

const (
	// ViewTilted is the 3D perspective mode.
	ViewTilted ViewMode = iota
	// ViewTop is the straight-down 2D mode.
	ViewTop
)

func (m ViewMode) String() string {
	if m == ViewTop {
		return "top"
	}
	return "tilted"
}

// ParseViewMode maps a wire string to a ViewMode. Unknown values
// default to tilted.
func ParseViewMode(s string) ViewMode {
	if s == "top" {
		return ViewTop
	}
	return ViewTilted
}

// StageKind selects how a flight stage moves the camera.
type StageKind int

const (
	// StageFly is a flown (arcing) transition to the target.
	StageFly StageKind = iota
	// StageEase is a direct eased transition to the target.
	StageEase
	// StageHold keeps the camera still for the stage duration.
	StageHold
	// StageFit frames the stage bounds instead of a single target.
	StageFit
)

// FlightStage is one step of a multi-stage cinematic sequence. Stages
// execute strictly in order; each is checked against the generation
// token before it runs.
type FlightStage struct {
	Kind     StageKind
	Target   CameraState
	Bounds   Bounds
	Padding  float64
	Duration time.Duration
}
