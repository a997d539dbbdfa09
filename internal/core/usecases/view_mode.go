package usecases

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/aitorfdez/flyover/internal/core/domain"
	"github.com/aitorfdez/flyover/internal/core/ports"
)

// ViewModeController is the small state machine behind the 3D/2D toggle.
// A transition eases only the camera's pitch and bearing to the new
// mode's baseline, keeping center and zoom where the user left them.
// The very first camera placement after load is exempt: it is produced
// by the initial flight sequence, and easing on top of it would animate
// twice.
type ViewModeController struct {
	renderer ports.MapRenderer
	tun      Tunables
	log      *slog.Logger

	mu     sync.Mutex
	mode   domain.ViewMode
	placed bool
}

// NewViewModeController starts in the tilted mode.
func NewViewModeController(renderer ports.MapRenderer, tun Tunables, log *slog.Logger) *ViewModeController {
	if log == nil {
		log = slog.Default()
	}
	return &ViewModeController{renderer: renderer, tun: tun, log: log, mode: domain.ViewTilted}
}

// Mode returns the current view mode.
func (v *ViewModeController) Mode() domain.ViewMode {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.mode
}

// MarkPlaced records that the initial flight has positioned the camera;
// later toggles animate the transition.
func (v *ViewModeController) MarkPlaced() {
	v.mu.Lock()
	v.placed = true
	v.mu.Unlock()
}

// Baseline returns the target pitch and bearing for a mode.
func (v *ViewModeController) Baseline(mode domain.ViewMode) (pitch, bearing float64) {
	if mode == domain.ViewTop {
		return 0, 0
	}
	return v.tun.TiltedPitch, v.tun.TiltedBearing
}

// Toggle switches to the given mode. Toggling to the current mode
// produces no camera motion.
func (v *ViewModeController) Toggle(mode domain.ViewMode) error {
	v.mu.Lock()
	if mode == v.mode {
		v.mu.Unlock()
		return nil
	}
	v.mode = mode
	placed := v.placed
	v.mu.Unlock()

	if !placed {
		return nil
	}

	cam, err := v.renderer.Camera()
	if err != nil {
		return fmt.Errorf("read camera: %w", err)
	}
	cam.Pitch, cam.Bearing = v.Baseline(mode)
	if err := v.renderer.EaseTo(cam, v.tun.ToggleDuration); err != nil {
		return fmt.Errorf("ease to %s baseline: %w", mode, err)
	}
	v.log.Debug("view mode toggled", "mode", mode.String())
	return nil
}
