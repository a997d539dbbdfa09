package usecases

import "time"

// Tunables are the cinematic tuning constants for one engine session.
// The hold duration and reveal bearing factor are deliberate visual
// tuning; they are inputs, not derived values.
type Tunables struct {
	DrawDuration        time.Duration
	ApproachZoom        float64
	ApproachPitch       float64
	ApproachDuration    time.Duration
	HoldDuration        time.Duration
	RevealPitch         float64
	RevealBearingFactor float64
	RevealDuration      time.Duration
	TiltedPitch         float64
	TiltedBearing       float64
	ToggleDuration      time.Duration
	FitPadding          float64
	IntroDuration       time.Duration
	IntroZoom           float64
}

// DefaultTunables returns the stock cinematic parameters.
func DefaultTunables() Tunables {
	return Tunables{
		DrawDuration:        2 * time.Second,
		ApproachZoom:        15.5,
		ApproachPitch:       60,
		ApproachDuration:    3 * time.Second,
		HoldDuration:        1200 * time.Millisecond,
		RevealPitch:         45,
		RevealBearingFactor: 0.3,
		RevealDuration:      2500 * time.Millisecond,
		TiltedPitch:         70,
		TiltedBearing:       -20,
		ToggleDuration:      800 * time.Millisecond,
		FitPadding:          80,
		IntroDuration:       4 * time.Second,
		IntroZoom:           16,
	}
}
