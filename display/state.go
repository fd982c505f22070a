// Package display holds the mutable state of a running globe session.
package display

import (
	"math"

	"github.com/echoflaresat/snowglobe/config"
	"github.com/echoflaresat/snowglobe/media"
)

// InitialRotation faces the center of an equirectangular map towards the viewer.
const InitialRotation = math.Pi

// State is shared by the input controller, the scheduler and the renderer.
// It is only touched from the loop goroutine.
type State struct {
	Width, Height int
	Fullscreen    bool
	Mirror        bool
	Display       int

	Ratio      float64
	Radius     float64
	LensHeight float64
	CenterX    float64
	CenterY    float64

	Rotation float64 // radians
	Velocity float64 // radians per tick
	Index    int     // unbounded; sources wrap it

	Mode                media.Mode
	TexWidth, TexHeight int
}

// New starts a session from cfg, at rest and facing the map center.
func New(cfg config.Config) *State {
	return &State{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Fullscreen: cfg.Fullscreen,
		Mirror:     cfg.Mirror,
		Display:    cfg.Display,
		Ratio:      cfg.Ratio,
		Radius:     cfg.Radius,
		LensHeight: cfg.LensHeight,
		CenterX:    cfg.CenterX,
		CenterY:    cfg.CenterY,
		Rotation:   InitialRotation,
		Mode:       cfg.Mode,
	}
}

// LensOffset is the lens distance below the globe center in globe radii.
func (s *State) LensOffset() float64 {
	return s.LensHeight / s.Radius
}
