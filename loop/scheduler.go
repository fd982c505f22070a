// Package loop drives the per-tick sequence of the globe.
package loop

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/echoflaresat/snowglobe/display"
	"github.com/echoflaresat/snowglobe/input"
	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/tracker"
	"github.com/hajimehoshi/ebiten/v2"
)

// Renderer is the drawing side of the loop.
type Renderer interface {
	Upload(f *media.Frame)
	SetResolution(width, height int)
	SetRotation(angle float64)
	Draw(screen *ebiten.Image)
	Dispose()
}

// Tracker supplies orientation readings without blocking.
type Tracker interface {
	Poll() tracker.Reading
	Close() error
}

// EventSource yields the input events of the current tick.
type EventSource interface {
	Poll() []input.Event
}

// Scheduler runs one tick as: pace, integrate, handle input, update media, render.
// It implements ebiten.Game: Update covers the first four steps and Draw renders.
type Scheduler struct {
	state    *display.State
	source   media.Source
	renderer Renderer
	tracker  Tracker
	events   EventSource
	control  *input.Controller
	timer    *Timer

	closeOnce sync.Once
	closeErr  error
}

// Options carries the collaborators of a Scheduler. Tracker may be nil.
type Options struct {
	State    *display.State
	Source   media.Source
	Renderer Renderer
	Tracker  Tracker
	Events   EventSource
	Clock    Clock
}

func NewScheduler(opts Options) *Scheduler {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	s := &Scheduler{
		state:    opts.State,
		source:   opts.Source,
		renderer: opts.Renderer,
		tracker:  opts.Tracker,
		events:   opts.Events,
		control:  input.NewController(opts.State),
		timer:    NewTimer(clock, input.TickInterval),
	}
	s.bindResolution()
	return s
}

func (s *Scheduler) bindResolution() {
	w, h := s.source.Resolution()
	s.state.TexWidth, s.state.TexHeight = w, h
	s.renderer.SetResolution(w, h)
}

// pace sleeps until the tick is due.
func (s *Scheduler) pace() {
	s.timer.Wait()
}

// integrate advances rotation, or follows the tracker when one is attached.
func (s *Scheduler) integrate() {
	if s.tracker == nil {
		s.state.Rotation += s.state.Velocity
		return
	}

	r := s.tracker.Poll()
	switch r.Mode {
	case tracker.Rotate:
		s.state.Rotation = -r.Angle
	case tracker.Scroll:
		if idx := tracker.ScrollIndex(r.Angle); idx != s.state.Index {
			s.state.Index = idx
			s.updateIndex()
		}
	}
}

// handleInput applies this tick's events and reports whether to quit.
func (s *Scheduler) handleInput() bool {
	res := s.control.HandleAll(s.events.Poll())
	if res.IndexChanged {
		s.updateIndex()
	}
	return res.Quit
}

// updateIndex forwards the index to the source. Slideshow items differ in
// size, so the shader's resolution is re-bound for them.
func (s *Scheduler) updateIndex() {
	s.source.SetIndex(s.state.Index)
	if s.state.Mode == media.Images {
		s.bindResolution()
	}
}

// updateMedia uploads a new frame and re-binds the resolution when its size
// differs from the bound one.
func (s *Scheduler) updateMedia() {
	f := s.source.Update()
	if f == nil {
		return
	}
	s.renderer.Upload(f)
	if f.Width != s.state.TexWidth || f.Height != s.state.TexHeight {
		s.state.TexWidth, s.state.TexHeight = f.Width, f.Height
		s.renderer.SetResolution(f.Width, f.Height)
	}
}

func (s *Scheduler) render(screen *ebiten.Image) {
	s.renderer.SetRotation(s.state.Rotation)
	s.renderer.Draw(screen)
}

// Tick runs one full iteration and reports whether the loop should stop.
func (s *Scheduler) Tick(screen *ebiten.Image) (quit bool) {
	if s.step() {
		return true
	}
	s.render(screen)
	return false
}

func (s *Scheduler) step() (quit bool) {
	s.pace()
	s.integrate()
	if s.handleInput() {
		return true
	}
	s.updateMedia()
	return false
}

func (s *Scheduler) Update() error {
	if s.step() {
		slog.Info("loop: quit requested")
		if err := s.Shutdown(); err != nil {
			slog.Warn("loop: shutdown", "error", err)
		}
		return ebiten.Termination
	}
	return nil
}

func (s *Scheduler) Draw(screen *ebiten.Image) {
	s.render(screen)
}

func (s *Scheduler) Layout(outsideWidth, outsideHeight int) (int, int) {
	return s.state.Width, s.state.Height
}

// Shutdown releases the renderer, then the source, then the tracker. Later calls do nothing.
func (s *Scheduler) Shutdown() error {
	s.closeOnce.Do(func() {
		s.renderer.Dispose()
		var errs []error
		if err := s.source.Close(); err != nil {
			errs = append(errs, err)
		}
		if s.tracker != nil {
			if err := s.tracker.Close(); err != nil {
				errs = append(errs, err)
			}
		}
		s.closeErr = errors.Join(errs...)
	})
	return s.closeErr
}
