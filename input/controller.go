// Package input turns keyboard, wheel and mouse events into changes of the display state.
package input

import (
	"math"
	"time"

	"github.com/echoflaresat/snowglobe/display"
)

// TickInterval is the period of the render loop.
const TickInterval = 33 * time.Millisecond

var (
	// RotationStep is one fine velocity increment (radians per tick):
	// a full turn every 240 seconds.
	RotationStep = math.Pi / (120 * (1000 / float64(TickInterval.Milliseconds())))

	// RotationSpeed is the velocity set by a plain arrow key.
	RotationSpeed = 30.5 * RotationStep
)

// mouseScale converts horizontal mouse motion into radians.
const mouseScale = math.Pi * 50

type Key int

const (
	KeyLeft Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeyEscape
	KeyP
	KeyR
)

type Kind int

const (
	KeyPress Kind = iota
	KeyRelease
	Wheel
	Motion
	Quit
)

// Event is one user action, independent of the windowing library.
type Event struct {
	Kind  Kind
	Key   Key
	Shift bool
	Steps int     // Wheel: positive scrolls forward
	DX    float64 // Motion: horizontal pixels
}

// Result summarizes what handling a batch of events changed.
type Result struct {
	Quit         bool
	IndexChanged bool
}

// Controller applies events to a display.State.
type Controller struct {
	state *display.State
}

func NewController(state *display.State) *Controller {
	return &Controller{state: state}
}

// closeEnough reports whether a and b differ by less than half a rotation step.
func closeEnough(a, b float64) bool {
	return math.Abs(a-b) < RotationStep/2
}

// Handle applies one event.
func (c *Controller) Handle(ev Event) Result {
	s := c.state
	switch ev.Kind {
	case KeyPress:
		switch ev.Key {
		case KeyEscape:
			return Result{Quit: true}
		case KeyLeft:
			if ev.Shift {
				s.Velocity += RotationStep
			} else {
				s.Velocity = RotationSpeed
			}
		case KeyRight:
			if ev.Shift {
				s.Velocity -= RotationStep
			} else {
				s.Velocity = -RotationSpeed
			}
		case KeyUp:
			s.Index++
			return Result{IndexChanged: true}
		case KeyDown:
			s.Index--
			return Result{IndexChanged: true}
		case KeyP:
			s.Velocity = 0
		case KeyR:
			s.Rotation = display.InitialRotation
		}
	case KeyRelease:
		// Releasing an arrow only stops a plain-arrow spin, not a fine-tuned one.
		switch ev.Key {
		case KeyLeft:
			if closeEnough(s.Velocity, RotationSpeed) {
				s.Velocity = 0
			}
		case KeyRight:
			if closeEnough(s.Velocity, -RotationSpeed) {
				s.Velocity = 0
			}
		}
	case Wheel:
		if ev.Steps != 0 {
			s.Index += ev.Steps
			return Result{IndexChanged: true}
		}
	case Motion:
		s.Rotation -= ev.DX / mouseScale
	case Quit:
		return Result{Quit: true}
	}
	return Result{}
}

// HandleAll applies events in order and stops at the first quit.
func (c *Controller) HandleAll(events []Event) Result {
	var res Result
	for _, ev := range events {
		r := c.Handle(ev)
		res.IndexChanged = res.IndexChanged || r.IndexChanged
		if r.Quit {
			res.Quit = true
			break
		}
	}
	return res
}
