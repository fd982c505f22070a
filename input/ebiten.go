package input

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Key repeat, counted in ticks of the loop.
const (
	repeatDelay    = 15
	repeatInterval = 1
)

var keyMap = []struct {
	ebiten ebiten.Key
	key    Key
	repeat bool
}{
	{ebiten.KeyArrowLeft, KeyLeft, true},
	{ebiten.KeyArrowRight, KeyRight, true},
	{ebiten.KeyArrowUp, KeyUp, true},
	{ebiten.KeyArrowDown, KeyDown, true},
	{ebiten.KeyEscape, KeyEscape, false},
	{ebiten.KeyP, KeyP, false},
	{ebiten.KeyR, KeyR, false},
}

// Poller reads ebiten's input state once per tick and reports it as events.
// It must be called from the game's Update.
type Poller struct {
	lastX    int
	havePos  bool
	wheelAcc float64
	buf      []Event
}

func NewPoller() *Poller {
	return &Poller{}
}

// repeats reports whether a key held for d ticks fires on this tick.
func repeats(d int) bool {
	if d == 1 {
		return true
	}
	return d > repeatDelay && (d-repeatDelay)%repeatInterval == 0
}

// Poll returns the events of the current tick. The slice is reused by the next call.
func (p *Poller) Poll() []Event {
	events := p.buf[:0]
	shift := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyShiftRight)

	for _, m := range keyMap {
		switch {
		case inpututil.IsKeyJustPressed(m.ebiten):
			events = append(events, Event{Kind: KeyPress, Key: m.key, Shift: shift})
		case m.repeat && ebiten.IsKeyPressed(m.ebiten) && repeats(inpututil.KeyPressDuration(m.ebiten)):
			events = append(events, Event{Kind: KeyPress, Key: m.key, Shift: shift})
		}
		if inpututil.IsKeyJustReleased(m.ebiten) {
			events = append(events, Event{Kind: KeyRelease, Key: m.key, Shift: shift})
		}
	}

	// Trackpads report fractions; only whole steps move the index.
	_, dy := ebiten.Wheel()
	p.wheelAcc += dy
	if steps := math.Trunc(p.wheelAcc); steps != 0 {
		p.wheelAcc -= steps
		events = append(events, Event{Kind: Wheel, Steps: int(steps)})
	}

	x, _ := ebiten.CursorPosition()
	if p.havePos && x != p.lastX {
		events = append(events, Event{Kind: Motion, DX: float64(x - p.lastX)})
	}
	p.lastX, p.havePos = x, true

	if ebiten.IsWindowBeingClosed() {
		events = append(events, Event{Kind: Quit})
	}

	p.buf = events
	return events
}
