package loop

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/echoflaresat/snowglobe/config"
	"github.com/echoflaresat/snowglobe/display"
	"github.com/echoflaresat/snowglobe/input"
	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/tracker"
	"github.com/hajimehoshi/ebiten/v2"
)

type fakeSource struct {
	log     *[]string
	n       int
	current int
	sizes   [][2]int
	frames  []*media.Frame
	closed  int
}

func (s *fakeSource) Resolution() (int, int) {
	sz := s.sizes[s.current%len(s.sizes)]
	return sz[0], sz[1]
}

func (s *fakeSource) Update() *media.Frame {
	*s.log = append(*s.log, "media")
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f
}

func (s *fakeSource) SetIndex(i int) {
	s.current = media.Wrap(i, s.n)
}

func (s *fakeSource) Close() error {
	*s.log = append(*s.log, "close source")
	s.closed++
	return nil
}

type fakeRenderer struct {
	log         *[]string
	uploads     []*media.Frame
	resolutions [][2]int
	rotation    float64
	draws       int
}

func (r *fakeRenderer) Upload(f *media.Frame) { r.uploads = append(r.uploads, f) }
func (r *fakeRenderer) SetResolution(w, h int) {
	r.resolutions = append(r.resolutions, [2]int{w, h})
}
func (r *fakeRenderer) SetRotation(a float64) { r.rotation = a }
func (r *fakeRenderer) Draw(*ebiten.Image) {
	*r.log = append(*r.log, "render")
	r.draws++
}
func (r *fakeRenderer) Dispose() { *r.log = append(*r.log, "dispose renderer") }

type fakeTracker struct {
	log     *[]string
	reading tracker.Reading
}

func (t *fakeTracker) Poll() tracker.Reading {
	*t.log = append(*t.log, "integrate")
	return t.reading
}

func (t *fakeTracker) Close() error {
	*t.log = append(*t.log, "close tracker")
	return nil
}

type fakeEvents struct {
	log     *[]string
	pending [][]input.Event
}

func (e *fakeEvents) Poll() []input.Event {
	*e.log = append(*e.log, "input")
	if len(e.pending) == 0 {
		return nil
	}
	evs := e.pending[0]
	e.pending = e.pending[1:]
	return evs
}

type harness struct {
	log      []string
	state    *display.State
	clock    *fakeClock
	source   *fakeSource
	renderer *fakeRenderer
	tracker  *fakeTracker
	events   *fakeEvents
	sched    *Scheduler
}

func newHarness(withTracker bool) *harness {
	h := &harness{state: display.New(config.Default()), clock: newFakeClock()}
	h.clock.log = &h.log
	h.source = &fakeSource{log: &h.log, n: 4, sizes: [][2]int{{16, 8}, {32, 16}, {64, 32}, {128, 64}}}
	h.renderer = &fakeRenderer{log: &h.log}
	h.events = &fakeEvents{log: &h.log}
	opts := Options{
		State:    h.state,
		Source:   h.source,
		Renderer: h.renderer,
		Events:   h.events,
		Clock:    h.clock,
	}
	if withTracker {
		h.tracker = &fakeTracker{log: &h.log}
		opts.Tracker = h.tracker
	}
	h.sched = NewScheduler(opts)
	return h
}

func TestTickOrder(t *testing.T) {
	h := newHarness(true)
	h.sched.Tick(nil) // first tick is due immediately
	h.log = nil
	h.sched.Tick(nil)

	want := []string{"pace", "integrate", "input", "media", "render"}
	if !reflect.DeepEqual(h.log, want) {
		t.Fatalf("tick order = %v, want %v", h.log, want)
	}
}

func TestVelocityIntegration(t *testing.T) {
	h := newHarness(false)
	h.state.Velocity = 0.1
	for i := 0; i < 3; i++ {
		h.sched.Tick(nil)
	}
	want := math.Pi + 0.3
	if math.Abs(h.state.Rotation-want) > 1e-12 {
		t.Fatalf("rotation = %v, want %v", h.state.Rotation, want)
	}
	if math.Abs(h.renderer.rotation-want) > 1e-12 {
		t.Fatalf("renderer rotation = %v, want %v", h.renderer.rotation, want)
	}
}

func TestTrackerRotateOverridesVelocity(t *testing.T) {
	h := newHarness(true)
	h.state.Velocity = 0.5
	h.tracker.reading = tracker.Reading{Mode: tracker.Rotate, Angle: 1.25}
	h.sched.Tick(nil)
	h.sched.Tick(nil)
	if h.state.Rotation != -1.25 {
		t.Fatalf("rotation = %v, want -1.25", h.state.Rotation)
	}
}

func TestTrackerIdleHoldsState(t *testing.T) {
	h := newHarness(true)
	h.state.Velocity = 0.5
	h.sched.Tick(nil)
	if h.state.Rotation != math.Pi || h.state.Index != 0 {
		t.Fatalf("idle tracker changed state: rotation %v index %d", h.state.Rotation, h.state.Index)
	}
}

func TestTrackerScroll(t *testing.T) {
	h := newHarness(true)
	h.tracker.reading = tracker.Reading{Mode: tracker.Scroll, Angle: math.Pi + 0.01}
	h.sched.Tick(nil)
	if h.state.Index != 3 || h.source.current != 3 {
		t.Fatalf("index = %d, source = %d, want 3", h.state.Index, h.source.current)
	}
	if got := h.renderer.resolutions[len(h.renderer.resolutions)-1]; got != [2]int{128, 64} {
		t.Fatalf("resolution = %v, want [128 64]", got)
	}
}

func TestDownFiveTimesWraps(t *testing.T) {
	h := newHarness(false)
	down := input.Event{Kind: input.KeyPress, Key: input.KeyDown}
	for i := 0; i < 5; i++ {
		h.events.pending = append(h.events.pending, []input.Event{down})
	}
	for i := 0; i < 5; i++ {
		h.sched.Tick(nil)
	}
	if h.state.Index != -5 {
		t.Fatalf("state index = %d, want -5", h.state.Index)
	}
	if h.source.current != 3 {
		t.Fatalf("source index = %d, want 3", h.source.current)
	}
	if w, hh := h.state.TexWidth, h.state.TexHeight; w != 128 || hh != 64 {
		t.Fatalf("texture size = %dx%d, want 128x64", w, hh)
	}
}

func TestResolutionOnlyRebindsForImages(t *testing.T) {
	h := newHarness(false)
	h.state.Mode = media.Video
	bound := len(h.renderer.resolutions)

	h.events.pending = [][]input.Event{{{Kind: input.KeyPress, Key: input.KeyUp}}}
	h.sched.Tick(nil)
	if h.source.current != 1 {
		t.Fatalf("source index = %d, want 1", h.source.current)
	}
	if len(h.renderer.resolutions) != bound {
		t.Fatal("video source resolution was re-bound on index change")
	}
}

func TestNonPowerOfTwoFrameStillDraws(t *testing.T) {
	h := newHarness(false)
	frame := media.NewFrame(100, 100)
	h.source.frames = []*media.Frame{frame}
	h.sched.Tick(nil)
	if len(h.renderer.uploads) != 1 || h.renderer.uploads[0] != frame {
		t.Fatalf("uploads = %v", h.renderer.uploads)
	}
	if h.renderer.draws != 1 {
		t.Fatalf("draws = %d, want 1", h.renderer.draws)
	}
}

func TestFrameSizeChangeRebindsResolution(t *testing.T) {
	h := newHarness(false)
	h.source.frames = []*media.Frame{media.NewFrame(16, 8), media.NewFrame(100, 50)}

	h.sched.Tick(nil)
	if len(h.renderer.resolutions) != 1 {
		t.Fatalf("same-size frame re-bound: %v", h.renderer.resolutions)
	}

	h.sched.Tick(nil)
	if got := h.renderer.resolutions[len(h.renderer.resolutions)-1]; got != [2]int{100, 50} {
		t.Fatalf("resolution = %v, want [100 50]", got)
	}
	if h.state.TexWidth != 100 || h.state.TexHeight != 50 {
		t.Fatalf("state texture size = %dx%d", h.state.TexWidth, h.state.TexHeight)
	}
}

func TestQuitShutsDownOnce(t *testing.T) {
	h := newHarness(true)
	h.sched.Tick(nil)
	h.log = nil
	h.events.pending = [][]input.Event{{{Kind: input.KeyPress, Key: input.KeyEscape}}}

	if err := h.sched.Update(); !errors.Is(err, ebiten.Termination) {
		t.Fatalf("Update = %v, want ebiten.Termination", err)
	}
	if err := h.sched.Shutdown(); err != nil {
		t.Fatal(err)
	}

	want := []string{"pace", "integrate", "input", "dispose renderer", "close source", "close tracker"}
	if !reflect.DeepEqual(h.log, want) {
		t.Fatalf("log = %v, want %v", h.log, want)
	}
	if h.source.closed != 1 {
		t.Fatalf("source closed %d times", h.source.closed)
	}
}

func TestLayout(t *testing.T) {
	h := newHarness(false)
	if w, hh := h.sched.Layout(1920, 1080); w != config.DefaultWidth || hh != config.DefaultHeight {
		t.Fatalf("Layout = %dx%d", w, hh)
	}
}

func TestInitialResolution(t *testing.T) {
	h := newHarness(false)
	if len(h.renderer.resolutions) != 1 || h.renderer.resolutions[0] != [2]int{16, 8} {
		t.Fatalf("resolutions = %v", h.renderer.resolutions)
	}
}
