package loop

import (
	"errors"
	"fmt"

	"github.com/echoflaresat/snowglobe/display"
	"github.com/hajimehoshi/ebiten/v2"
)

// ErrDisplayIndex is returned when the requested monitor does not exist.
var ErrDisplayIndex = errors.New("display index out of range")

// WindowTitle is shown when running windowed.
const WindowTitle = "Snowglobe"

// SelectMonitor places the window on monitor index.
func SelectMonitor(index int) error {
	monitors := ebiten.AppendMonitors(nil)
	if index < 0 || index >= len(monitors) {
		return fmt.Errorf("%w: %d (found %d)", ErrDisplayIndex, index, len(monitors))
	}
	ebiten.SetMonitor(monitors[index])
	return nil
}

// Run opens the window described by state and blocks until the loop ends.
// Resources are released on every exit path.
func Run(state *display.State, s *Scheduler) error {
	if err := SelectMonitor(state.Display); err != nil {
		s.Shutdown()
		return err
	}

	ebiten.SetWindowTitle(WindowTitle)
	ebiten.SetWindowSize(state.Width, state.Height)
	ebiten.SetFullscreen(state.Fullscreen)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetCursorMode(ebiten.CursorModeCaptured)

	// The scheduler paces itself; let ebiten call Update once per frame.
	ebiten.SetVsyncEnabled(false)
	ebiten.SetTPS(ebiten.SyncWithFPS)

	defer s.Shutdown()
	if err := ebiten.RunGame(s); err != nil {
		return fmt.Errorf("loop: %w", err)
	}
	return nil
}
