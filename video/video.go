// Package video plays a playlist of movie files through GStreamer.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/echoflaresat/snowglobe/media"
	"github.com/tinyzimmer/go-gst/gst"
)

// retryDelay is the pause before a failed item is tried again.
const retryDelay = time.Second

// Source decodes one playlist entry at a time and loops it at end of stream.
// Frames arrive on a GStreamer thread and are handed over through a mailbox.
type Source struct {
	paths         []string
	width, height int
	current       int

	mailbox  media.Mailbox
	switches chan int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New starts playing the first existing path, scaled to width x height.
func New(paths []string, width, height int) (*Source, error) {
	var playable []string
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			slog.Warn("video: skipping unusable file", "path", path, "error", err)
			continue
		}
		playable = append(playable, path)
	}
	if len(playable) == 0 {
		return nil, fmt.Errorf("video: %w (%d paths given)", media.ErrNoInput, len(paths))
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("video: invalid output size %dx%d", width, height)
	}

	gst.Init(nil)

	s := &Source{
		paths:    playable,
		width:    width,
		height:   height,
		switches: make(chan int, 1),
	}

	// Build the first pipeline here so a missing plugin fails setup.
	first, err := newPlayer(playable[0], width, height, s.mailbox.Put)
	if err != nil {
		return nil, fmt.Errorf("video: %w", err)
	}
	if err := first.play(); err != nil {
		first.stop()
		return nil, fmt.Errorf("video: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx, first, 0)

	slog.Info("video: playing", "path", playable[0], "items", len(playable), "width", width, "height", height)
	return s, nil
}

func (s *Source) Resolution() (int, int) {
	return s.width, s.height
}

// Update returns the newest decoded frame, or nil if none arrived since the last call.
func (s *Source) Update() *media.Frame {
	return s.mailbox.Take()
}

// SetIndex switches the playlist to the wrapped index.
func (s *Source) SetIndex(index int) {
	next := media.Wrap(index, len(s.paths))
	if next == s.current {
		return
	}
	s.current = next

	// Only the newest request matters.
	select {
	case <-s.switches:
	default:
	}
	s.switches <- next
}

func (s *Source) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if n := s.mailbox.Dropped(); n > 0 {
		slog.Debug("video: frames dropped", "count", n)
	}
	return nil
}

// run owns the active pipeline and restarts it on end of stream, error or switch.
func (s *Source) run(ctx context.Context, p *player, index int) {
	defer s.wg.Done()

	for {
		if p == nil {
			var err error
			p, err = newPlayer(s.paths[index], s.width, s.height, s.mailbox.Put)
			if err == nil {
				err = p.play()
			}
			if err != nil {
				slog.Error("video: failed to start item", "path", s.paths[index], "error", err)
				if p != nil {
					p.stop()
					p = nil
				}
				select {
				case <-ctx.Done():
					return
				case index = <-s.switches:
				case <-time.After(retryDelay):
				}
				continue
			}
		}

		reason, next := p.watch(ctx, s.switches)
		p.stop()
		p = nil

		switch reason {
		case stopShutdown:
			return
		case stopSwitch:
			index = next
			slog.Info("video: switching item", "index", index, "path", s.paths[index])
		case stopError:
			select {
			case <-ctx.Done():
				return
			case <-time.After(retryDelay):
			}
		}
	}
}
