// Package predict draws live satellite positions from a PREDICT server onto a world map.
package predict

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/echoflaresat/snowglobe/earth"
	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/texture"
)

// PollInterval is how often satellite positions are refreshed.
const PollInterval = time.Second

// Source renders prediction frames in the background and hands them to the loop.
type Source struct {
	background *media.Frame
	client     *Client
	now        func() time.Time

	mailbox  media.Mailbox
	selected atomic.Int64
	kick     chan struct{}

	sats   []Satellite // owned by the worker
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New loads the background map and starts polling addr.
// The server being down is not an error; positions appear once it answers.
func New(background, addr string) (*Source, error) {
	bg, err := texture.LoadFrame(background)
	if err != nil {
		return nil, fmt.Errorf("predict: load background: %w", err)
	}
	client, err := Dial(addr, DefaultTimeout)
	if err != nil {
		return nil, err
	}

	s := &Source{
		background: bg,
		client:     client,
		now:        time.Now,
		kick:       make(chan struct{}, 1),
	}

	// The first frame is ready before the loop starts.
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.refresh(ctx)

	s.wg.Add(1)
	go s.run(ctx)

	slog.Info("predict: polling", "addr", addr, "width", bg.Width, "height", bg.Height)
	return s, nil
}

func (s *Source) Resolution() (int, int) {
	return s.background.Width, s.background.Height
}

// Update returns the newest rendered frame, or nil.
func (s *Source) Update() *media.Frame {
	return s.mailbox.Take()
}

// SetIndex highlights a satellite; the index wraps over the current list.
func (s *Source) SetIndex(index int) {
	s.selected.Store(int64(index))
	select {
	case s.kick <- struct{}{}:
	default:
	}
}

func (s *Source) Close() error {
	s.cancel()
	s.wg.Wait()
	return s.client.Close()
}

func (s *Source) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.fetch()
		case <-s.kick:
		}
		s.render(ctx)
	}
}

func (s *Source) refresh(ctx context.Context) {
	s.fetch()
	s.render(ctx)
}

// fetch replaces the satellite list; on failure the previous positions are kept.
func (s *Source) fetch() {
	names, err := s.client.List()
	if err != nil {
		slog.Warn("predict: server not answering", "error", err)
		return
	}

	sats := make([]Satellite, 0, len(names))
	for _, name := range names {
		sat, err := s.client.Satellite(name)
		if err != nil {
			slog.Warn("predict: satellite query failed", "name", name, "error", err)
			continue
		}
		sats = append(sats, sat)
	}
	s.sats = sats
}

func (s *Source) render(ctx context.Context) {
	selected := -1
	if len(s.sats) > 0 {
		selected = media.Wrap(int(s.selected.Load()), len(s.sats))
	}

	frame, err := Render(ctx, Scene{
		Background: s.background,
		Sun:        earth.SunDirectionECEF(s.now()),
		Satellites: s.sats,
		Selected:   selected,
	})
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("predict: render failed", "error", err)
		}
		return
	}
	s.mailbox.Put(frame)
}
