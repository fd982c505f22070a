// Package slideshow plays a list of still images as a media.Source.
package slideshow

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/texture"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/sync/errgroup"
)

// CacheSize is the number of decoded images kept in memory.
const CacheSize = 8

type item struct {
	path          string
	width, height int
}

// Source cycles through images. Frames are decoded on a worker goroutine and
// cached, so Update never waits for a decode.
type Source struct {
	items   []item
	current int
	dirty   bool // current has not been handed out yet
	waiting bool // a decode of current is in flight

	cache    *lru.Cache // item index -> *media.Frame
	load     func(path string) (*media.Frame, error)
	requests chan int
	results  chan decoded

	startOnce sync.Once
	cancel    context.CancelFunc
	wg        sync.WaitGroup
}

type decoded struct {
	index int
	frame *media.Frame
	err   error
}

// New probes every path and keeps the ones that decode.
func New(ctx context.Context, paths []string) (*Source, error) {
	sizes := make([][2]int, len(paths))
	probeErrs := make([]error, len(paths))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			w, h, err := texture.Probe(path)
			sizes[i] = [2]int{w, h}
			probeErrs[i] = err
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]item, 0, len(paths))
	for i, path := range paths {
		if probeErrs[i] != nil {
			slog.Warn("slideshow: skipping unusable image", "path", path, "error", probeErrs[i])
			continue
		}
		items = append(items, item{path: path, width: sizes[i][0], height: sizes[i][1]})
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("slideshow: %w (%d paths given)", media.ErrNoInput, len(paths))
	}

	cache, err := lru.New(CacheSize)
	if err != nil {
		return nil, err
	}

	slog.Info("slideshow: ready", "images", len(items))
	return &Source{
		items:    items,
		dirty:    true,
		cache:    cache,
		load:     texture.LoadFrame,
		requests: make(chan int, 1),
		results:  make(chan decoded, 1),
	}, nil
}

// Len is the number of usable images.
func (s *Source) Len() int {
	return len(s.items)
}

// Current is the wrapped index of the image on display.
func (s *Source) Current() int {
	return s.current
}

func (s *Source) Resolution() (int, int) {
	it := s.items[s.current]
	return it.width, it.height
}

// SetIndex selects an image; a change makes a later Update return it.
func (s *Source) SetIndex(index int) {
	next := media.Wrap(index, len(s.items))
	if next != s.current {
		s.current = next
		s.dirty = true
	}
}

// Update returns the current image once after each change of selection.
// Until its decode finishes it returns nil; a decode failure is logged and
// the previous image stays on display.
func (s *Source) Update() *media.Frame {
	if s.dirty {
		s.dirty = false
		if v, ok := s.cache.Get(s.current); ok {
			s.waiting = false
			return s.show(s.current, v.(*media.Frame))
		}
		s.request(s.current)
		s.waiting = true
	}
	if !s.waiting {
		return nil
	}

	for {
		select {
		case d := <-s.results:
			if d.index != s.current {
				continue // superseded by a later selection
			}
			s.waiting = false
			if d.err != nil {
				slog.Warn("slideshow: failed to decode image", "path", s.items[d.index].path, "error", d.err)
				return nil
			}
			return s.show(d.index, d.frame)
		default:
			return nil
		}
	}
}

// show hands out a copy so nothing drawn on a frame lands on the cached pixels.
func (s *Source) show(index int, frame *media.Frame) *media.Frame {
	it := &s.items[index]
	if frame.Width != it.width || frame.Height != it.height {
		// Trust the decoded pixels over the probe.
		slog.Debug("slideshow: decoded size differs from probe", "path", it.path,
			"probed", fmt.Sprintf("%dx%d", it.width, it.height),
			"decoded", fmt.Sprintf("%dx%d", frame.Width, frame.Height))
		it.width, it.height = frame.Width, frame.Height
	}
	return frame.Clone()
}

// request asks the worker for index, replacing any request it has not started.
func (s *Source) request(index int) {
	s.startOnce.Do(s.start)
	select {
	case <-s.requests:
	default:
	}
	s.requests <- index
}

func (s *Source) start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.decode(ctx)
}

// decode serves requests, then warms the cache with the neighbours of the
// last one while nothing else is asked for.
func (s *Source) decode(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case index := <-s.requests:
			frame, err := s.frame(index)
			s.deliver(decoded{index: index, frame: frame, err: err})
			s.prefetch(ctx, index)
		}
	}
}

// deliver keeps only the newest result.
func (s *Source) deliver(d decoded) {
	select {
	case <-s.results:
	default:
	}
	s.results <- d
}

func (s *Source) prefetch(ctx context.Context, index int) {
	n := len(s.items)
	for _, next := range []int{media.Wrap(index+1, n), media.Wrap(index-1, n)} {
		if ctx.Err() != nil || len(s.requests) > 0 {
			return
		}
		if next == index || s.cache.Contains(next) {
			continue
		}
		if _, err := s.frame(next); err != nil {
			slog.Debug("slideshow: prefetch failed", "path", s.items[next].path, "error", err)
		}
	}
}

// frame returns the decoded image at index. items paths are never written
// after New, so the worker may read them.
func (s *Source) frame(index int) (*media.Frame, error) {
	if v, ok := s.cache.Get(index); ok {
		return v.(*media.Frame), nil
	}
	frame, err := s.load(s.items[index].path)
	if err != nil {
		return nil, err
	}
	s.cache.Add(index, frame)
	return frame, nil
}

func (s *Source) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	s.cache.Purge()
	return nil
}
