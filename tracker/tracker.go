// Package tracker reads an orientation tracker that spins or scrolls the globe.
//
// The device emits one reading per line: a mode letter, R to rotate or S to
// scroll, followed by an angle in radians, e.g. "R 1.5708".
package tracker

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"
)

// ErrOpen is returned when the tracker device cannot be opened.
var ErrOpen = errors.New("cannot open tracker")

// ScrollStep is the tracker angle that advances the slideshow by one item.
const ScrollStep = math.Pi / 3

type Mode int

const (
	// Idle means no reading has arrived yet.
	Idle Mode = iota
	Rotate
	Scroll
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "idle"
	case Rotate:
		return "rotate"
	case Scroll:
		return "scroll"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

type Reading struct {
	Mode  Mode
	Angle float64
}

// ScrollIndex quantizes a scroll angle into an item index, truncating toward zero.
func ScrollIndex(angle float64) int {
	return int(angle / ScrollStep)
}

// Bridge keeps the latest reading from a device stream.
type Bridge struct {
	mu     sync.Mutex
	latest Reading

	rc   io.ReadCloser
	done chan struct{}
}

// Open starts reading the device at path.
func Open(path string) (*Bridge, error) {
	f, err := os.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %v", ErrOpen, path, err)
	}
	slog.Info("tracker: opened", "path", path)
	return NewBridge(f), nil
}

// NewBridge reads readings from rc until it is closed or hits EOF.
func NewBridge(rc io.ReadCloser) *Bridge {
	b := &Bridge{rc: rc, done: make(chan struct{})}
	go b.read()
	return b
}

func (b *Bridge) read() {
	defer close(b.done)

	sc := bufio.NewScanner(b.rc)
	for sc.Scan() {
		r, err := ParseReading(sc.Text())
		if err != nil {
			slog.Debug("tracker: ignoring line", "line", sc.Text(), "error", err)
			continue
		}
		b.mu.Lock()
		b.latest = r
		b.mu.Unlock()
	}
	if err := sc.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Warn("tracker: read stopped", "error", err)
	}
}

// Poll returns the latest reading without blocking; it repeats the previous
// value until a new one arrives.
func (b *Bridge) Poll() Reading {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.latest
}

// Close releases the device and waits for the reader to stop.
func (b *Bridge) Close() error {
	err := b.rc.Close()
	<-b.done
	return err
}

// ParseReading decodes one "<mode> <angle>" line.
func ParseReading(line string) (Reading, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Reading{}, fmt.Errorf("want 2 fields, got %d", len(fields))
	}

	var r Reading
	switch strings.ToUpper(fields[0]) {
	case "R":
		r.Mode = Rotate
	case "S":
		r.Mode = Scroll
	default:
		return Reading{}, fmt.Errorf("unknown mode %q", fields[0])
	}

	angle, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Reading{}, err
	}
	if math.IsNaN(angle) || math.IsInf(angle, 0) {
		return Reading{}, fmt.Errorf("angle %v out of range", angle)
	}
	r.Angle = angle
	return r, nil
}
