// Package media defines the frame producers that feed the globe.
package media

import (
	"errors"
	"fmt"
	"image"
)

// ErrNoInput is returned when a source has nothing it can play.
var ErrNoInput = errors.New("no usable input")

// Source produces equirectangular frames for the renderer.
//
// Update never blocks: it returns nil when no new frame is available.
// SetIndex selects an item; out-of-range values wrap with Wrap.
type Source interface {
	Resolution() (width, height int)
	Update() *Frame
	SetIndex(index int)
	Close() error
}

// Mode tags which kind of Source is active.
type Mode int

const (
	Images Mode = iota
	Video
	Prediction
)

func (m Mode) String() string {
	switch m {
	case Images:
		return "images"
	case Video:
		return "video"
	case Prediction:
		return "prediction"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the names returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "images", "image":
		return Images, nil
	case "video":
		return Video, nil
	case "prediction", "predict":
		return Prediction, nil
	}
	return 0, fmt.Errorf("unknown mode %q", s)
}

// Wrap maps any index onto [0, n) with Euclidean modulo, so -1 selects the last item.
func Wrap(index, n int) int {
	if n <= 0 {
		return 0
	}
	return ((index % n) + n) % n
}

// Frame is a tightly packed premultiplied RGBA pixel buffer.
type Frame struct {
	Pix    []byte
	Width  int
	Height int
}

// NewFrame allocates a black, transparent frame.
func NewFrame(width, height int) *Frame {
	return &Frame{Pix: make([]byte, 4*width*height), Width: width, Height: height}
}

// Image views the frame as an *image.RGBA without copying.
func (f *Frame) Image() *image.RGBA {
	return &image.RGBA{
		Pix:    f.Pix,
		Stride: 4 * f.Width,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	pix := make([]byte, len(f.Pix))
	copy(pix, f.Pix)
	return &Frame{Pix: pix, Width: f.Width, Height: f.Height}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
