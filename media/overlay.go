package media

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// OverlaySize is the point size of the caption rendered over source frames.
const OverlaySize = 116

// Overlay is a pre-rendered line of white text blended onto frames.
type Overlay struct {
	img *image.RGBA
}

// NewOverlay rasterizes text once. Empty text yields a nil overlay.
func NewOverlay(text string, size float64) (*Overlay, error) {
	if text == "" {
		return nil, nil
	}

	ttf, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse overlay font: %w", err)
	}
	face, err := opentype.NewFace(ttf, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create overlay face: %w", err)
	}
	defer face.Close()

	bounds, advance := font.BoundString(face, text)
	w := advance.Ceil()
	h := (bounds.Max.Y - bounds.Min.Y).Ceil()
	if w <= 0 || h <= 0 {
		return nil, nil
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.White),
		Face: face,
		Dot:  fixed.Point26_6{X: 0, Y: -bounds.Min.Y},
	}
	d.DrawString(text)
	return &Overlay{img: img}, nil
}

// Apply blends the text onto f, left aligned and vertically centered.
func (o *Overlay) Apply(f *Frame) {
	if o == nil || f == nil {
		return
	}
	b := o.img.Bounds()
	y := f.Height/2 - b.Dy()/2
	dst := image.Rect(0, y, b.Dx(), y+b.Dy())
	draw.Draw(f.Image(), dst, o.img, image.Point{}, draw.Over)
}
