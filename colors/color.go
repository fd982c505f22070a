package colors

import (
	"image/color"
)

// Color4 is a straight (non-premultiplied) RGBA color with float64 components in [0,1].
type Color4 struct {
	R, G, B, A float64
}

func New(r, g, b, a float64) Color4 {
	return Color4{R: r, G: g, B: b, A: a}
}

// FromRGBA8 decodes premultiplied 8-bit RGBA, as stored in image.RGBA pixels.
func FromRGBA8(r, g, b, a byte) Color4 {
	if a == 0 {
		return Color4{}
	}
	inv := 1.0 / float64(a)
	return Color4{
		R: float64(r) * inv,
		G: float64(g) * inv,
		B: float64(b) * inv,
		A: float64(a) / 255.0,
	}
}

func FromStandardColor(c color.Color) Color4 {
	if c4, ok := c.(Color4); ok {
		return c4
	}

	r16, g16, b16, a16 := c.RGBA()
	if a16 == 0 {
		return Color4{}
	}

	// De-premultiply and normalize to [0,1]
	invA := float64(0xFFFF) / float64(a16)
	return Color4{
		R: float64(r16) * invA / 65535.0,
		G: float64(g16) * invA / 65535.0,
		B: float64(b16) * invA / 65535.0,
		A: float64(a16) / 65535.0,
	}
}

func (c Color4) RGBA() (r, g, b, a uint32) {
	rf := clamp01(c.R)
	gf := clamp01(c.G)
	bf := clamp01(c.B)
	af := clamp01(c.A)

	// Pre-multiplied 16-bit values
	return uint32(rf * af * 65535),
		uint32(gf * af * 65535),
		uint32(bf * af * 65535),
		uint32(af * 65535)
}

func White() Color4 {
	return Color4{R: 1, G: 1, B: 1, A: 1}
}

func Black() Color4 {
	return Color4{R: 0, G: 0, B: 0, A: 1}
}

// Scale returns c * s for the color channels, leaving alpha untouched.
func (c Color4) Scale(s float64) Color4 {
	return Color4{c.R * s, c.G * s, c.B * s, c.A}
}

// Mix returns lerp(c, o, t) = c*(1-t) + o*t.
func (c Color4) Mix(o Color4, t float64) Color4 {
	return Color4{
		R: c.R*(1-t) + o.R*t,
		G: c.G*(1-t) + o.G*t,
		B: c.B*(1-t) + o.B*t,
		A: c.A*(1-t) + o.A*t,
	}
}

// Over composites c on top of dst.
func (c Color4) Over(dst Color4) Color4 {
	a := c.A + dst.A*(1-c.A)
	if a == 0 {
		return Color4{}
	}
	return Color4{
		R: (c.R*c.A + dst.R*dst.A*(1-c.A)) / a,
		G: (c.G*c.A + dst.G*dst.A*(1-c.A)) / a,
		B: (c.B*c.A + dst.B*dst.A*(1-c.A)) / a,
		A: a,
	}
}

// PutRGBA8 writes c into p[0:4] as premultiplied 8-bit RGBA.
func (c Color4) PutRGBA8(p []byte) {
	a := clamp01(c.A)
	p[0] = to8bit(c.R * a)
	p[1] = to8bit(c.G * a)
	p[2] = to8bit(c.B * a)
	p[3] = to8bit(a)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

// to8bit rounds to the nearest 8-bit value.
func to8bit(x float64) uint8 {
	return uint8(255.0*clamp01(x) + 0.5)
}
