package render

import (
	"context"
	"math"
	"runtime"

	"github.com/echoflaresat/snowglobe/display"
	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/vectors"
	"golang.org/x/sync/errgroup"
)

// Projection is the lens and globe geometry, normalized to the window.
type Projection struct {
	Ratio      float64 // window width / height
	Radius     float64 // globe radius / window height
	LensOffset float64 // lens distance below the globe center, in globe radii
	CenterX    float64 // globe center / window width
	CenterY    float64 // globe center / window height
}

// ProjectionOf reads the geometry of a session.
func ProjectionOf(s *display.State) Projection {
	return Projection{
		Ratio:      s.Ratio,
		Radius:     s.Radius,
		LensOffset: s.LensOffset(),
		CenterX:    s.CenterX,
		CenterY:    s.CenterY,
	}
}

// Remap maps a normalized window position (sx, sy in [0,1]) to normalized
// equirectangular coordinates. ok is false outside the globe. It is the CPU
// twin of sphere.kage.
func (p Projection) Remap(sx, sy, rotation float64) (u, v float64, ok bool) {
	px := (sx - p.CenterX) * p.Ratio
	py := sy - p.CenterY
	r := math.Hypot(px, py) / p.Radius
	if r > 1 {
		return 0, 0, false
	}

	alpha := r * math.Pi / 2
	theta := math.Atan2(py, px)
	d := vectors.Vec3{
		X: math.Sin(alpha) * math.Cos(theta),
		Y: math.Sin(alpha) * math.Sin(theta),
		Z: math.Cos(alpha),
	}

	lens := vectors.Vec3{Z: -p.LensOffset}
	t := vectors.IntersectUnitSphere(lens, d)
	if t < 0 {
		return 0, 0, false
	}
	hit := lens.Add(d.Scale(t))

	lat := math.Asin(math.Max(-1, math.Min(1, hit.Z)))
	lon := math.Atan2(hit.Y, hit.X) + rotation

	u = lon / (2 * math.Pi)
	u -= math.Floor(u)
	v = 0.5 - lat/math.Pi
	return u, v, true
}

// Preview renders the globe view of frame on the CPU, in parallel row bands.
func Preview(ctx context.Context, frame *media.Frame, p Projection, rotation float64, width, height int, mirror bool) (*media.Frame, error) {
	out := media.NewFrame(width, height)

	workers := runtime.GOMAXPROCS(0)
	band := (height + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for y0 := 0; y0 < height; y0 += band {
		y1 := min(y0+band, height)
		g.Go(func() error {
			for y := y0; y < y1; y++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				sy := (float64(y) + 0.5) / float64(height)
				for x := 0; x < width; x++ {
					sx := (float64(x) + 0.5) / float64(width)
					if mirror {
						sx = 1 - sx
					}
					dst := out.Pix[4*(y*width+x):]
					u, v, ok := p.Remap(sx, sy, rotation)
					if !ok {
						dst[3] = 255
						continue
					}
					tx := min(int(u*float64(frame.Width)), frame.Width-1)
					ty := min(int(v*float64(frame.Height)), frame.Height-1)
					copy(dst[:4], frame.Pix[4*(ty*frame.Width+tx):])
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
