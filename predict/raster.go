package predict

import (
	"context"
	"image"
	"math"
	"runtime"

	"github.com/echoflaresat/snowglobe/colors"
	"github.com/echoflaresat/snowglobe/earth"
	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/vectors"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/sync/errgroup"
)

const (
	nightLevel     = 0.35 // brightness of the unlit hemisphere
	terminatorHalf = 0.1  // half width of the twilight band, as a sun cosine
	footprintSteps = 360
	markerRadius   = 4
	selectedRadius = 7
)

var (
	markerColor    = colors.New(1, 0.3, 0.2, 1)
	selectedColor  = colors.New(1, 0.9, 0.2, 1)
	footprintColor = colors.New(1, 1, 1, 0.6)
	labelColor     = colors.White()
)

// Scene is everything one prediction frame shows.
type Scene struct {
	Background *media.Frame
	Sun        vectors.Vec3 // unit vector, Earth fixed
	Satellites []Satellite
	Selected   int // index into Satellites, or -1
}

// Smoothstep performs a Hermite interpolation between 0 and 1 across [edge0, edge1].
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0.0
		}
		return 1.0
	}

	t := (x - edge0) / (edge1 - edge0)
	if t < 0.0 {
		t = 0.0
	} else if t > 1.0 {
		t = 1.0
	}
	return t * t * (3.0 - 2.0*t)
}

// Render shades the background by daylight and draws the satellites on top.
func Render(ctx context.Context, scene Scene) (*media.Frame, error) {
	bg := scene.Background
	out := media.NewFrame(bg.Width, bg.Height)

	workers := runtime.GOMAXPROCS(0)
	band := (bg.Height + workers - 1) / workers
	g, ctx := errgroup.WithContext(ctx)
	for y0 := 0; y0 < bg.Height; y0 += band {
		y1 := min(y0+band, bg.Height)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			shadeRows(out, bg, scene.Sun, y0, y1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, sat := range scene.Satellites {
		drawFootprint(out, sat)
		c, r := markerColor, markerRadius
		if i == scene.Selected {
			c, r = selectedColor, selectedRadius
		}
		x, y := project(out, sat.Lat, sat.Lon)
		fillDisk(out, x, y, r, c)
		drawLabel(out, x+r+2, y+4, sat.Name)
	}
	return out, nil
}

func shadeRows(dst, src *media.Frame, sun vectors.Vec3, y0, y1 int) {
	w, h := src.Width, src.Height
	for y := y0; y < y1; y++ {
		lat := math.Pi/2 - (float64(y)+0.5)/float64(h)*math.Pi
		for x := 0; x < w; x++ {
			lon := (float64(x)+0.5)/float64(w)*2*math.Pi - math.Pi
			light := Smoothstep(-terminatorHalf, terminatorHalf, vectors.FromLatLon(lat, lon).Dot(sun))

			i := 4 * (y*w + x)
			p := src.Pix[i : i+4]
			c := colors.FromRGBA8(p[0], p[1], p[2], p[3])
			c.Scale(nightLevel + (1-nightLevel)*light).PutRGBA8(dst.Pix[i : i+4])
		}
	}
}

// project maps degrees onto pixel coordinates, longitude -180 at the left edge.
func project(f *media.Frame, latDeg, lonDeg float64) (int, int) {
	x := int(math.Floor((lonDeg + 180) / 360 * float64(f.Width)))
	y := int(math.Floor((90 - latDeg) / 180 * float64(f.Height)))
	return x, y
}

func drawFootprint(f *media.Frame, sat Satellite) {
	if sat.Footprint <= 0 {
		return
	}
	dist := earth.FootprintAngle(sat.Footprint)
	lat, lon := sat.Lat*math.Pi/180, sat.Lon*math.Pi/180
	for i := 0; i < footprintSteps; i++ {
		bearing := float64(i) / footprintSteps * 2 * math.Pi
		plat, plon := earth.Destination(lat, lon, dist, bearing)
		x, y := project(f, plat*180/math.Pi, plon*180/math.Pi)
		blend(f, x, y, footprintColor)
	}
}

func fillDisk(f *media.Frame, cx, cy, r int, c colors.Color4) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				blend(f, cx+dx, cy+dy, c)
			}
		}
	}
}

// blend composites c over one pixel. x wraps around the map; y is clipped.
func blend(f *media.Frame, x, y int, c colors.Color4) {
	if y < 0 || y >= f.Height {
		return
	}
	x = media.Wrap(x, f.Width)
	i := 4 * (y*f.Width + x)
	p := f.Pix[i : i+4]
	c.Over(colors.FromRGBA8(p[0], p[1], p[2], p[3])).PutRGBA8(p)
}

func drawLabel(f *media.Frame, x, y int, text string) {
	d := font.Drawer{
		Dst:  f.Image(),
		Src:  image.NewUniform(labelColor),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}
