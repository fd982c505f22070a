package render

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/echoflaresat/snowglobe/config"
	"github.com/echoflaresat/snowglobe/display"
	"github.com/echoflaresat/snowglobe/media"
)

func defaultProjection() Projection {
	return ProjectionOf(display.New(config.Default()))
}

func TestRemapCenterIsNorthPole(t *testing.T) {
	p := defaultProjection()
	u, v, ok := p.Remap(p.CenterX, p.CenterY, math.Pi)
	if !ok {
		t.Fatal("center is outside the globe")
	}
	if math.Abs(v) > 1e-9 {
		t.Fatalf("v = %v, want 0", v)
	}
	if math.Abs(u-0.5) > 1e-9 {
		t.Fatalf("u = %v, want 0.5", u)
	}
}

func TestRemapOutsideIsBlack(t *testing.T) {
	p := defaultProjection()
	for _, pt := range [][2]float64{{0, 0}, {1, 1}, {0.99, p.CenterY}} {
		if _, _, ok := p.Remap(pt[0], pt[1], 0); ok {
			t.Fatalf("point %v mapped inside the globe", pt)
		}
	}
}

func TestRemapRimReachesSouth(t *testing.T) {
	p := defaultProjection()
	// Just inside the rim, straight down on screen.
	_, v, ok := p.Remap(p.CenterX, p.CenterY+p.Radius*0.999, 0)
	if !ok {
		t.Fatal("rim point outside the globe")
	}
	want := 0.5 + math.Asin(p.LensOffset)/math.Pi
	if math.Abs(v-want) > 1e-2 {
		t.Fatalf("rim v = %v, want about %v", v, want)
	}
}

func TestRemapRotationShiftsLongitude(t *testing.T) {
	p := defaultProjection()
	sx, sy := p.CenterX+0.05, p.CenterY+0.1
	u0, v0, _ := p.Remap(sx, sy, 0)
	u1, v1, _ := p.Remap(sx, sy, math.Pi/2)
	if math.Abs(v0-v1) > 1e-12 {
		t.Fatalf("rotation changed latitude: %v vs %v", v0, v1)
	}
	d := math.Mod(u1-u0+1, 1)
	if math.Abs(d-0.25) > 1e-9 {
		t.Fatalf("u shift = %v, want 0.25", d)
	}
}

func TestLatitudeMonotonicFromCenter(t *testing.T) {
	p := defaultProjection()
	prev := -1.0
	for i := 0; i <= 20; i++ {
		r := float64(i) / 20 * p.Radius * 0.999
		_, v, ok := p.Remap(p.CenterX+r/p.Ratio, p.CenterY, 0)
		if !ok {
			t.Fatalf("r=%v outside", r)
		}
		if v < prev {
			t.Fatalf("v decreased at r=%v: %v < %v", r, v, prev)
		}
		prev = v
	}
}

func TestQuadMirror(t *testing.T) {
	plain := quad(848, 480, 1024, 512, false)
	mirrored := quad(848, 480, 1024, 512, true)

	if plain[0].SrcX != 0 || plain[1].SrcX != 1024 {
		t.Fatalf("plain src x = %v, %v", plain[0].SrcX, plain[1].SrcX)
	}
	if mirrored[0].SrcX != 1024 || mirrored[1].SrcX != 0 {
		t.Fatalf("mirrored src x = %v, %v", mirrored[0].SrcX, mirrored[1].SrcX)
	}
	for i := range plain {
		if plain[i].DstX != mirrored[i].DstX || plain[i].DstY != mirrored[i].DstY {
			t.Fatalf("vertex %d destination differs", i)
		}
		if plain[i].SrcY != mirrored[i].SrcY {
			t.Fatalf("vertex %d mirrored vertically", i)
		}
	}
	if plain[2].DstX != 848 || plain[2].DstY != 480 || plain[2].SrcY != 512 {
		t.Fatalf("far corner = %+v", plain[2])
	}
}

func TestCheckDimensions(t *testing.T) {
	if err := CheckDimensions(2048, 1024); err != nil {
		t.Fatalf("2048x1024: %v", err)
	}
	for _, sz := range [][2]int{{100, 100}, {1024, 500}, {0, 64}} {
		if err := CheckDimensions(sz[0], sz[1]); !errors.Is(err, ErrNotPowerOfTwo) {
			t.Fatalf("%v: err = %v, want ErrNotPowerOfTwo", sz, err)
		}
	}
}

func TestShaderDeclaresUniforms(t *testing.T) {
	for _, name := range []string{"Radius", "Height", "Center", "Ratio", "Texres", "Rotation"} {
		if !bytes.Contains(ShaderSource, []byte("var "+name+" ")) {
			t.Fatalf("shader does not declare %s", name)
		}
	}
	if !bytes.HasPrefix(ShaderSource, []byte("//kage:unit pixels")) {
		t.Fatal("shader must use pixel units")
	}
}

func TestPreview(t *testing.T) {
	// Top half red, bottom half blue.
	src := media.NewFrame(8, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			p := src.Pix[4*(y*8+x):]
			if y < 2 {
				p[0] = 255
			} else {
				p[2] = 255
			}
			p[3] = 255
		}
	}

	p := defaultProjection()
	out, err := Preview(context.Background(), src, p, math.Pi, 848, 480, false)
	if err != nil {
		t.Fatal(err)
	}

	at := func(x, y int) []byte { return out.Pix[4*(y*848+x) : 4*(y*848+x)+4] }
	cx, cy := int(p.CenterX*848), int(p.CenterY*480)
	if c := at(cx, cy); c[0] != 255 || c[2] != 0 {
		t.Fatalf("center pixel = %v, want northern red", c)
	}
	if c := at(0, 0); c[0] != 0 || c[1] != 0 || c[2] != 0 || c[3] != 255 {
		t.Fatalf("corner pixel = %v, want opaque black", c)
	}
}

func TestNonPowerOfTwoWarns(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	defer slog.SetDefault(prev)

	if !warnDimensions(100, 100) {
		t.Fatal("100x100 not reported")
	}
	if !strings.Contains(buf.String(), "dimensions not a power of 2") {
		t.Fatalf("log = %q", buf.String())
	}

	buf.Reset()
	if warnDimensions(1024, 512) || buf.Len() != 0 {
		t.Fatalf("1024x512 reported: %q", buf.String())
	}
}
