// Package render draws equirectangular frames onto the spherical display.
package render

import (
	_ "embed"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"github.com/echoflaresat/snowglobe/media"
	"github.com/hajimehoshi/ebiten/v2"
)

// ShaderSource is the default spherical remap shader.
//
//go:embed sphere.kage
var ShaderSource []byte

// ErrShader is returned when the remap shader does not compile.
var ErrShader = errors.New("shader compilation failed")

// ErrNotPowerOfTwo flags texture sizes some GPUs sample poorly.
var ErrNotPowerOfTwo = errors.New("dimensions not a power of 2")

var quadIndices = []uint16{0, 1, 2, 0, 2, 3}

// Renderer owns the GPU texture and the remap shader.
type Renderer struct {
	shader   *ebiten.Shader
	texture  *ebiten.Image
	texW     int
	texH     int
	mirror   bool
	uniforms map[string]any
	vertices []ebiten.Vertex
}

// New compiles src (Kage) and binds the geometry uniforms.
func New(p Projection, mirror bool, src []byte) (*Renderer, error) {
	shader, err := ebiten.NewShader(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShader, err)
	}
	return &Renderer{
		shader: shader,
		mirror: mirror,
		uniforms: map[string]any{
			"Radius":   float32(p.Radius),
			"Height":   float32(p.LensOffset),
			"Center":   []float32{float32(p.CenterX), float32(p.CenterY)},
			"Ratio":    float32(p.Ratio),
			"Texres":   []float32{1, 1},
			"Rotation": float32(0),
		},
	}, nil
}

// CheckDimensions reports sizes that are not powers of two.
func CheckDimensions(width, height int) error {
	if !isPowerOfTwo(width) || !isPowerOfTwo(height) {
		return fmt.Errorf("%w: %dx%d", ErrNotPowerOfTwo, width, height)
	}
	return nil
}

// warnDimensions logs sizes that are not powers of two. It runs once per
// texture allocation, not per frame, and never stops the upload.
func warnDimensions(width, height int) bool {
	err := CheckDimensions(width, height)
	if err != nil {
		slog.Warn("render: texture may sample poorly", "error", err)
	}
	return err != nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// Upload copies f into the texture, reallocating it when the size changes.
func (r *Renderer) Upload(f *media.Frame) {
	if f == nil {
		return
	}
	if r.texture == nil || f.Width != r.texW || f.Height != r.texH {
		warnDimensions(f.Width, f.Height)
		if r.texture != nil {
			r.texture.Deallocate()
		}
		r.texture = ebiten.NewImage(f.Width, f.Height)
		r.texW, r.texH = f.Width, f.Height
		r.vertices = nil
	}
	r.texture.WritePixels(f.Pix)
}

// SetResolution tells the shader the size of the active source.
func (r *Renderer) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.uniforms["Texres"] = []float32{1 / float32(width), 1 / float32(height)}
}

func (r *Renderer) SetRotation(angle float64) {
	r.uniforms["Rotation"] = float32(angle)
}

// Draw fills screen with the globe view. Before the first upload it is black.
func (r *Renderer) Draw(screen *ebiten.Image) {
	if r.texture == nil {
		screen.Fill(color.Black)
		return
	}
	b := screen.Bounds()
	if r.vertices == nil || r.vertices[2].DstX != float32(b.Dx()) || r.vertices[2].DstY != float32(b.Dy()) {
		r.vertices = quad(b.Dx(), b.Dy(), r.texW, r.texH, r.mirror)
	}
	screen.DrawTrianglesShader(r.vertices, quadIndices, r.shader, &ebiten.DrawTrianglesShaderOptions{
		Uniforms: r.uniforms,
		Images:   [4]*ebiten.Image{r.texture},
	})
}

// Dispose releases the texture and the shader.
func (r *Renderer) Dispose() {
	if r.texture != nil {
		r.texture.Deallocate()
		r.texture = nil
	}
	if r.shader != nil {
		r.shader.Deallocate()
		r.shader = nil
	}
}

// quad covers the screen, flipping the source horizontally when mirrored.
func quad(dstW, dstH, texW, texH int, mirror bool) []ebiten.Vertex {
	left, right := float32(0), float32(texW)
	if mirror {
		left, right = right, left
	}
	w, h, th := float32(dstW), float32(dstH), float32(texH)
	v := []ebiten.Vertex{
		{DstX: 0, DstY: 0, SrcX: left, SrcY: 0},
		{DstX: w, DstY: 0, SrcX: right, SrcY: 0},
		{DstX: w, DstY: h, SrcX: right, SrcY: th},
		{DstX: 0, DstY: h, SrcX: left, SrcY: th},
	}
	for i := range v {
		v[i].ColorR, v[i].ColorG, v[i].ColorB, v[i].ColorA = 1, 1, 1, 1
	}
	return v
}
