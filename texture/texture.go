// Package texture decodes equirectangular maps into frames.
package texture

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"

	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/texture/tiff"
	codec "github.com/echoflaresat/tiff"
	"golang.org/x/image/draw"

	_ "image/jpeg"              // register JPEG format with image.Decode
	_ "image/png"               // register PNG format with image.Decode
	_ "golang.org/x/image/bmp"  // register BMP format with image.Decode
	_ "golang.org/x/image/webp" // register WebP format with image.Decode
)

// Load opens an image, preferring the memory-mapped TIFF readers.
// Callers should close the result when it implements io.Closer.
func Load(path string) (image.Image, error) {
	img, err := tiff.LoadStripedTiff(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) && !errors.Is(err, tiff.ErrUnsupported) {
		slog.Warn("texture: failed to load striped TIFF", "path", path, "error", err)
	}

	img, err = tiff.LoadTiledTiff(path)
	if err == nil {
		return img, nil
	}
	if !errors.Is(err, tiff.ErrInvalidTiffHeader) && !errors.Is(err, tiff.ErrUnsupported) {
		slog.Warn("texture: failed to load tiled TIFF", "path", path, "error", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// Compressed or exotic TIFFs go through the full decoder.
	if dec, err := codec.Decode(f); err == nil {
		return dec, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	dec, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return dec, nil
}

// Probe reports the pixel size of an image without decoding its pixels.
func Probe(path string) (width, height int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	if hdr, err := tiff.ReadHeader(f); err == nil && hdr.Width > 0 && hdr.Height > 0 {
		return hdr.Width, hdr.Height, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, fmt.Errorf("probe %s: %w", path, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("probe %s: empty image", path)
	}
	return cfg.Width, cfg.Height, nil
}

// LoadFrame decodes path into a frame and releases any mapping it held.
func LoadFrame(path string) (*media.Frame, error) {
	img, err := Load(path)
	if err != nil {
		return nil, err
	}
	if c, ok := img.(io.Closer); ok {
		defer c.Close()
	}
	return ToFrame(img)
}

// ToFrame converts any image into a tightly packed RGBA frame.
func ToFrame(img image.Image) (*media.Frame, error) {
	b := img.Bounds()
	frame := media.NewFrame(b.Dx(), b.Dy())

	switch src := img.(type) {
	case tiff.Image:
		if err := src.ReadRGBA(frame.Pix); err != nil {
			return nil, err
		}
	case *image.RGBA:
		if src.Stride == 4*b.Dx() && b.Min == (image.Point{}) {
			copy(frame.Pix, src.Pix)
			break
		}
		draw.Draw(frame.Image(), frame.Image().Rect, src, b.Min, draw.Src)
	default:
		draw.Draw(frame.Image(), frame.Image().Rect, src, b.Min, draw.Src)
	}
	return frame, nil
}
