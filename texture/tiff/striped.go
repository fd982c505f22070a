package tiff

import (
	"fmt"
	"image"
	"image/color"

	"golang.org/x/exp/mmap"
)

type stripedTiff struct {
	header Header
	reader *mmap.ReaderAt
}

// LoadStripedTiff memory-maps an uncompressed, strip-organized TIFF.
func LoadStripedTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := ReadHeader(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if err := checkStriped(header); err != nil {
		reader.Close()
		return nil, err
	}
	return &stripedTiff{header: header, reader: reader}, nil
}

func checkStriped(h Header) error {
	if len(h.StripOffsets) == 0 || len(h.StripOffsets) != len(h.StripByteCounts) {
		return errUnsupported("no strip layout")
	}
	if h.Compression != CompressionNone {
		return errUnsupported("strip compression %d", h.Compression)
	}
	return h.checkPixelFormat()
}

func (t *stripedTiff) Close() error {
	return t.reader.Close()
}

func (t *stripedTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *stripedTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *stripedTiff) At(x, y int) color.Color {
	h := t.header

	strip := y / h.RowsPerStrip
	localY := y % h.RowsPerStrip
	idx := h.StripOffsets[strip] + (localY*h.Width+x)*h.SamplesPerPixel

	var buf [3]byte
	if _, err := t.reader.ReadAt(buf[:h.SamplesPerPixel], int64(idx)); err != nil {
		panic(fmt.Sprintf("could not read pixel at (%d,%d): %v", x, y, err))
	}
	if h.Photometric == PhotometricBlackIsZero {
		return color.RGBA{R: buf[0], G: buf[0], B: buf[0], A: 255}
	}
	return color.RGBA{R: buf[0], G: buf[1], B: buf[2], A: 255}
}

// ReadRGBA copies the whole image into dst, which holds 4*Width*Height bytes.
func (t *stripedTiff) ReadRGBA(dst []byte) error {
	h := t.header
	row := make([]byte, h.Width*h.SamplesPerPixel)
	for y := 0; y < h.Height; y++ {
		strip := y / h.RowsPerStrip
		off := h.StripOffsets[strip] + (y%h.RowsPerStrip)*len(row)
		if _, err := t.reader.ReadAt(row, int64(off)); err != nil {
			return fmt.Errorf("read row %d: %w", y, err)
		}
		expandRow(dst[4*y*h.Width:4*(y+1)*h.Width], row, h.Photometric)
	}
	return nil
}

// expandRow converts packed gray or RGB samples into opaque RGBA.
func expandRow(dst, src []byte, photometric int) {
	if photometric == PhotometricBlackIsZero {
		for x, v := range src {
			p := dst[4*x : 4*x+4]
			p[0], p[1], p[2], p[3] = v, v, v, 255
		}
		return
	}
	for x := 0; 3*x+2 < len(src); x++ {
		p := dst[4*x : 4*x+4]
		p[0], p[1], p[2], p[3] = src[3*x], src[3*x+1], src[3*x+2], 255
	}
}
