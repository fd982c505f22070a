package tiff

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"image"
	"image/color"
	"io"

	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/exp/mmap"
)

// tileCacheSize bounds how many decompressed tiles stay resident.
const tileCacheSize = 200

type tiledTiff struct {
	header      Header
	reader      *mmap.ReaderAt
	cache       *lru.Cache // tileIndex -> []byte
	tilesAcross int
}

// LoadTiledTiff memory-maps a tiled TIFF, uncompressed or DEFLATE.
func LoadTiledTiff(path string) (Image, error) {
	reader, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}

	header, err := ReadHeader(reader)
	if err != nil {
		reader.Close()
		return nil, err
	}
	if err := checkTiled(header); err != nil {
		reader.Close()
		return nil, err
	}

	cache, err := lru.New(tileCacheSize)
	if err != nil {
		reader.Close()
		return nil, err
	}

	return &tiledTiff{
		header:      header,
		reader:      reader,
		cache:       cache,
		tilesAcross: (header.Width + header.TileWidth - 1) / header.TileWidth,
	}, nil
}

func checkTiled(h Header) error {
	if h.TileWidth <= 0 || h.TileHeight <= 0 {
		return errUnsupported("no tile layout")
	}
	if len(h.TileOffsets) == 0 || len(h.TileOffsets) != len(h.TileByteCounts) {
		return errUnsupported("invalid tile offset/length")
	}
	if h.Compression != CompressionNone && h.Compression != CompressionDeflate {
		return errUnsupported("tile compression %d", h.Compression)
	}
	return h.checkPixelFormat()
}

func (t *tiledTiff) Close() error {
	return t.reader.Close()
}

func (t *tiledTiff) ColorModel() color.Model {
	return color.RGBAModel
}

func (t *tiledTiff) Bounds() image.Rectangle {
	return image.Rect(0, 0, t.header.Width, t.header.Height)
}

func (t *tiledTiff) At(x, y int) color.Color {
	h := t.header

	tile, err := t.tile((y/h.TileHeight)*t.tilesAcross + x/h.TileWidth)
	if err != nil {
		panic(err.Error())
	}

	localX := x % h.TileWidth
	localY := y % h.TileHeight
	pixOffset := (localY*h.TileWidth + localX) * h.SamplesPerPixel

	if h.Photometric == PhotometricBlackIsZero {
		v := tile[pixOffset]
		return color.RGBA{R: v, G: v, B: v, A: 255}
	}
	return color.RGBA{
		R: tile[pixOffset],
		G: tile[pixOffset+1],
		B: tile[pixOffset+2],
		A: 255,
	}
}

// ReadRGBA copies the whole image into dst, which holds 4*Width*Height bytes.
func (t *tiledTiff) ReadRGBA(dst []byte) error {
	h := t.header
	rowBytes := h.TileWidth * h.SamplesPerPixel
	for index := range h.TileOffsets {
		tile, err := t.tile(index)
		if err != nil {
			return err
		}
		x0 := (index % t.tilesAcross) * h.TileWidth
		y0 := (index / t.tilesAcross) * h.TileHeight
		w := min(h.TileWidth, h.Width-x0)
		for ly := 0; ly < h.TileHeight && y0+ly < h.Height; ly++ {
			src := tile[ly*rowBytes : ly*rowBytes+w*h.SamplesPerPixel]
			start := 4 * ((y0+ly)*h.Width + x0)
			expandRow(dst[start:start+4*w], src, h.Photometric)
		}
	}
	return nil
}

func (t *tiledTiff) tile(index int) ([]byte, error) {
	if val, ok := t.cache.Get(index); ok {
		return val.([]byte), nil
	}
	tile, err := t.loadTile(index)
	if err != nil {
		return nil, err
	}
	t.cache.Add(index, tile)
	return tile, nil
}

func (t *tiledTiff) loadTile(index int) ([]byte, error) {
	h := t.header
	if index < 0 || index >= len(h.TileOffsets) {
		return nil, fmt.Errorf("tile %d out of range", index)
	}

	buf := make([]byte, h.TileByteCounts[index])
	if _, err := t.reader.ReadAt(buf, int64(h.TileOffsets[index])); err != nil {
		return nil, fmt.Errorf("read tile %d: %w", index, err)
	}

	if h.Compression == CompressionDeflate {
		r, err := zlib.NewReader(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("inflate tile %d: %w", index, err)
		}
		defer r.Close()
		if buf, err = io.ReadAll(r); err != nil {
			return nil, fmt.Errorf("inflate tile %d: %w", index, err)
		}
	}

	want := h.TileWidth * h.TileHeight * h.SamplesPerPixel
	if len(buf) < want {
		return nil, fmt.Errorf("tile %d is %d bytes, want %d", index, len(buf), want)
	}
	return buf, nil
}
