package tiff

import (
	"image"
	"io"
)

// Image is a memory-mapped TIFF. Pixels stay on disk until read.
type Image interface {
	image.Image
	io.Closer

	// ReadRGBA copies the whole image into dst as opaque RGBA.
	ReadRGBA(dst []byte) error
}

var (
	_ Image = (*stripedTiff)(nil)
	_ Image = (*tiledTiff)(nil)
)
