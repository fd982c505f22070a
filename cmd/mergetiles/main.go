// Command mergetiles joins a grid of equal-sized tiles into one texture.
package main

import (
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/echoflaresat/snowglobe/render"
	"github.com/echoflaresat/snowglobe/texture"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <cols>x<rows> <output.png|.jpg> <tile1> <tile2> ...\n", os.Args[0])
		os.Exit(1)
	}

	cols, rows, err := parseLayout(os.Args[1])
	if err != nil {
		log.Fatal(err)
	}
	output := os.Args[2]
	inputFiles := os.Args[3:]
	if len(inputFiles) != cols*rows {
		log.Fatalf("Expected %d input files, got %d", cols*rows, len(inputFiles))
	}

	canvas, err := merge(cols, inputFiles)
	if err != nil {
		log.Fatal(err)
	}
	b := canvas.Bounds()
	if err := render.CheckDimensions(b.Dx(), b.Dy()); err != nil {
		log.Printf("warning: %v", err)
	}
	if err := save(output, canvas); err != nil {
		log.Fatal(err)
	}
}

func parseLayout(s string) (cols, rows int, err error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid tile format: %s (expected NxM)", s)
	}
	if cols, err = strconv.Atoi(parts[0]); err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("invalid cols: %q", parts[0])
	}
	if rows, err = strconv.Atoi(parts[1]); err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("invalid rows: %q", parts[1])
	}
	return cols, rows, nil
}

// merge places the tiles row by row, left to right.
func merge(cols int, paths []string) (*image.NRGBA, error) {
	rows := (len(paths) + cols - 1) / cols
	var canvas *image.NRGBA
	var tileW, tileH int
	for idx, path := range paths {
		fmt.Printf("Processing %s\n", path)
		tile, err := texture.Load(path)
		if err != nil {
			return nil, fmt.Errorf("could not load %q: %w", path, err)
		}

		b := tile.Bounds()
		if canvas == nil {
			tileW, tileH = b.Dx(), b.Dy()
			canvas = image.NewNRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
		} else if tileW != b.Dx() || tileH != b.Dy() {
			closeTile(tile)
			return nil, fmt.Errorf("tile size mismatch for %q: expected %dx%d, got %dx%d",
				path, tileW, tileH, b.Dx(), b.Dy())
		}

		x := (idx % cols) * tileW
		y := (idx / cols) * tileH
		draw.Draw(canvas, image.Rect(x, y, x+tileW, y+tileH), tile, b.Min, draw.Src)
		closeTile(tile)
	}
	return canvas, nil
}

func closeTile(img image.Image) {
	if c, ok := img.(io.Closer); ok {
		c.Close()
	}
}

func save(output string, canvas *image.NRGBA) error {
	fmt.Printf("-> creating %s\n", output)
	var encode func(io.Writer) error
	switch ext := strings.ToLower(filepath.Ext(output)); ext {
	case ".png":
		encode = func(w io.Writer) error { return png.Encode(w, canvas) }
	case ".jpg", ".jpeg":
		encode = func(w io.Writer) error { return jpeg.Encode(w, canvas, &jpeg.Options{Quality: 95}) }
	default:
		return fmt.Errorf("unsupported output format: %s", ext)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", output, err)
	}
	if err := encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
