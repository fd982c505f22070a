package main

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTile(t *testing.T, dir, name string, c color.NRGBA) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseLayout(t *testing.T) {
	cols, rows, err := parseLayout("4x2")
	if err != nil || cols != 4 || rows != 2 {
		t.Fatalf("4x2 = %d, %d, %v", cols, rows, err)
	}
	for _, bad := range []string{"4", "ax2", "0x2", "2x-1"} {
		if _, _, err := parseLayout(bad); err == nil {
			t.Fatalf("%q accepted", bad)
		}
	}
}

func TestMerge(t *testing.T) {
	dir := t.TempDir()
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 0, 255, 255}
	paths := []string{
		writeTile(t, dir, "a.png", red),
		writeTile(t, dir, "b.png", blue),
	}

	canvas, err := merge(2, paths)
	if err != nil {
		t.Fatal(err)
	}
	if b := canvas.Bounds(); b.Dx() != 8 || b.Dy() != 2 {
		t.Fatalf("bounds = %v", b)
	}
	if got := canvas.NRGBAAt(1, 1); got != red {
		t.Fatalf("left tile = %v", got)
	}
	if got := canvas.NRGBAAt(6, 0); got != blue {
		t.Fatalf("right tile = %v", got)
	}

	out := filepath.Join(dir, "out.png")
	if err := save(out, canvas); err != nil {
		t.Fatal(err)
	}
	if err := save(filepath.Join(dir, "out.gif"), canvas); err == nil {
		t.Fatal("gif output accepted")
	}
}
