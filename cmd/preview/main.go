// Command preview renders what the globe shows for an image, without a GPU.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"math"
	"os"

	"github.com/echoflaresat/snowglobe/config"
	"github.com/echoflaresat/snowglobe/display"
	"github.com/echoflaresat/snowglobe/render"
	"github.com/echoflaresat/snowglobe/texture"
)

func main() {
	cfg := config.Default()
	flag.IntVar(&cfg.Width, "w", cfg.Width, "Output width in pixels")
	flag.IntVar(&cfg.Height, "h", cfg.Height, "Output height in pixels")
	flag.Float64Var(&cfg.Ratio, "a", cfg.Ratio, "Aspect ratio (width / height)")
	flag.Float64Var(&cfg.Radius, "r", cfg.Radius, "Globe radius / height")
	flag.Float64Var(&cfg.CenterX, "x", cfg.CenterX, "Globe center x / width")
	flag.Float64Var(&cfg.CenterY, "y", cfg.CenterY, "Globe center y / height")
	flag.Float64Var(&cfg.LensHeight, "o", cfg.LensHeight, "Lens offset / height")
	flag.BoolVar(&cfg.Mirror, "m", false, "Mirror horizontally")
	rotation := flag.Float64("rot", 0, "Rotation in degrees, added to the starting orientation")
	out := flag.String("out", "preview.png", "Output PNG file path")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <equirectangular image>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	frame, err := texture.LoadFrame(flag.Arg(0))
	if err != nil {
		log.Fatalf("Could not load %q: %v", flag.Arg(0), err)
	}
	if err := render.CheckDimensions(frame.Width, frame.Height); err != nil {
		log.Printf("warning: %v", err)
	}

	state := display.New(cfg)
	angle := state.Rotation + *rotation*math.Pi/180
	view, err := render.Preview(context.Background(), frame, render.ProjectionOf(state), angle, cfg.Width, cfg.Height, cfg.Mirror)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("-> creating %s\n", *out)
	if err := writePNG(*out, view.Image()); err != nil {
		log.Fatalf("Failed to write PNG: %v", err)
	}
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return (&png.Encoder{CompressionLevel: png.BestSpeed}).Encode(f, img)
}
