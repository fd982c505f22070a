package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/echoflaresat/snowglobe/config"
	"github.com/echoflaresat/snowglobe/display"
	"github.com/echoflaresat/snowglobe/input"
	"github.com/echoflaresat/snowglobe/loop"
	"github.com/echoflaresat/snowglobe/media"
	"github.com/echoflaresat/snowglobe/predict"
	"github.com/echoflaresat/snowglobe/render"
	"github.com/echoflaresat/snowglobe/slideshow"
	"github.com/echoflaresat/snowglobe/tracker"
	"github.com/echoflaresat/snowglobe/video"
)

// errMissingInput is reported when no positional argument is given.
var errMissingInput = errors.New("missing filename or path")

// modeFlag is a boolean flag that selects one media mode. The last one set wins.
type modeFlag struct {
	mode  *media.Mode
	value media.Mode
}

func (m modeFlag) String() string {
	if m.mode == nil {
		return "false"
	}
	return strconv.FormatBool(*m.mode == m.value)
}

func (m modeFlag) Set(s string) error {
	on, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	if on {
		*m.mode = m.value
	}
	return nil
}

func (m modeFlag) IsBoolFlag() bool { return true }

type options struct {
	profile  string
	showHelp bool
}

func defineFlags(fs *flag.FlagSet, cfg *config.Config) *options {
	opts := &options{}

	fs.Var(modeFlag{&cfg.Mode, media.Images}, "i", "Show still images (default mode)")
	fs.Var(modeFlag{&cfg.Mode, media.Video}, "v", "Play video files")
	fs.Var(modeFlag{&cfg.Mode, media.Prediction}, "p", "Show satellite positions from PREDICT over a map")

	fs.BoolVar(&cfg.Fullscreen, "f", cfg.Fullscreen, "Run fullscreen")
	fs.BoolVar(&cfg.Mirror, "m", cfg.Mirror, "Mirror the image horizontally")
	fs.IntVar(&cfg.Display, "d", cfg.Display, "Display (monitor) index")
	fs.IntVar(&cfg.Width, "w", cfg.Width, "Window width in pixels")
	fs.IntVar(&cfg.Height, "h", cfg.Height, "Window height in pixels")

	fs.Float64Var(&cfg.Ratio, "a", cfg.Ratio, "Aspect ratio (width / height)")
	fs.Float64Var(&cfg.Radius, "r", cfg.Radius, "Globe radius / window height")
	fs.Float64Var(&cfg.CenterX, "x", cfg.CenterX, "Globe center x / window width")
	fs.Float64Var(&cfg.CenterY, "y", cfg.CenterY, "Globe center y / window height")
	fs.Float64Var(&cfg.LensHeight, "o", cfg.LensHeight, "Lens offset below the globe center / window height")

	fs.StringVar(&cfg.Overlay, "s", cfg.Overlay, "Overlay text drawn on every frame")
	fs.StringVar(&cfg.Tracker, "t", cfg.Tracker, "Orientation tracker device path")
	fs.StringVar(&cfg.Shader, "shader", cfg.Shader, "Kage shader file replacing the built-in remap")
	fs.StringVar(&cfg.PredictAddr, "predict-host", cfg.PredictAddr, "PREDICT server address")
	fs.IntVar(&cfg.VideoWidth, "video-width", cfg.VideoWidth, "Decoded video width")
	fs.IntVar(&cfg.VideoHeight, "video-height", cfg.VideoHeight, "Decoded video height")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	fs.StringVar(&opts.profile, "c", "", "YAML display profile; flags override its values")
	fs.BoolVar(&opts.showHelp, "help", false, "Show this help message")
	return opts
}

func newFlagSet(cfg *config.Config) (*flag.FlagSet, *options) {
	fs := flag.NewFlagSet("snowglobe", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs, defineFlags(fs, cfg)
}

// parseArgs builds the configuration from defaults, the optional profile and the flags,
// in that order. It returns the positional arguments.
func parseArgs(args []string) (config.Config, []string, error) {
	cfg := config.Default()
	fs, opts := newFlagSet(&cfg)
	if err := fs.Parse(args); err != nil {
		return cfg, nil, err
	}
	if opts.showHelp {
		return cfg, nil, flag.ErrHelp
	}

	if opts.profile != "" {
		if err := config.LoadProfile(opts.profile, &cfg); err != nil {
			return cfg, nil, err
		}
		// Apply the command line again on top of the profile.
		fs, _ = newFlagSet(&cfg)
		if err := fs.Parse(args); err != nil {
			return cfg, nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, nil, err
	}
	if fs.NArg() == 0 {
		return cfg, nil, errMissingInput
	}
	return cfg, fs.Args(), nil
}

func printHelp(w io.Writer) {
	cfg := config.Default()
	fs, _ := newFlagSet(&cfg)

	fmt.Fprintf(w, `Snowglobe - Spherical Display Player

Usage:
  %[1]s [options] file...
  %[1]s -v [options] video...
  %[1]s -p [options] map

`, os.Args[0])

	printGroup(w, fs, "Mode", []string{"i", "v", "p"})
	printGroup(w, fs, "Window", []string{"f", "m", "d", "w", "h"})
	printGroup(w, fs, "Geometry", []string{"a", "r", "x", "y", "o", "shader"})
	printGroup(w, fs, "Sources", []string{"s", "t", "predict-host", "video-width", "video-height"})
	printGroup(w, fs, "Misc", []string{"c", "log-level", "help"})

	fmt.Fprint(w, `Keys:
  Left/Right        rotate (with Shift: fine adjust)
  Up/Down, wheel    previous/next item
  Mouse             drag the globe
  P                 pause rotation
  R                 reset rotation
  Escape            quit

`)
}

func printGroup(w io.Writer, fs *flag.FlagSet, title string, keys []string) {
	fmt.Fprintf(w, "%s:\n", title)
	for _, name := range keys {
		if f := fs.Lookup(name); f != nil {
			fmt.Fprintf(w, "  -%-13s %s (default %q)\n", f.Name, f.Usage, f.DefValue)
		}
	}
	fmt.Fprintln(w)
}

// openSource builds the media source for the configured mode, captioned with
// the overlay text when one is set.
func openSource(cfg config.Config, args []string) (media.Source, error) {
	overlay, err := media.NewOverlay(cfg.Overlay, media.OverlaySize)
	if err != nil {
		return nil, err
	}

	var src media.Source
	switch cfg.Mode {
	case media.Video:
		src, err = video.New(args, cfg.VideoWidth, cfg.VideoHeight)
	case media.Prediction:
		src, err = predict.New(args[0], cfg.PredictAddr)
	default:
		src, err = slideshow.New(context.Background(), args)
	}
	if err != nil {
		return nil, err
	}
	return media.WithOverlay(src, overlay), nil
}

func loadShader(path string) ([]byte, error) {
	if path == "" {
		return render.ShaderSource, nil
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader: %w", err)
	}
	return src, nil
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
	printHelp(os.Stderr)
	return 1
}

func run(argv []string) int {
	cfg, args, err := parseArgs(argv)
	if errors.Is(err, flag.ErrHelp) {
		printHelp(os.Stderr)
		return 0
	}
	if err != nil {
		return fail(err)
	}

	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	state := display.New(cfg)

	source, err := openSource(cfg, args)
	if err != nil {
		return fail(err)
	}
	slog.Info("source ready", "mode", cfg.Mode, "inputs", len(args))

	var tr loop.Tracker
	if cfg.Tracker != "" {
		b, err := tracker.Open(cfg.Tracker)
		if err != nil {
			closeAll(source, nil)
			return fail(err)
		}
		tr = b
	}

	shader, err := loadShader(cfg.Shader)
	if err != nil {
		closeAll(source, tr)
		return fail(err)
	}
	renderer, err := render.New(render.ProjectionOf(state), state.Mirror, shader)
	if err != nil {
		closeAll(source, tr)
		return fail(err)
	}

	sched := loop.NewScheduler(loop.Options{
		State:    state,
		Source:   source,
		Renderer: renderer,
		Tracker:  tr,
		Events:   input.NewPoller(),
	})
	if err := loop.Run(state, sched); err != nil {
		return fail(err)
	}
	return 0
}

func closeAll(source media.Source, tr loop.Tracker) {
	if err := source.Close(); err != nil {
		slog.Warn("close source", "error", err)
	}
	if tr != nil {
		if err := tr.Close(); err != nil {
			slog.Warn("close tracker", "error", err)
		}
	}
}

func main() {
	os.Exit(run(os.Args[1:]))
}
