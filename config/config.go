// Package config holds the startup options of the globe and their defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/echoflaresat/snowglobe/media"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Reference geometry, measured on an 848x480 projector through the globe's lens.
const (
	DefaultWidth  = 848
	DefaultHeight = 480

	referenceRadius = 378.0
	referenceLens   = 370.0
	referenceX      = 431.0
	referenceY      = 210.0

	DefaultVideoWidth  = 2048
	DefaultVideoHeight = 1024
)

// Config represents the complete startup configuration.
type Config struct {
	Mode       media.Mode `yaml:"mode"`
	Width      int        `yaml:"width"`
	Height     int        `yaml:"height"`
	Fullscreen bool       `yaml:"fullscreen"`
	Mirror     bool       `yaml:"mirror"`
	Display    int        `yaml:"display"`

	// Geometry, normalized to the window size.
	Ratio      float64 `yaml:"ratio"`       // width / height
	Radius     float64 `yaml:"radius"`      // globe radius / height
	LensHeight float64 `yaml:"lens_height"` // lens offset / height
	CenterX    float64 `yaml:"center_x"`    // / width
	CenterY    float64 `yaml:"center_y"`    // / height

	Overlay     string `yaml:"overlay"`
	Tracker     string `yaml:"tracker"`
	Shader      string `yaml:"shader"`
	PredictAddr string `yaml:"predict_host"`
	VideoWidth  int    `yaml:"video_width"`
	VideoHeight int    `yaml:"video_height"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the geometry of the reference installation.
func Default() Config {
	return Config{
		Mode:        media.Images,
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		Ratio:       float64(DefaultWidth) / float64(DefaultHeight),
		Radius:      referenceRadius / DefaultHeight,
		LensHeight:  referenceLens / DefaultHeight,
		CenterX:     referenceX / DefaultWidth,
		CenterY:     referenceY / DefaultHeight,
		PredictAddr: "localhost:1210",
		VideoWidth:  DefaultVideoWidth,
		VideoHeight: DefaultVideoHeight,
		LogLevel:    "info",
	}
}

// LoadProfile overlays the YAML display profile at path onto cfg.
// Keys absent from the file keep their current values.
func LoadProfile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse profile %s: %w", path, err)
	}
	return nil
}

// Validate rejects values the renderer cannot work with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.Ratio <= 0 {
		return fmt.Errorf("%w: ratio %v must be positive", ErrInvalid, c.Ratio)
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%w: radius %v must be positive", ErrInvalid, c.Radius)
	}
	if c.LensHeight < 0 {
		return fmt.Errorf("%w: lens height %v must not be negative", ErrInvalid, c.LensHeight)
	}
	if c.Display < 0 {
		return fmt.Errorf("%w: display %d", ErrInvalid, c.Display)
	}
	if c.Mode == media.Video && (c.VideoWidth <= 0 || c.VideoHeight <= 0) {
		return fmt.Errorf("%w: video size %dx%d", ErrInvalid, c.VideoWidth, c.VideoHeight)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Mode == media.Video && !(isPowerOfTwo(c.VideoWidth) && isPowerOfTwo(c.VideoHeight)) {
		slog.Warn("config: video size is not a power of 2", "width", c.VideoWidth, "height", c.VideoHeight)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}
