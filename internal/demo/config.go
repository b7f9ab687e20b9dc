package demo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/gogpu/imdraw"
	"github.com/gogpu/imdraw/render"
)

// ErrUnknownFormat is returned for config files that are neither YAML nor
// TOML.
var ErrUnknownFormat = errors.New("demo: unknown config format")

// Duration is a time.Duration written as a string such as "250ms".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// RendererConfig is the renderer section of a scene file. Zero fields keep
// the render defaults.
type RendererConfig struct {
	FramesInFlight int           `yaml:"frames_in_flight" toml:"frames_in_flight"`
	StagingSize    uint64        `yaml:"staging_size" toml:"staging_size"`
	ClearColor     *imdraw.Color `yaml:"clear_color" toml:"clear_color"`
	FenceTimeout   Duration      `yaml:"fence_timeout" toml:"fence_timeout"`
	Label          string        `yaml:"label" toml:"label"`
}

// Options converts the section into renderer options.
func (c RendererConfig) Options() []render.Option {
	var opts []render.Option
	if c.FramesInFlight > 0 {
		opts = append(opts, render.WithFramesInFlight(c.FramesInFlight))
	}
	if c.StagingSize > 0 {
		opts = append(opts, render.WithStagingSize(c.StagingSize))
	}
	if c.ClearColor != nil {
		opts = append(opts, render.WithClearColor(*c.ClearColor))
	}
	if c.FenceTimeout > 0 {
		opts = append(opts, render.WithFenceTimeout(time.Duration(c.FenceTimeout)))
	}
	if c.Label != "" {
		label := c.Label
		opts = append(opts, func(cfg *render.Config) { cfg.Label = label })
	}
	return opts
}

// SceneConfig describes the demo scene.
type SceneConfig struct {
	// Window is the initial window rectangle: x0, y0, x1, y1 in pixels.
	Window  [4]float32   `yaml:"window" toml:"window"`
	Caption string       `yaml:"caption" toml:"caption"`
	Tint    imdraw.Color `yaml:"tint" toml:"tint"`
	Frame   imdraw.Color `yaml:"frame" toml:"frame"`
	Panel   imdraw.Color `yaml:"panel" toml:"panel"`
	Text    imdraw.Color `yaml:"text" toml:"text"`

	Renderer RendererConfig `yaml:"renderer" toml:"renderer"`
}

// DefaultSceneConfig returns the settings of NewScene.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Window:  [4]float32{120, 120, 360, 360},
		Caption: "imdraw",
		Tint:    imdraw.Red,
		Frame:   imdraw.White,
		Panel:   imdraw.Gray,
		Text:    imdraw.White,
	}
}

// Validate checks the window rectangle.
func (c SceneConfig) Validate() error {
	w := c.Window
	if w[0] < 0 || w[1] < 0 || w[2]-w[0] < 2*WindowPadding || w[3]-w[1] < 2*WindowPadding {
		return fmt.Errorf("demo: window %v must be non-negative and at least %d px on each side", w, 2*WindowPadding)
	}
	return nil
}

// Apply copies the settings into s. The window drag state is reset.
func (c SceneConfig) Apply(s *Scene) {
	s.Window.SetBounds(imdraw.R(c.Window[0], c.Window[1], c.Window[2], c.Window[3]))
	s.Caption = c.Caption
	s.Tint, s.Frame, s.Panel, s.Text = c.Tint, c.Frame, c.Panel, c.Text
}

// DecodeConfig decodes a scene file. format is a file extension: ".yaml",
// ".yml" or ".toml". Missing keys keep DefaultSceneConfig values.
func DecodeConfig(data []byte, format string) (SceneConfig, error) {
	cfg := DefaultSceneConfig()
	var err error
	switch strings.ToLower(format) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&cfg)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cfg)
	default:
		return SceneConfig{}, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return SceneConfig{}, fmt.Errorf("demo: decode %s config: %w", format, err)
	}
	if err := cfg.Validate(); err != nil {
		return SceneConfig{}, err
	}
	return cfg, nil
}

// LoadConfig reads and decodes a scene file, choosing the format by
// extension.
func LoadConfig(path string) (SceneConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SceneConfig{}, fmt.Errorf("demo: read config: %w", err)
	}
	return DecodeConfig(data, filepath.Ext(path))
}
