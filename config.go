package riftplot

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Config holds all riftplot settings.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Editor     EditorConfig     `yaml:"editor"`
	Camera     CameraConfig     `yaml:"camera"`
	Stereo     StereoConfig     `yaml:"stereo"`
	Controls   ControlsConfig   `yaml:"controls"`
	Render     RenderConfig     `yaml:"render"`
	Screenshot ScreenshotConfig `yaml:"screenshot"`
}

// WindowConfig configures the desktop window.
type WindowConfig struct {
	Title  string `yaml:"title"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// EditorConfig configures source handling.
type EditorConfig struct {
	// Debounce is the quiet period before re-evaluation, e.g. "1s".
	Debounce string `yaml:"debounce"`
	// Source is the scene file to load and, when Watch is set, follow.
	Source string `yaml:"source"`
	Watch  bool   `yaml:"watch"`
}

// CameraConfig configures the perspective camera.
type CameraConfig struct {
	Fov      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
	Position [3]float64 `yaml:"position,flow"`
}

// StereoConfig configures the stereo presentation.
type StereoConfig struct {
	Enabled       bool    `yaml:"enabled"`
	EyeSeparation float64 `yaml:"eye_separation"`
}

// ControlsConfig configures camera input.
type ControlsConfig struct {
	RotateSpeed  float64 `yaml:"rotate_speed"`
	ZoomSpeed    float64 `yaml:"zoom_speed"`
	Damping      float64 `yaml:"damping"`
	HeadTracking bool    `yaml:"head_tracking"`
}

// RenderConfig configures drawing.
type RenderConfig struct {
	ClearColor string  `yaml:"clear_color"`
	Antialias  bool    `yaml:"antialias"`
	LabelSize  float64 `yaml:"label_size"`
	HUD        bool    `yaml:"hud"`
}

// ScreenshotConfig configures screenshot output.
type ScreenshotConfig struct {
	Dir string `yaml:"dir"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "riftplot",
			Width:  1280,
			Height: 720,
		},
		Editor: EditorConfig{
			Debounce: DefaultDebounce.String(),
			Watch:    true,
		},
		Camera: CameraConfig{
			Fov:      DefaultFov,
			Near:     DefaultNear,
			Far:      DefaultFar,
			Position: [3]float64(DefaultCameraPosition),
		},
		Stereo: StereoConfig{
			Enabled:       true,
			EyeSeparation: DefaultEyeSeparation,
		},
		Controls: ControlsConfig{
			RotateSpeed:  DefaultRotateSpeed,
			ZoomSpeed:    DefaultZoomSpeed,
			Damping:      DefaultDamping,
			HeadTracking: true,
		},
		Render: RenderConfig{
			ClearColor: "#ffffff",
			Antialias:  true,
			LabelSize:  14,
			HUD:        true,
		},
		Screenshot: ScreenshotConfig{
			Dir: "screenshots",
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults. Environment overrides are applied in both cases.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML, creating the directory if needed.
func (c *Config) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies RIFTPLOT_DEBOUNCE and RIFTPLOT_STEREO.
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("RIFTPLOT_DEBOUNCE"); v != "" {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("RIFTPLOT_DEBOUNCE: %w", err)
		}
		c.Editor.Debounce = v
	}
	if v := os.Getenv("RIFTPLOT_STEREO"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("RIFTPLOT_STEREO: %w", err)
		}
		c.Stereo.Enabled = b
	}
	return nil
}

// DebounceWindow returns the parsed debounce duration, falling back to
// DefaultDebounce when unset or invalid.
func (c *Config) DebounceWindow() time.Duration {
	d, err := time.ParseDuration(c.Editor.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// RenderStyle returns the render settings as a RenderStyle. An invalid
// clear color falls back to white.
func (c *Config) RenderStyle() RenderStyle {
	style := DefaultRenderStyle()
	if clr, err := ParseColor(c.Render.ClearColor); err == nil {
		style.ClearColor = clr
	}
	style.Antialias = c.Render.Antialias
	if c.Render.LabelSize > 0 {
		style.LabelSize = c.Render.LabelSize
	}
	return style
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if d, err := time.ParseDuration(c.Editor.Debounce); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("editor.debounce: %w", err))
	} else if d <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("editor.debounce %v must be positive", d))
	}
	if c.Camera.Fov <= 0 || c.Camera.Fov >= 180 {
		errs = multierr.Append(errs, fmt.Errorf("camera.fov %v must be in (0, 180)", c.Camera.Fov))
	}
	if c.Camera.Near <= 0 || c.Camera.Far <= c.Camera.Near {
		errs = multierr.Append(errs, fmt.Errorf("camera near %v / far %v: need 0 < near < far", c.Camera.Near, c.Camera.Far))
	}
	if c.Stereo.EyeSeparation < 0 {
		errs = multierr.Append(errs, fmt.Errorf("stereo.eye_separation %v must not be negative", c.Stereo.EyeSeparation))
	}
	if c.Controls.Damping < 0 || c.Controls.Damping > 1 {
		errs = multierr.Append(errs, fmt.Errorf("controls.damping %v must be in [0, 1]", c.Controls.Damping))
	}
	if _, err := ParseColor(c.Render.ClearColor); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("render.clear_color: %w", err))
	}
	return errs
}
