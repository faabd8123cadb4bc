// Package config loads the engine's TOML configuration and watches it for changes.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/Carmen-Shannon/skygen/engine/renderer/device"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// Config is the root of the TOML document.
type Config struct {
	Window   Window   `toml:"window"`
	Renderer Renderer `toml:"renderer"`
	Engine   Engine   `toml:"engine"`
	Log      Log      `toml:"log"`
}

// Window configures the platform window.
type Window struct {
	Title     string `toml:"title"`
	Width     int    `toml:"width"`
	Height    int    `toml:"height"`
	Resizable bool   `toml:"resizable"`
}

// Renderer configures the device.
type Renderer struct {
	// PresentMode is "vsync" or "uncapped".
	PresentMode string `toml:"present_mode"`
	// MSAA is the sample count, 1 or 4.
	MSAA            int        `toml:"msaa"`
	ForceSoftware   bool       `toml:"force_software"`
	HighPerformance bool       `toml:"high_performance"`
	Features        []string   `toml:"features"`
	ClearColor      [4]float64 `toml:"clear_color"`
}

// Engine configures the frame loop.
type Engine struct {
	// TickRate caps frames per second. Zero is uncapped.
	TickRate  float64 `toml:"tick_rate"`
	Profiling bool    `toml:"profiling"`
	// Workers bounds the system scheduler's pool. Zero uses GOMAXPROCS.
	Workers int `toml:"workers"`
}

// Log configures the process logger.
type Log struct {
	// Level is one of debug, info, warn, error or fatal.
	Level string `toml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Window: Window{Title: "skygen", Width: 1280, Height: 720, Resizable: true},
		Renderer: Renderer{
			PresentMode: "vsync",
			MSAA:        4,
			ClearColor:  [4]float64{0.1, 0.1, 0.12, 1},
		},
		Engine: Engine{TickRate: 0},
		Log:    Log{Level: "info"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
//
// Parameters:
//   - path: the TOML file
//
// Returns:
//   - Config: the merged, validated configuration
//   - error: a read, decode or validation error
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result.
//
// Parameters:
//   - data: the TOML document
//
// Returns:
//   - Config: the merged, validated configuration
//   - error: a decode or validation error
func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return Config{}, fmt.Errorf("%w: %s", ErrInvalid, strict.String())
		}
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if _, ok := device.ParsePresentMode(c.Renderer.PresentMode); !ok {
		errs = append(errs, fmt.Errorf("unknown present_mode %q", c.Renderer.PresentMode))
	}
	if c.Renderer.MSAA != 1 && c.Renderer.MSAA != 4 {
		errs = append(errs, fmt.Errorf("msaa must be 1 or 4, got %d", c.Renderer.MSAA))
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			errs = append(errs, fmt.Errorf("clear_color[%d] = %g outside [0, 1]", i, v))
		}
	}
	if c.Engine.TickRate < 0 {
		errs = append(errs, fmt.Errorf("tick_rate %g must not be negative", c.Engine.TickRate))
	}
	if c.Engine.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers %d must not be negative", c.Engine.Workers))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error", "fatal":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// DeviceOptions translates the renderer section into device options.
func (c Config) DeviceOptions() []device.WGPUOption {
	mode, _ := device.ParsePresentMode(c.Renderer.PresentMode)
	msaa := device.MSAAOff
	if c.Renderer.MSAA == 4 {
		msaa = device.MSAA4x
	}
	cc := c.Renderer.ClearColor
	return []device.WGPUOption{
		device.WithPresentMode(mode),
		device.WithMSAA(msaa),
		device.WithForceSoftwareRenderer(c.Renderer.ForceSoftware),
		device.WithHighPerformance(c.Renderer.HighPerformance),
		device.WithFeatures(c.Renderer.Features...),
		device.WithClearColor(wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}),
	}
}
