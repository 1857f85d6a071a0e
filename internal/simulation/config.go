// Package simulation provides configuration for the game simulation rules.
// These rules are loaded from a YAML file so a maze can be tuned without a rebuild.
package simulation

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/labyrinth/internal/core/gamestate"
	"chosenoffset.com/labyrinth/internal/core/motion"
	"chosenoffset.com/labyrinth/internal/logger"
)

// ErrInvalidConfig marks a configuration that cannot run the game.
var ErrInvalidConfig = errors.New("invalid simulation config")

// Input source names
const (
	SourceKeyboard = "keyboard"
	SourceGamepad  = "gamepad"
	SourceRemote   = "remote"
)

// Config holds all simulation rules for a game
type Config struct {
	// Maze file to load; empty means the built-in layout
	MazePath string `yaml:"maze"`

	Tuning    TuningConfig    `yaml:"tuning"`
	Countdown CountdownConfig `yaml:"countdown"`
	Input     InputConfig     `yaml:"input"`
	Window    WindowConfig    `yaml:"window"`
	Log       logger.Config   `yaml:"log"`
}

// TuningConfig defines how tilt becomes motion
type TuningConfig struct {
	MaxSpeed     float64 `yaml:"max_speed"`      // gain applied to calibrated tilt (e.g., 6)
	DeadZone     float64 `yaml:"dead_zone"`      // per-axis jitter threshold (e.g., 0.1)
	SampleRateHz float64 `yaml:"sample_rate_hz"` // sensor sampling rate
	Sensitivity  float64 `yaml:"sensitivity"`    // extra multiplier applied by the game loop
}

// CountdownConfig defines the pre-run countdown
type CountdownConfig struct {
	From     int           `yaml:"from"`
	Interval time.Duration `yaml:"interval"`
}

// InputConfig selects and configures the orientation source
type InputConfig struct {
	Source     string  `yaml:"source"`      // keyboard, gamepad or remote
	KeyTilt    float64 `yaml:"key_tilt"`    // simulated gravity per held key
	RemoteAddr string  `yaml:"remote_addr"` // listen address for the phone controller
}

// WindowConfig defines the desktop window
type WindowConfig struct {
	Title string  `yaml:"title"`
	Scale float64 `yaml:"scale"` // window pixels per maze unit
}

// DefaultConfig returns the reference tuning with keyboard input
func DefaultConfig() *Config {
	tuning := motion.DefaultTuning()
	loop := gamestate.DefaultConfig()
	return &Config{
		Tuning: TuningConfig{
			MaxSpeed:     tuning.MaxSpeed,
			DeadZone:     tuning.DeadZone,
			SampleRateHz: tuning.SampleRate,
			Sensitivity:  loop.Sensitivity,
		},
		Countdown: CountdownConfig{
			From:     loop.CountdownFrom,
			Interval: loop.CountdownInterval,
		},
		Input: InputConfig{
			Source:     SourceKeyboard,
			KeyTilt:    0.5,
			RemoteAddr: ":8080",
		},
		Window: WindowConfig{
			Title: "Labyrinth",
			Scale: 1,
		},
		Log: logger.DefaultConfig(),
	}
}

// LoadConfig loads simulation config from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Return defaults if file doesn't exist
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read simulation config: %w", err)
	}

	config := DefaultConfig() // Start with defaults
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse simulation config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// ApplyEnv overrides fields from LABYRINTH_* environment variables
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}

	if v := getenv("LABYRINTH_MAZE"); v != "" {
		c.MazePath = v
	}
	if v := getenv("LABYRINTH_INPUT"); v != "" {
		c.Input.Source = v
	}
	if v := getenv("LABYRINTH_REMOTE_ADDR"); v != "" {
		c.Input.RemoteAddr = v
	}
	if v := getenv("LABYRINTH_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("LABYRINTH_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("LABYRINTH_SENSITIVITY"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: LABYRINTH_SENSITIVITY: %v", ErrInvalidConfig, err)
		}
		c.Tuning.Sensitivity = f
	}

	return c.Validate()
}

// Validate checks the values the rest of the game depends on
func (c *Config) Validate() error {
	if err := c.MotionTuning().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.LoopConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	// The frame loop runs at the sample rate and ebiten needs at least one tick per second.
	if c.Tuning.SampleRateHz < 1 {
		return fmt.Errorf("%w: sample rate must be at least 1 Hz, got %v", ErrInvalidConfig, c.Tuning.SampleRateHz)
	}

	switch c.Input.Source {
	case SourceKeyboard, SourceGamepad, SourceRemote:
	default:
		return fmt.Errorf("%w: unknown input source %q", ErrInvalidConfig, c.Input.Source)
	}
	if c.Input.KeyTilt <= 0 || c.Input.KeyTilt > 1 {
		return fmt.Errorf("%w: key tilt must be in (0, 1], got %v", ErrInvalidConfig, c.Input.KeyTilt)
	}
	if c.Window.Scale <= 0 {
		return fmt.Errorf("%w: window scale must be positive, got %v", ErrInvalidConfig, c.Window.Scale)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return nil
}

// MotionTuning converts the tuning section for motion.NewProcessor
func (c *Config) MotionTuning() motion.Tuning {
	return motion.Tuning{
		MaxSpeed:   c.Tuning.MaxSpeed,
		DeadZone:   c.Tuning.DeadZone,
		SampleRate: c.Tuning.SampleRateHz,
	}
}

// TicksPerSecond returns the frame rate, which follows the sample rate so every
// frame sees at most one new sample.
func (c *Config) TicksPerSecond() int {
	return int(math.Round(c.Tuning.SampleRateHz))
}

// LoopConfig converts the countdown and sensitivity settings for gamestate.New
func (c *Config) LoopConfig() gamestate.Config {
	return gamestate.Config{
		CountdownFrom:     c.Countdown.From,
		CountdownInterval: c.Countdown.Interval,
		Sensitivity:       c.Tuning.Sensitivity,
	}
}
