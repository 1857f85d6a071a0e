// Package maze loads and validates the static maze layout: walls, finish zone,
// ball radius and screen size. A Maze never changes after it is built.
package maze

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"chosenoffset.com/labyrinth/internal/core/geom"
)

// ErrInvalidConfig marks a maze that cannot be played. It indicates broken
// content, not a runtime condition.
var ErrInvalidConfig = errors.New("invalid maze configuration")

// StartOffset is how far below the top edge the ball's rim starts.
const StartOffset = 50.0

// Maze represents a loaded maze layout
type Maze struct {
	Name       string        `json:"name" yaml:"name"`
	Screen     geom.Size     `json:"screen" yaml:"screen"`
	BallRadius float64       `json:"ball_radius" yaml:"ball_radius"`
	Finish     geom.Rect     `json:"finish" yaml:"finish"`
	Walls      []geom.Rect   `json:"walls" yaml:"walls"`
	Start      *geom.Vector2 `json:"start,omitempty" yaml:"start,omitempty"` // optional, defaults to top center
}

// Load reads a maze from a JSON or YAML file, chosen by extension
func Load(path string) (*Maze, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read maze file %s: %w", path, err)
	}

	var m *Maze
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		m, err = ParseYAML(data)
	default:
		m, err = ParseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load maze file %s: %w", path, err)
	}
	return m, nil
}

// ParseJSON decodes and validates a JSON maze
func ParseJSON(data []byte) (*Maze, error) {
	var m Maze
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse maze: %w", err)
	}
	return build(m)
}

// ParseYAML decodes and validates a YAML maze
func ParseYAML(data []byte) (*Maze, error) {
	var m Maze
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse maze: %w", err)
	}
	return build(m)
}

// New validates m and returns an independent copy of it
func New(m Maze) (*Maze, error) {
	return build(m)
}

func build(m Maze) (*Maze, error) {
	out := m
	out.Walls = append([]geom.Rect(nil), m.Walls...)
	if m.Start != nil {
		start := *m.Start
		out.Start = &start
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate checks that the maze can be played
func (m *Maze) Validate() error {
	r := m.BallRadius
	if !(r > 0) || math.IsInf(r, 0) {
		return fmt.Errorf("%w: ball radius must be positive, got %v", ErrInvalidConfig, r)
	}

	w, h := m.Screen.Width, m.Screen.Height
	if !(w > 0) || !(h > 0) || math.IsInf(w, 0) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: invalid screen size %vx%v", ErrInvalidConfig, w, h)
	}
	if w < 2*r || h < 2*r {
		return fmt.Errorf("%w: screen %vx%v cannot fit a ball of radius %v", ErrInvalidConfig, w, h, r)
	}

	if err := m.Finish.Validate(); err != nil {
		return fmt.Errorf("%w: finish zone: %v", ErrInvalidConfig, err)
	}

	for i, wall := range m.Walls {
		if err := wall.Validate(); err != nil {
			return fmt.Errorf("%w: wall %d: %v", ErrInvalidConfig, i, err)
		}
	}

	// The default start sits StartOffset below the top edge, so a short screen
	// can push it out of the playable area too.
	start := m.StartPosition()
	if !start.IsFinite() || !m.Screen.Bounds().Inset(r).Contains(start) {
		return fmt.Errorf("%w: start %v is outside the playable area", ErrInvalidConfig, start)
	}

	return nil
}

// StartPosition returns where the ball waits during the countdown: the
// configured start, or the horizontal center BallRadius+StartOffset from the top.
func (m *Maze) StartPosition() geom.Vector2 {
	if m.Start != nil {
		return *m.Start
	}
	return geom.Vector2{X: m.Screen.Width / 2, Y: m.BallRadius + StartOffset}
}

// WallsCopy returns the walls in their configured order
func (m *Maze) WallsCopy() []geom.Rect {
	return append([]geom.Rect(nil), m.Walls...)
}
