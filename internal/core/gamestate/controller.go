// Package gamestate drives one run through the maze: the start countdown, the
// per-sample motion loop and the win condition.
package gamestate

import (
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/labyrinth/internal/core/collision"
	"chosenoffset.com/labyrinth/internal/core/geom"
	"chosenoffset.com/labyrinth/internal/core/motion"
	"chosenoffset.com/labyrinth/internal/core/sched"
	"chosenoffset.com/labyrinth/internal/logger"
	"chosenoffset.com/labyrinth/internal/world/maze"
)

// ErrInvalidConfig is returned by New for unusable loop settings.
var ErrInvalidConfig = errors.New("invalid game loop configuration")

// inboxSize bounds the displacements waiting for the game thread. At 60 Hz this
// is several seconds of input.
const inboxSize = 256

// MotionInput is the part of motion.Processor the controller drives.
type MotionInput interface {
	Start()
	Stop()
	Session() uint64
	SetConsumer(fn func(motion.Displacement))
}

// Config holds the loop timing and the sensitivity multiplier
type Config struct {
	CountdownFrom     int           // first number shown, counts down to 1
	CountdownInterval time.Duration // time between countdown numbers
	Sensitivity       float64       // multiplier applied to every displacement
}

// DefaultConfig returns a three second countdown and unit sensitivity
func DefaultConfig() Config {
	return Config{
		CountdownFrom:     3,
		CountdownInterval: time.Second,
		Sensitivity:       1,
	}
}

// Validate checks the loop settings
func (c Config) Validate() error {
	if c.CountdownFrom < 1 {
		return fmt.Errorf("%w: countdown must start at 1 or more, got %d", ErrInvalidConfig, c.CountdownFrom)
	}
	if c.CountdownInterval <= 0 {
		return fmt.Errorf("%w: countdown interval must be positive, got %v", ErrInvalidConfig, c.CountdownInterval)
	}
	if math.IsNaN(c.Sensitivity) || math.IsInf(c.Sensitivity, 0) {
		return fmt.Errorf("%w: sensitivity %v", ErrInvalidConfig, c.Sensitivity)
	}
	return nil
}

// Result summarizes a finished run
type Result struct {
	Elapsed time.Duration // time from the end of the countdown to the goal
	Samples int           // displacements applied during the run
}

// Controller owns the ball position and the game phase. All of its methods
// and the scheduler it was given must be used from one goroutine, the game
// thread. Motion samples arriving on other goroutines are queued and applied
// by Update.
type Controller struct {
	maze     *maze.Maze
	resolver *collision.Resolver
	input    MotionInput
	sched    *sched.Scheduler
	cfg      Config
	log      *zap.Logger

	inbox chan motion.Displacement

	phase     Phase
	countdown int
	timer     *sched.Timer
	ball      geom.Vector2

	session     uint64
	activeSince time.Duration
	result      Result

	onGoal func(Result)
}

// New creates a controller in Countdown with the ball at the maze start and
// schedules the countdown on s.
func New(m *maze.Maze, input MotionInput, s *sched.Scheduler, cfg Config, log *zap.Logger) (*Controller, error) {
	if m == nil {
		return nil, fmt.Errorf("%w: maze is required", ErrInvalidConfig)
	}
	if input == nil || s == nil {
		return nil, fmt.Errorf("%w: motion input and scheduler are required", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		maze:     m,
		resolver: collision.NewResolver(m),
		input:    input,
		sched:    s,
		cfg:      cfg,
		log:      logger.OrNop(log).Named("gamestate"),
		inbox:    make(chan motion.Displacement, inboxSize),
	}
	input.SetConsumer(c.enqueue)
	c.enterCountdown()
	return c, nil
}

// SetOnGoal registers the callback run once when the ball reaches the finish.
func (c *Controller) SetOnGoal(fn func(Result)) {
	c.onGoal = fn
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	return c.phase
}

// Countdown returns the number currently shown, or 0 outside the countdown.
func (c *Controller) Countdown() int {
	if c.phase != PhaseCountdown {
		return 0
	}
	return c.countdown
}

// Ball returns the ball's center.
func (c *Controller) Ball() geom.Vector2 {
	return c.ball
}

// Maze returns the layout being played.
func (c *Controller) Maze() *maze.Maze {
	return c.maze
}

// Result returns the counters of the current run. Elapsed is filled in when
// the run is won.
func (c *Controller) Result() Result {
	return c.result
}

// Elapsed returns the time spent in the active phase of the current run.
func (c *Controller) Elapsed() time.Duration {
	switch c.phase {
	case PhaseActive:
		return c.sched.Now() - c.activeSince
	case PhaseWon:
		return c.result.Elapsed
	default:
		return 0
	}
}

// Reset abandons the current run and starts a new countdown with the ball
// back at the start.
func (c *Controller) Reset() {
	if c.phase == PhaseActive {
		c.input.Stop()
	}
	c.log.Info("reset", zap.Stringer("from", c.phase))
	c.enterCountdown()
}

// Update applies every queued displacement. Call it once per frame from the
// game thread.
func (c *Controller) Update() {
	for {
		select {
		case d := <-c.inbox:
			c.apply(d)
		default:
			return
		}
	}
}

// enqueue is the motion consumer. It may run on any goroutine.
func (c *Controller) enqueue(d motion.Displacement) {
	select {
	case c.inbox <- d:
	default:
		// The game thread is stalled; dropping keeps the sensor goroutine moving.
		c.log.Debug("inbox full, dropping displacement", zap.Uint64("session", d.Session))
	}
}

func (c *Controller) apply(d motion.Displacement) {
	if c.phase != PhaseActive || d.Session != c.session {
		return
	}

	next, goal := c.resolver.Resolve(c.ball, d.Vector.Scale(c.cfg.Sensitivity))
	c.ball = next
	c.result.Samples++

	if goal {
		c.win()
	}
}

func (c *Controller) enterCountdown() {
	if c.timer != nil {
		c.timer.Stop()
	}
	c.drain()
	c.phase = PhaseCountdown
	c.countdown = c.cfg.CountdownFrom
	c.ball = c.maze.StartPosition()
	c.result = Result{}
	c.timer = c.sched.Every(c.cfg.CountdownInterval, c.tick)
}

func (c *Controller) tick() {
	if c.phase != PhaseCountdown {
		return
	}
	if c.countdown > 1 {
		c.countdown--
		return
	}

	c.timer.Stop()
	c.timer = nil
	c.phase = PhaseActive
	c.activeSince = c.sched.Now()
	c.input.Start()
	c.session = c.input.Session()
	c.log.Info("run started", zap.String("maze", c.maze.Name), zap.Uint64("session", c.session))
}

func (c *Controller) win() {
	c.phase = PhaseWon
	c.input.Stop()
	c.result.Elapsed = c.sched.Now() - c.activeSince
	c.drain()

	c.log.Info("goal reached",
		zap.Duration("elapsed", c.result.Elapsed),
		zap.Int("samples", c.result.Samples),
		zap.Float64("x", c.ball.X),
		zap.Float64("y", c.ball.Y))

	if c.onGoal != nil {
		c.onGoal(c.result)
	}
}

func (c *Controller) drain() {
	for {
		select {
		case <-c.inbox:
		default:
			return
		}
	}
}
