// Package game is the presentation layer: it drives the game loop controller
// from the engine's frame callbacks and draws the maze.
package game

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"chosenoffset.com/labyrinth/internal/core/gamestate"
	"chosenoffset.com/labyrinth/internal/core/sched"
	"chosenoffset.com/labyrinth/internal/render"
)

// Poller is a motion source that is pumped from the frame loop.
type Poller interface {
	Poll(dt time.Duration)
}

// Game holds the running round and everything needed to present it.
type Game struct {
	Renderer render.Renderer
	InputMgr render.InputManager

	ctrl   *gamestate.Controller
	sched  *sched.Scheduler
	poller Poller
	frame  time.Duration
	log    *zap.Logger

	// Last finished round, shown on the win screen.
	lastResult *gamestate.Result

	// Debug
	FrameCount int
}

// New creates the presentation for ctrl. The scheduler is advanced by one
// frame, 1/tps seconds, on every Update.
func New(r render.Renderer, input render.InputManager, ctrl *gamestate.Controller, s *sched.Scheduler, tps int, log *zap.Logger) (*Game, error) {
	if r == nil || input == nil {
		return nil, errors.New("game: renderer and input manager are required")
	}
	if ctrl == nil || s == nil {
		return nil, errors.New("game: controller and scheduler are required")
	}
	if tps <= 0 {
		return nil, errors.New("game: ticks per second must be positive")
	}
	if log == nil {
		log = zap.NewNop()
	}

	g := &Game{
		Renderer: r,
		InputMgr: input,
		ctrl:     ctrl,
		sched:    s,
		frame:    time.Second / time.Duration(tps),
		log:      log.Named("game"),
	}
	ctrl.SetOnGoal(g.onGoal)
	return g, nil
}

// SetPoller sets a source that must be polled every frame.
func (g *Game) SetPoller(p Poller) {
	g.poller = p
}

// Controller returns the game loop controller.
func (g *Game) Controller() *gamestate.Controller {
	return g.ctrl
}

// Update handles one frame: input, scheduled timers, then motion.
func (g *Game) Update() error {
	g.FrameCount++

	if g.InputMgr.IsKeyJustPressed(render.KeyEscape) {
		return render.ErrQuit
	}
	if g.InputMgr.IsKeyJustPressed(render.KeyR) {
		g.restart()
		return nil
	}
	if g.ctrl.Phase() == gamestate.PhaseWon && g.playAgainPressed() {
		g.restart()
		return nil
	}

	if g.poller != nil {
		g.poller.Poll(g.frame)
	}
	g.sched.Advance(g.frame)
	g.ctrl.Update()
	return nil
}

// Layout keeps the logical screen at the maze's size and lets the engine scale it.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	screen := g.ctrl.Maze().Screen
	return int(screen.Width), int(screen.Height)
}

func (g *Game) playAgainPressed() bool {
	return g.InputMgr.IsKeyJustPressed(render.KeySpace) ||
		g.InputMgr.IsKeyJustPressed(render.KeyEnter) ||
		g.InputMgr.IsMouseButtonJustPressed(render.MouseButtonLeft)
}

func (g *Game) restart() {
	g.lastResult = nil
	g.ctrl.Reset()
	g.log.Debug("round restarted", zap.Int("frame", g.FrameCount))
}

func (g *Game) onGoal(res gamestate.Result) {
	g.lastResult = &res
}
