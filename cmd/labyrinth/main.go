package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"chosenoffset.com/labyrinth/internal/core/gamestate"
	"chosenoffset.com/labyrinth/internal/core/motion"
	"chosenoffset.com/labyrinth/internal/core/sched"
	"chosenoffset.com/labyrinth/internal/game"
	"chosenoffset.com/labyrinth/internal/input"
	"chosenoffset.com/labyrinth/internal/input/remote"
	"chosenoffset.com/labyrinth/internal/logger"
	ebitenrender "chosenoffset.com/labyrinth/internal/render/ebiten"
	"chosenoffset.com/labyrinth/internal/simulation"
	"chosenoffset.com/labyrinth/internal/world/maze"
)

func main() {
	configPath := flag.String("config", "data/labyrinth.yaml", "simulation config file")
	mazePath := flag.String("maze", "", "maze file (.json or .yaml) or name in -mazes, overrides the config")
	mazeDir := flag.String("mazes", "data/mazes", "directory of bundled mazes")
	list := flag.Bool("list", false, "list the mazes in -mazes and exit")
	source := flag.String("input", "", "orientation source: keyboard, gamepad or remote")
	flag.Parse()

	if *list {
		entries, err := maze.Scan(*mazeDir)
		if err != nil {
			log.Fatalf("Failed to scan mazes: %v", err)
		}
		for _, e := range entries {
			fmt.Printf("%-20s %s\n", e.Name, e.Path)
		}
		return
	}

	// A .env file is optional.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load .env: %v", err)
	}

	cfg, err := simulation.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		log.Fatalf("Bad environment: %v", err)
	}
	if *mazePath != "" {
		cfg.MazePath = *mazePath
	}
	if *source != "" {
		cfg.Input.Source = *source
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Bad config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	if err := run(cfg, *mazeDir, zl); err != nil {
		zl.Error("labyrinth exited with error", zap.Error(err))
		_ = zl.Sync()
		os.Exit(1)
	}
}

func run(cfg *simulation.Config, mazeDir string, zl *zap.Logger) error {
	m, err := loadMaze(mazeDir, cfg.MazePath)
	if err != nil {
		return err
	}
	zl.Info("maze loaded",
		zap.String("name", m.Name),
		zap.Int("walls", len(m.Walls)),
		zap.Float64("width", m.Screen.Width),
		zap.Float64("height", m.Screen.Height))

	// Initialize the renderer backend (ebiten)
	renderer := ebitenrender.NewRenderer()
	inputMgr := ebitenrender.NewInputManager()
	engine := ebitenrender.NewEngine()

	var (
		src       motion.Source
		poller    game.Poller
		remoteSrc *remote.Source
	)
	switch cfg.Input.Source {
	case simulation.SourceKeyboard, simulation.SourceGamepad:
		mode := input.ModeKeyboard
		if cfg.Input.Source == simulation.SourceGamepad {
			mode = input.ModeGamepad
		}
		d := input.NewDeviceSource(inputMgr, mode, cfg.Input.KeyTilt)
		src, poller = d, d
	case simulation.SourceRemote:
		remoteSrc = remote.New(cfg.Input.RemoteAddr, zl)
		if err := remoteSrc.Listen(); err != nil {
			// The processor treats an unbound source as missing and the ball stays still.
			zl.Warn("phone controller unavailable", zap.Error(err))
		}
		src = remoteSrc
	}

	proc, err := motion.NewProcessor(src, cfg.MotionTuning(), zl)
	if err != nil {
		return err
	}
	s := sched.New()
	ctrl, err := gamestate.New(m, proc, s, cfg.LoopConfig(), zl)
	if err != nil {
		return err
	}

	tps := cfg.TicksPerSecond()
	g, err := game.New(renderer, inputMgr, ctrl, s, tps, zl)
	if err != nil {
		return err
	}
	if poller != nil {
		g.SetPoller(poller)
	}

	// Set up the window
	engine.SetWindowSize(int(m.Screen.Width*cfg.Window.Scale), int(m.Screen.Height*cfg.Window.Scale))
	engine.SetWindowTitle(fmt.Sprintf("%s - %s", cfg.Window.Title, m.Name))
	engine.SetWindowResizable(true)
	engine.SetTPS(tps)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	if remoteSrc != nil && remoteSrc.Available() {
		eg.Go(func() error { return remoteSrc.Serve(ctx) })
	}

	zl.Info("starting game", zap.String("input", cfg.Input.Source), zap.Int("tps", tps))
	runErr := engine.RunGame(g)

	cancel()
	proc.Stop()
	if err := eg.Wait(); err != nil {
		zl.Warn("phone controller shutdown", zap.Error(err))
	}
	return runErr
}

// loadMaze returns the built-in layout when ref is empty.
func loadMaze(dir, ref string) (*maze.Maze, error) {
	if ref == "" {
		return maze.Classic(), nil
	}
	path, err := maze.Resolve(dir, ref)
	if err != nil {
		return nil, err
	}
	return maze.Load(path)
}
