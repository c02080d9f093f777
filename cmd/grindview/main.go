package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/grindkit/config"
	"github.com/milk9111/grindkit/logging"
	"github.com/milk9111/grindkit/scene"
	"github.com/milk9111/grindkit/sim"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "yaml config file (embedded defaults when empty)")
	scenePath := flag.String("scene", "", "scene yaml (embedded park scene when empty)")
	manual := flag.Bool("manual", false, "drive the first rider from the keyboard instead of its script")
	zoom := flag.Float64("zoom", 8, "pixels per world unit")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	sc, err := scene.Load(*scenePath)
	if err != nil {
		logger.Fatal("load scene", zap.Error(err))
	}
	world, err := sim.FromScene(cfg, sc, sim.WithLogger(logger))
	if err != nil {
		logger.Fatal("build world", zap.Error(err))
	}

	game := newViewer(world, *zoom, *manual)

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("grindview - " + sc.Name)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal("run", zap.Error(err))
	}
}
