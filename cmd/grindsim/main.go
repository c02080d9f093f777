package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/milk9111/grindkit/config"
	"github.com/milk9111/grindkit/logging"
	"github.com/milk9111/grindkit/scene"
	"github.com/milk9111/grindkit/sim"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "yaml config file (embedded defaults when empty)")
	scenePath := flag.String("scene", "", "scene yaml (embedded park scene when empty)")
	scriptPath := flag.String("script", "", "tengo script driving every agent (overrides the scene)")
	seconds := flag.Float64("seconds", 10, "simulated seconds to run; ignored with -watch")
	frameRate := flag.Float64("fps", 60, "variable-step frame rate")
	watch := flag.Bool("watch", false, "run in real time and reload config, script and scene on change")
	logLevel := flag.String("log-level", "", "override log.level from the config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Encoding)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *frameRate <= 0 {
		logger.Fatal("fps must be > 0", zap.Float64("fps", *frameRate))
	}
	dt := 1 / *frameRate

	world, err := buildWorld(cfg, *scenePath, *scriptPath, logger)
	if err != nil {
		logger.Fatal("build world", zap.Error(err))
	}

	if !*watch {
		frames := int(*seconds / dt)
		for i := 0; i < frames; i++ {
			world.Step(dt)
		}
		summarize(world, logger)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := runWatched(ctx, world, cfg, *cfgPath, *scenePath, *scriptPath, dt, logger); err != nil {
		logger.Fatal("watch", zap.Error(err))
	}
}

func buildWorld(cfg config.Config, scenePath, scriptPath string, logger *zap.Logger) (*sim.World, error) {
	sc, err := scene.Load(scenePath)
	if err != nil {
		return nil, err
	}
	if scriptPath != "" {
		for i := range sc.Agents {
			sc.Agents[i].Script = scriptPath
		}
	}
	w, err := sim.FromScene(cfg, sc, sim.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	st := w.Registry.Stats()
	logger.Info("scene loaded",
		zap.String("scene", sc.Name),
		zap.Int("sources", st.Sources),
		zap.Int("edges", st.Edges),
		zap.Int("surfaces", st.Surfaces),
		zap.Int("colliders", st.Colliders),
		zap.Int("riders", len(w.Riders)))
	return w, nil
}

func runWatched(ctx context.Context, world *sim.World, cfg config.Config, cfgPath, scenePath, scriptPath string, dt float64, logger *zap.Logger) error {
	watcher, err := config.NewWatcher(cfgPath, scenePath, scriptPath)
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs := func(p string) string {
		if p == "" {
			return ""
		}
		a, err := filepath.Abs(p)
		if err != nil {
			return p
		}
		return a
	}
	cfgAbs, sceneAbs, scriptAbs := abs(cfgPath), abs(scenePath), abs(scriptPath)

	ticker := time.NewTicker(time.Duration(dt * float64(time.Second)))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			summarize(world, logger)
			return nil
		case <-ticker.C:
			world.Step(dt)
		case path, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch path {
			case cfgAbs:
				next, err := config.Load(cfgPath)
				if err != nil {
					logger.Warn("config reload rejected", zap.Error(err))
					continue
				}
				cfg = next
				world.ApplyConfig(cfg)
			case scriptAbs:
				n, err := world.ReloadScript(scriptPath)
				if err != nil {
					logger.Warn("script reload rejected", zap.Error(err))
					continue
				}
				logger.Info("script reloaded", zap.Int("riders", n))
			case sceneAbs:
				next, err := buildWorld(cfg, scenePath, scriptPath, logger)
				if err != nil {
					logger.Warn("scene reload rejected", zap.Error(err))
					continue
				}
				world.Registry.Clear()
				world = next
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		}
	}
}

func summarize(w *sim.World, logger *zap.Logger) {
	st := w.Registry.Stats()
	logger.Info("run finished",
		zap.Float64("seconds", w.Time()),
		zap.Int("frames", w.Ticks()),
		zap.Int("edges", st.Edges),
		zap.Int("surfaces", st.Surfaces))
	for _, r := range w.Riders {
		fields := []zap.Field{
			zap.String("rider", r.Name),
			zap.String("state", r.Controller.State().Name()),
			zap.Int("engagements", r.Stats.Engagements),
			zap.Float64("grind_seconds", r.Stats.GrindTime),
			zap.Float64("longest_grind", r.Stats.LongestGrind),
			zap.Float64("max_speed", r.Stats.MaxSpeed),
			logging.Vec("position", r.Body.Position()),
		}
		for reason, n := range r.Stats.Exits {
			fields = append(fields, zap.Int("exits_"+reason.String(), n))
		}
		logger.Info("rider summary", fields...)
	}
}
