package main

import (
	"errors"
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/simulation"
	"github.com/tochemey/goakt/v3/log"
)

func main() {
	configFile := flag.String("config", "settings.json", "settings file (.json or .yaml), saved whenever the panel changes")
	debug := flag.Bool("debug", false, "log per-second tick stats")
	flag.Parse()

	level := log.InfoLevel
	if *debug {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	cfg, err := simulation.LoadConfig(*configFile)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Infof("No settings at %s, starting from defaults", *configFile)
		cfg = simulation.DefaultConfig()
	case err != nil:
		logger.Fatalf("Bad settings file %s: %v", *configFile, err)
	}

	game, err := NewGame(cfg, *configFile, logger)
	if err != nil {
		logger.Fatal(err)
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids")
	if err := ebiten.RunGame(game); err != nil {
		logger.Fatal(err)
	}
}
