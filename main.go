package main

import (
	"flag"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/modular/config"
	"github.com/milk9111/modular/logging"
)

func main() {
	configDir := flag.String("config", ".", "directory holding modular.yaml")
	scheme := flag.String("scheme", "", "ship scheme to fly (overrides scheme.file)")
	debug := flag.Bool("debug", false, "start with physics debug drawing")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*configDir)
	if err != nil {
		l := logging.Console("info")
		l.Fatal().Err(err).Msg("config")
	}
	if *scheme != "" {
		cfg.Scheme.File = *scheme
	}

	log := logging.Console(cfg.Log.Level)
	if !cfg.Log.Console {
		log = logging.New(os.Stderr, cfg.Log.Level)
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1280, 720)
	ebiten.SetWindowTitle("modular")

	game, err := NewGame(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("start")
	}
	defer game.Close()
	if *debug {
		game.debug = debugShapes
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Error().Err(err).Msg("run")
	}
}
