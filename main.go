package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/soocke/smile-tracker-go/app"
	"github.com/soocke/smile-tracker-go/config"
	"github.com/soocke/smile-tracker-go/ui/theme"
)

const (
	flagConfig      = "config"
	flagDebug       = "debug"
	flagSource      = "source"
	flagOrientation = "orientation"
	flagDark        = "dark"
)

func main() {
	cliApp := &cli.App{
		Name:  "smile-tracker",
		Usage: "overlay detected faces on a live preview and check them for smiles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    flagConfig,
				Aliases: []string{"c"},
				Value:   "config.json",
				Usage:   "Load configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging and runtime metrics",
			},
			&cli.StringFlag{
				Name:  flagSource,
				Usage: "frame source: camera or screen",
			},
			&cli.StringFlag{
				Name:  flagOrientation,
				Usage: "display orientation: landscape, portrait, landscape-flipped, portrait-flipped",
			},
			&cli.BoolFlag{
				Name:  flagDark,
				Usage: "use the dark theme",
			},
		},
		Action: run,
	}
	if err := cliApp.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	cfgPath := c.String(flagConfig)
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	if c.IsSet(flagDebug) {
		cfg.Debug = c.Bool(flagDebug)
	}
	if c.IsSet(flagSource) {
		cfg.Source = c.String(flagSource)
	}
	if c.IsSet(flagOrientation) {
		cfg.Orientation = c.String(flagOrientation)
	}
	_ = cfg.Validate()

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	logger.Info("starting", "config", cfgPath, "source", cfg.Source, "orientation", cfg.Orientation)

	application := app.NewApp("Smile Tracker", 900, 720, cfg, cfgPath, logger)
	if c.Bool(flagDark) {
		theme.SetDark(true)
	}
	application.Start()
	return nil
}
