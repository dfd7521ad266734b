// Package main is the entry point for the panorama tour viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/panorama/internal/app"
	"github.com/Faultbox/panorama/internal/config"
	"github.com/Faultbox/panorama/internal/logger"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if path := config.WriteConfigPath(); path != "" {
		if err := cfg.SaveTo(path); err != nil {
			fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg.Tour.Path, err = resolveTour(cfg.Tour.Path)
	if err != nil {
		logger.Error("no tour to show", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("=== Panorama ===", zap.String("tour", cfg.Tour.Path))
	logger.Debug("viewer settings",
		zap.Strings("asset_roots", cfg.Tour.AssetRoots),
		zap.Int("width", cfg.Graphics.Width),
		zap.Int("height", cfg.Graphics.Height),
		zap.Float32("fov", cfg.Viewer.FOV),
		zap.Duration("transition", cfg.Viewer.TransitionDuration),
		zap.String("easing", cfg.Viewer.Easing),
		zap.Bool("preload", cfg.Viewer.Preload),
		zap.Bool("audio", cfg.Audio.Enabled),
	)

	a, err := app.New(cfg)
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	if err := a.Run(); err != nil {
		logger.Error("viewer error", zap.Error(err))
		a.Close()
		logger.Sync()
		os.Exit(1)
	}

	a.Close()
	logger.Info("viewer closed normally")
}
