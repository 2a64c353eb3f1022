package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"

	"github.com/chazu/spatia/internal/config"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	// The IDE takes no arguments; SPATIA_CONFIG points at an optional YAML file.
	cfg, err := config.Load(os.Getenv("SPATIA_CONFIG"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := config.NewLogger(cfg.Log.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	app := NewAppWithConfig(cfg, logger)

	err = wails.Run(&options.App{
		Title:  "spatia",
		Width:  1280,
		Height: 800,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		OnStartup: app.startup,
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Fatal("wails run failed", zap.Error(err))
	}
}
