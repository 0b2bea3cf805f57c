package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/ethe/numagroup/internal/config"
	"github.com/ethe/numagroup/internal/ctxlog"
)

// App encapsulates the CLI program's dependencies, configuration, and
// lifecycle: load config, discover topology, run the group, report outcomes.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
	loader config.Loader
	phase  atomic.Value // string, exposed by the healthcheck endpoint
}

// NewApp constructs the application with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader) *App {
	a := &App{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		config: cfg,
		loader: loader,
	}
	a.phase.Store("configured")
	return a
}

// resolveModel loads the optional config file and overlays the command-line
// settings on top of it.
func (a *App) resolveModel(ctx context.Context) (config.Model, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	var model config.Model
	if a.config.ConfigPath != "" {
		loaded, err := a.loader.Load(ctx, a.config.ConfigPath)
		if err != nil {
			return config.Model{}, fmt.Errorf("failed to load configuration: %w", err)
		}
		model = loaded
		a.logger.Debug("Configuration file loaded.", "path", a.config.ConfigPath)
	}

	model = model.Merge(a.config.Overrides)
	if err := model.Validate(); err != nil {
		return config.Model{}, err
	}
	return model, nil
}

func (a *App) setPhase(phase string) {
	a.phase.Store(phase)
	a.logger.Debug("Phase changed.", "phase", phase)
}
