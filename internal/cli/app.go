// Package cli wires configuration, logging and theming for the commands.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bnema/waywake/internal/build"
	"github.com/bnema/waywake/internal/cli/styles"
	"github.com/bnema/waywake/internal/config"
	"github.com/bnema/waywake/internal/logging"
)

// App holds the dependencies every command needs.
type App struct {
	Config    *config.Config
	Theme     *styles.Theme
	BuildInfo build.Info

	logger zerolog.Logger
}

// NewApp loads configuration and builds the logger and theme.
func NewApp() (*App, error) {
	if err := config.Init(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := config.Get()

	level := logging.ParseLevel(cfg.Logging.Level)
	logger := logging.New(logging.Config{
		Level:      level,
		Format:     cfg.Logging.Format,
		TimeFormat: "15:04:05",
	})
	zerolog.SetGlobalLevel(level)

	return &App{
		Config: cfg,
		Theme:  styles.NewTheme(),
		logger: logger,
	}, nil
}

// WithLogging attaches the app logger to ctx.
func (a *App) WithLogging(ctx context.Context) context.Context {
	return logging.WithContext(ctx, a.logger)
}
