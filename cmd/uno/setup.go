package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"

	"github.com/lox/uno-cli/internal/config"
	"github.com/lox/uno-cli/internal/session"
	"github.com/lox/uno-cli/internal/store"
)

// app is everything a command needs once flags and config are resolved.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	store  store.Store
	close  func()
}

// loadConfig reads the config file and applies flag overrides.
func (g *Globals) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.Seed != 0 {
		cfg.Match.Seed = g.Seed
	}
	if g.LogLevel != "" {
		cfg.Log.Level = g.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// setup builds the logger and the save store. logOut receives the log.
func (g *Globals) setup(ctx context.Context, cfg *config.Config, logOut io.Writer) (*app, error) {
	if g.NoColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	logger := log.NewWithOptions(logOut, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "UNO",
		Level:           cfg.LogLevel(),
	})

	a := &app{cfg: cfg, logger: logger, close: func() {}}
	switch cfg.Save.Backend {
	case config.BackendRedis:
		rs, err := store.DialRedis(ctx, cfg.Save.RedisAddr, cfg.Save.RedisKey)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.store = rs
		a.close = func() {
			if err := rs.Close(); err != nil {
				logger.Error("Failed to close redis", "error", err)
			}
		}
	default:
		a.store = store.NewFileStore(cfg.Save.Path)
	}
	logger.Debug("Save store ready", "backend", cfg.Save.Backend)
	return a, nil
}

// sessionOptions turns the config into session options.
func (a *app) sessionOptions() (session.Options, error) {
	timing, err := a.cfg.WorkerTiming()
	if err != nil {
		return session.Options{}, err
	}
	return session.Options{
		Style:  a.cfg.DeckStyle(),
		Seed:   a.cfg.Match.Seed,
		Timing: timing,
		Store:  a.store,
		Logger: a.logger,
	}, nil
}
