package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/session"
	"github.com/lox/uno-cli/internal/tui"
)

type PlayCmd struct {
	Resume bool `short:"r" help:"Resume the saved match instead of dealing a new one"`
}

func (c *PlayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the TUI, so the log goes to a file
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0666)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() {
		if err := logFile.Close(); err != nil {
			log.Error("Failed to close log file", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := g.setup(ctx, cfg, logFile)
	if err != nil {
		return err
	}
	defer a.close()

	opts, err := a.sessionOptions()
	if err != nil {
		return err
	}

	bridge := tui.NewBridge()
	sess, err := session.New(opts, game.NewMultiNotifier(bridge, game.NewLogNotifier(a.logger)))
	if err != nil {
		return err
	}
	defer sess.Stop()

	if c.Resume {
		err = sess.Load(ctx)
	} else {
		err = sess.StartMatch(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}

	a.logger.Info("Starting TUI", "resume", c.Resume)
	model := tui.NewTUIModel(ctx, sess, bridge, a.logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
