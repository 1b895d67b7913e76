package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/session"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(0, 1).
	Bold(true)

type AutoplayCmd struct {
	Delay   time.Duration `default:"100ms" help:"Pause between the human side's actions"`
	Fast    bool          `help:"Shrink every worker delay to milliseconds"`
	Timeout time.Duration `default:"5m" help:"Give up after this long"`
}

func (c *AutoplayCmd) Run(g *Globals) error {
	cfg, err := g.loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	a, err := g.setup(ctx, cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer a.close()

	opts, err := a.sessionOptions()
	if err != nil {
		return err
	}
	if c.Fast {
		opts.Timing.OpponentThink = time.Millisecond
		opts.Timing.OpponentIdle = time.Millisecond
		opts.Timing.CallOutCountdown = 20 * time.Millisecond
		opts.Timing.CallOutPollMax = 2 * time.Millisecond
		opts.Timing.WinPollMax = 2 * time.Millisecond
	}

	sess, err := session.New(opts, game.NewLogNotifier(a.logger))
	if err != nil {
		return err
	}
	defer sess.Stop()

	if err := sess.StartMatch(ctx); err != nil {
		return fmt.Errorf("failed to start match: %w", err)
	}

	started := time.Now()
	result, err := session.NewAutoplayer(sess, nil, c.Delay, a.logger).Run(ctx)
	if err != nil {
		return fmt.Errorf("autoplay stopped: %w", err)
	}

	fmt.Println(titleStyle.Render(" UNO "))
	fmt.Println(result.String())
	a.logger.Info("Autoplay finished", "winner", result.Winner, "reason", result.Reason, "duration", time.Since(started).Round(time.Millisecond))
	return nil
}
