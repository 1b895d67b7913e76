package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/randutil"
)

// WinWatcher polls the engine for a terminal position and announces the
// result exactly once.
type WinWatcher struct {
	engine   *game.Engine
	notifier game.Notifier
	clock    quartz.Clock
	rng      *randutil.Locked
	logger   *log.Logger
	pollMax  time.Duration
}

// NewWinWatcher creates the terminal condition watcher.
func NewWinWatcher(engine *game.Engine, notifier game.Notifier, clock quartz.Clock, rng *randutil.Locked, timing Timing, logger *log.Logger) (*WinWatcher, error) {
	if engine == nil || notifier == nil || clock == nil || rng == nil {
		return nil, fmt.Errorf("%w: win watcher needs an engine, a notifier, a clock and a random source", ErrWorkerInit)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &WinWatcher{
		engine:   engine,
		notifier: notifier,
		clock:    clock,
		rng:      rng,
		logger:   logger.WithPrefix("winwatch"),
		pollMax:  timing.WinPollMax,
	}, nil
}

// Run polls until the match ends or ctx is cancelled. halt is called after
// the engine has concluded and before the result is announced, so the other
// workers are stopped by the time anyone hears about it.
func (w *WinWatcher) Run(ctx context.Context, halt func()) (game.Result, bool) {
	w.logger.Debug("Win watcher started")
	defer w.logger.Debug("Win watcher stopped")

	for {
		if !sleep(ctx, w.clock, w.rng.Jitter(w.pollMax/2, w.pollMax), "winwatch", "poll") {
			return game.Result{}, false
		}
		if result, ok := w.Check(halt); ok {
			return result, true
		}
	}
}

// Check concludes the match if it is over.
func (w *WinWatcher) Check(halt func()) (game.Result, bool) {
	result, ok := w.engine.Conclude()
	if !ok {
		return game.Result{}, false
	}
	if halt != nil {
		halt()
	}

	w.logger.Info("Announcing result", "winner", result.Winner, "reason", result.Reason)
	w.notifier.OnStatusMessage(result.String())
	w.notifier.OnStateChanged()
	w.notifier.OnMatchOver(result)
	return result, true
}
