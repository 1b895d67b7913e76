package worker

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/uno-cli/internal/game"
)

// Group supervises the three workers of one match. The opponent and the
// call-out monitor run in an errgroup that the win watcher halts before it
// announces a result.
type Group struct {
	Opponent *Opponent
	CallOut  *CallOut
	Watcher  *WinWatcher
	logger   *log.Logger
}

// NewGroup bundles already constructed workers.
func NewGroup(opponent *Opponent, callout *CallOut, watcher *WinWatcher, logger *log.Logger) (*Group, error) {
	if opponent == nil || callout == nil || watcher == nil {
		return nil, ErrWorkerInit
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Group{
		Opponent: opponent,
		CallOut:  callout,
		Watcher:  watcher,
		logger:   logger,
	}, nil
}

// Run blocks until the match is decided or ctx is cancelled, and returns
// only after every worker has stopped.
func (g *Group) Run(ctx context.Context) (game.Result, bool) {
	workersCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	eg, egCtx := errgroup.WithContext(workersCtx)
	eg.Go(func() error { return g.Opponent.Run(egCtx) })
	eg.Go(func() error { return g.CallOut.Run(egCtx) })

	halt := sync.OnceFunc(func() {
		cancel()
		if err := eg.Wait(); err != nil {
			g.logger.Error("Worker exited with error", "error", err)
		}
	})
	defer halt()

	return g.Watcher.Run(ctx, halt)
}
