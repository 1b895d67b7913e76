package worker

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/uno-cli/internal/game"
)

// OpponentState is what the opponent loop is doing right now.
type OpponentState int32

const (
	Idle OpponentState = iota
	Thinking
	Acting
)

func (s OpponentState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Thinking:
		return "thinking"
	case Acting:
		return "acting"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Opponent plays the computer side whenever the engine hands it the turn.
type Opponent struct {
	engine   *game.Engine
	notifier game.Notifier
	clock    quartz.Clock
	logger   *log.Logger
	think    time.Duration
	idle     time.Duration

	state atomic.Int32
}

// NewOpponent creates the opponent worker.
func NewOpponent(engine *game.Engine, notifier game.Notifier, clock quartz.Clock, timing Timing, logger *log.Logger) (*Opponent, error) {
	if engine == nil || notifier == nil || clock == nil {
		return nil, fmt.Errorf("%w: opponent needs an engine, a notifier and a clock", ErrWorkerInit)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Opponent{
		engine:   engine,
		notifier: notifier,
		clock:    clock,
		logger:   logger.WithPrefix("opponent"),
		think:    timing.OpponentThink,
		idle:     timing.OpponentIdle,
	}, nil
}

// State reports the loop's current phase.
func (o *Opponent) State() OpponentState {
	return OpponentState(o.state.Load())
}

func (o *Opponent) setState(s OpponentState) {
	o.state.Store(int32(s))
}

// Run loops until ctx is cancelled. It always returns nil.
func (o *Opponent) Run(ctx context.Context) error {
	o.logger.Debug("Opponent started")
	defer o.logger.Debug("Opponent stopped")
	defer o.setState(Idle)

	for ctx.Err() == nil {
		if !o.engine.IsTurn(game.Opponent) {
			o.setState(Idle)
			if !sleep(ctx, o.clock, o.idle, "opponent", "idle") {
				return nil
			}
			continue
		}

		o.notifier.OnStateChanged()
		o.setState(Thinking)
		if !sleep(ctx, o.clock, o.think, "opponent", "think") {
			return nil
		}
		o.Step()
	}
	return nil
}

// Step makes a single opponent move. Failures are logged and reported as
// false; the caller simply tries again later.
func (o *Opponent) Step() (game.Move, bool) {
	o.setState(Acting)
	defer o.setState(Idle)

	move, err := o.engine.OpponentMove()
	if err != nil {
		if errors.Is(err, game.ErrMatchOver) || errors.Is(err, game.ErrNotYourTurn) {
			o.logger.Debug("Opponent move skipped", "reason", err)
		} else {
			o.logger.Warn("Opponent move failed", "error", err)
		}
		return game.Move{}, false
	}

	o.logger.Info("Opponent moved", "played", move.Played, "drew", move.Drew)
	o.notifier.OnStatusMessage(describeMove(move))
	o.notifier.OnStateChanged()
	return move, true
}

func describeMove(move game.Move) string {
	if !move.Played.IsZero() {
		return fmt.Sprintf("Opponent played %s", move.Played)
	}
	if move.Drew == 0 {
		return "Opponent could not draw a card"
	}
	return "Opponent drew a card"
}
