package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/randutil"
)

// CallOut watches for hands down to their last card and runs the declare
// countdown. One countdown runs at a time and each one resolves at most
// once, whether by declaration, expiry or shutdown.
type CallOut struct {
	engine    *game.Engine
	notifier  game.Notifier
	events    <-chan game.Declaration
	clock     quartz.Clock
	rng       *randutil.Locked
	logger    *log.Logger
	countdown time.Duration
	pollMax   time.Duration

	mu     sync.Mutex // guards cycle and active; taken before the engine lock
	cycle  uint64
	active *countdown
}

type countdown struct {
	id    uint64
	side  game.Side
	timer *quartz.Timer
}

// NewCallOut creates the call-out monitor reading declarations from events.
func NewCallOut(engine *game.Engine, notifier game.Notifier, events <-chan game.Declaration, clock quartz.Clock, rng *randutil.Locked, timing Timing, logger *log.Logger) (*CallOut, error) {
	if engine == nil || notifier == nil || events == nil || clock == nil || rng == nil {
		return nil, fmt.Errorf("%w: call-out monitor needs an engine, a notifier, an event channel, a clock and a random source", ErrWorkerInit)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &CallOut{
		engine:    engine,
		notifier:  notifier,
		events:    events,
		clock:     clock,
		rng:       rng,
		logger:    logger.WithPrefix("callout"),
		countdown: timing.CallOutCountdown,
		pollMax:   timing.CallOutPollMax,
	}, nil
}

// Run polls and consumes declarations until ctx is cancelled. A countdown
// still running at shutdown is dropped without a penalty.
func (c *CallOut) Run(ctx context.Context) error {
	c.logger.Debug("Call-out monitor started")
	defer c.logger.Debug("Call-out monitor stopped")
	defer c.cancelActive()

	events := c.events
	for {
		timer := c.clock.NewTimer(c.rng.Jitter(c.pollMax/2, c.pollMax), "callout", "poll")
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case ev, ok := <-events:
			timer.Stop()
			if !ok {
				events = nil
				continue
			}
			c.Handle(ev)
		case <-timer.C:
			c.Poll()
		}
	}
}

// Pending returns the side whose countdown is running, if any.
func (c *CallOut) Pending() (game.Side, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return 0, false
	}
	return c.active.side, true
}

// Poll opens a countdown when an armed hand is down to one card.
func (c *CallOut) Poll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil || c.engine.IsOver() {
		return
	}

	state := c.engine.State()
	var side game.Side
	switch {
	case state.HumanCanDeclareSelf && c.engine.CardsHeld(game.Human) == 1:
		side = game.Human
	case state.HumanCanDeclareOnOpponent && c.engine.CardsHeld(game.Opponent) == 1:
		side = game.Opponent
	default:
		return
	}

	c.cycle++
	id := c.cycle
	c.active = &countdown{
		id:   id,
		side: side,
		timer: c.clock.AfterFunc(c.countdown, func() {
			c.expire(id)
		}, "callout", "countdown"),
	}

	c.logger.Info("Countdown started", "cycle", id, "side", side, "countdown", c.countdown)
	if side == game.Human {
		c.notifier.OnStatusMessage(fmt.Sprintf("One card left! Declare it within %s", c.countdown))
	} else {
		c.notifier.OnStatusMessage(fmt.Sprintf("Opponent is down to one card. Call it out within %s", c.countdown))
	}
	c.notifier.OnStateChanged()
}

// Handle applies a declaration from the human. A successful declaration
// resolves the running countdown for that side.
func (c *CallOut) Handle(ev game.Declaration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With("event", ev)

	switch ev {
	case game.SelfDeclared:
		if err := c.engine.DeclareLastCard(game.Human); err != nil {
			c.reject(logger, err, "Nothing to declare")
			return
		}
		logger.Info("Human declared last card")
		c.notifier.OnStatusMessage("You declared your last card")
	case game.DeclaredOnOpponent:
		n, err := c.engine.CallOut(game.Opponent)
		if err != nil {
			c.reject(logger, err, "The opponent has nothing to call out")
			return
		}
		logger.Info("Opponent caught", "drew", n)
		c.notifier.OnStatusMessage(fmt.Sprintf("Caught! Opponent draws %d", n))
	default:
		logger.Warn("Unknown declaration")
		return
	}

	if c.active != nil && c.active.side == ev.Side() {
		c.active.timer.Stop()
		logger.Debug("Countdown cancelled", "cycle", c.active.id)
		c.active = nil
	}
	c.notifier.OnStateChanged()
}

func (c *CallOut) reject(logger *log.Logger, err error, message string) {
	if errors.Is(err, game.ErrCannotDeclare) {
		logger.Debug("Declaration rejected", "reason", err)
		c.notifier.OnStatusMessage(message)
		return
	}
	logger.Warn("Declaration failed", "error", err)
}

// expire resolves countdown id when its time runs out. Expiry of a cycle
// that was already resolved does nothing.
func (c *CallOut) expire(id uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active == nil || c.active.id != id {
		c.logger.Debug("Stale countdown expiry ignored", "cycle", id)
		return
	}
	side := c.active.side
	c.active = nil

	logger := c.logger.With("cycle", id, "side", side)
	switch side {
	case game.Human:
		n, err := c.engine.CallOut(game.Human)
		if err != nil {
			logger.Debug("No penalty applied", "reason", err)
			return
		}
		logger.Info("Human missed the declaration", "drew", n)
		c.notifier.OnStatusMessage(fmt.Sprintf("Too slow! You draw %d penalty card", n))
	case game.Opponent:
		if err := c.engine.DeclareLastCard(game.Opponent); err != nil {
			logger.Debug("Opponent declaration skipped", "reason", err)
			return
		}
		logger.Info("Opponent declared last card")
		c.notifier.OnStatusMessage("Opponent declares: one card left")
	}
	c.notifier.OnStateChanged()
}

func (c *CallOut) cancelActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil {
		c.active.timer.Stop()
		c.active = nil
	}
}
