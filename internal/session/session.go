// Package session is the human facing command surface of a match. It owns
// the engine, the background workers and the declaration channel, and
// forwards saves and loads to a store.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/randutil"
	"github.com/lox/uno-cli/internal/store"
	"github.com/lox/uno-cli/internal/worker"
)

var (
	ErrNoMatch    = errors.New("session: no match running")
	ErrNoStore    = errors.New("session: no save store configured")
	ErrEventsBusy = errors.New("session: declaration already queued")
)

// Options configure a session.
type Options struct {
	Style  deck.Style
	Seed   int64 // 0 picks a time based seed
	Timing worker.Timing
	Clock  quartz.Clock
	Store  store.Store // optional
	Logger *log.Logger
}

// Session runs at most one match at a time.
type Session struct {
	opts     Options
	logger   *log.Logger
	notifier game.Notifier
	rng      *randutil.Locked

	mu     sync.Mutex
	engine *game.Engine
	events chan game.Declaration
	cancel context.CancelFunc
	done   chan struct{}
	result *game.Result
}

// New creates an idle session. notifier receives every worker update.
func New(opts Options, notifier game.Notifier) (*Session, error) {
	if notifier == nil {
		return nil, fmt.Errorf("%w: session needs a notifier", worker.ErrWorkerInit)
	}
	if opts.Style == "" {
		opts.Style = deck.Compact
	}
	if opts.Clock == nil {
		opts.Clock = quartz.NewReal()
	}
	if opts.Timing == (worker.Timing{}) {
		opts.Timing = worker.DefaultTiming()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	seed := randutil.Seed(opts.Seed)
	logger := opts.Logger.WithPrefix("session")
	logger.Debug("Session created", "seed", seed, "deck", opts.Style)

	return &Session{
		opts:     opts,
		logger:   logger,
		notifier: notifier,
		rng:      randutil.NewLocked(seed),
	}, nil
}

// StartMatch deals a fresh match and starts its workers. Any running match
// is stopped first.
func (s *Session) StartMatch(ctx context.Context) error {
	engine, err := game.NewStandardEngine(s.opts.Style, s.rng, s.opts.Logger)
	if err != nil {
		return err
	}
	if err := engine.StartMatch(); err != nil {
		return err
	}
	s.Stop()
	if err := s.run(ctx, engine); err != nil {
		return err
	}
	s.notifier.OnStatusMessage("New match dealt. Your turn")
	s.notifier.OnStateChanged()
	return nil
}

func (s *Session) run(ctx context.Context, engine *game.Engine) error {
	events := make(chan game.Declaration, 1)
	clock, timing, logger := s.opts.Clock, s.opts.Timing, s.opts.Logger

	opponent, err := worker.NewOpponent(engine, s.notifier, clock, timing, logger)
	if err != nil {
		return err
	}
	callout, err := worker.NewCallOut(engine, s.notifier, events, clock, s.rng, timing, logger)
	if err != nil {
		return err
	}
	watcher, err := worker.NewWinWatcher(engine, s.notifier, clock, s.rng, timing, logger)
	if err != nil {
		return err
	}
	group, err := worker.NewGroup(opponent, callout, watcher, logger)
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	s.mu.Lock()
	s.engine = engine
	s.events = events
	s.cancel = cancel
	s.done = done
	s.result = nil
	s.mu.Unlock()

	s.logger.Info("Match running", "match", engine.MatchID())

	go func() {
		defer close(done)
		result, ok := group.Run(runCtx)
		if !ok {
			return
		}
		s.mu.Lock()
		s.result = &result
		s.mu.Unlock()
	}()
	return nil
}

// Stop halts the running match's workers and waits for them.
func (s *Session) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Done is closed when the current match's workers have stopped. It is nil
// before the first match.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done
}

// Result returns the outcome once the match has been decided.
func (s *Session) Result() (game.Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return game.Result{}, false
	}
	return *s.result, true
}

// View returns the current match for rendering.
func (s *Session) View() (game.View, error) {
	engine, err := s.current()
	if err != nil {
		return game.View{}, err
	}
	return engine.View(), nil
}

// PlayCard plays the card at index in the human's hand.
func (s *Session) PlayCard(index int) (deck.Card, error) {
	engine, err := s.current()
	if err != nil {
		return deck.Card{}, err
	}
	card, err := engine.HumanPlay(index)
	if err != nil {
		return deck.Card{}, err
	}
	s.logger.Debug("Human played", "card", card)
	if card.Value.IsWild() {
		s.notifier.OnStatusMessage(fmt.Sprintf("You played %s. Choose a colour", card))
	} else {
		s.notifier.OnStatusMessage(fmt.Sprintf("You played %s", card))
	}
	s.notifier.OnStateChanged()
	return card, nil
}

// DrawCard draws one card for the human.
func (s *Session) DrawCard() (deck.Card, error) {
	engine, err := s.current()
	if err != nil {
		return deck.Card{}, err
	}
	card, err := engine.HumanDraw()
	if err != nil {
		return deck.Card{}, err
	}
	s.logger.Debug("Human drew", "card", card)
	if engine.IsTurn(game.Human) {
		s.notifier.OnStatusMessage(fmt.Sprintf("You drew %s. You may play it", card))
	} else {
		s.notifier.OnStatusMessage(fmt.Sprintf("You drew %s", card))
	}
	s.notifier.OnStateChanged()
	return card, nil
}

// ChooseColor settles the colour of the human's wild card.
func (s *Session) ChooseColor(color deck.Color) error {
	engine, err := s.current()
	if err != nil {
		return err
	}
	if err := engine.ChooseColor(color); err != nil {
		return err
	}
	s.notifier.OnStatusMessage(fmt.Sprintf("Colour is now %s", color))
	s.notifier.OnStateChanged()
	return nil
}

// DeclareSelf announces the human's last card.
func (s *Session) DeclareSelf() error {
	return s.declare(game.SelfDeclared)
}

// DeclareOnOpponent calls out the opponent's undeclared last card.
func (s *Session) DeclareOnOpponent() error {
	return s.declare(game.DeclaredOnOpponent)
}

func (s *Session) declare(ev game.Declaration) error {
	s.mu.Lock()
	engine, events, running := s.engine, s.events, s.cancel != nil
	s.mu.Unlock()

	if engine == nil || !running {
		return ErrNoMatch
	}
	if engine.IsOver() {
		return game.ErrMatchOver
	}
	select {
	case events <- ev:
		return nil
	default:
		return ErrEventsBusy
	}
}

// Save stores a snapshot of the running match.
func (s *Session) Save(ctx context.Context) error {
	if s.opts.Store == nil {
		return ErrNoStore
	}
	engine, err := s.current()
	if err != nil {
		return err
	}
	snap, err := engine.Snapshot()
	if err != nil {
		return err
	}
	if err := s.opts.Store.Save(ctx, snap); err != nil {
		return err
	}
	s.logger.Info("Match saved", "match", snap.MatchID, "cards", snap.Total())
	s.notifier.OnStatusMessage("Match saved")
	return nil
}

// Load replaces the running match with the saved one and resumes it.
func (s *Session) Load(ctx context.Context) error {
	if s.opts.Store == nil {
		return ErrNoStore
	}
	snap, err := s.opts.Store.Load(ctx)
	if err != nil {
		return err
	}

	engine := game.NewEngine(deck.NewDrawPile(nil, nil), s.rng, s.opts.Logger)
	if err := engine.Restore(snap); err != nil {
		return err
	}
	s.Stop()
	if err := s.run(ctx, engine); err != nil {
		return err
	}
	s.logger.Info("Match loaded", "match", snap.MatchID)
	s.notifier.OnStatusMessage("Saved match resumed")
	s.notifier.OnStateChanged()
	return nil
}

func (s *Session) current() (*game.Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return nil, ErrNoMatch
	}
	return s.engine, nil
}
