package session

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/game"
)

// Autoplayer drives the human side of a session with the same first legal
// card policy the opponent uses. It also declares its own last card and
// calls out the opponent whenever it can.
type Autoplayer struct {
	session *Session
	clock   quartz.Clock
	delay   time.Duration
	logger  *log.Logger
}

// NewAutoplayer creates a driver that acts every delay.
func NewAutoplayer(s *Session, clock quartz.Clock, delay time.Duration, logger *log.Logger) *Autoplayer {
	if clock == nil {
		clock = quartz.NewReal()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Autoplayer{
		session: s,
		clock:   clock,
		delay:   delay,
		logger:  logger.WithPrefix("autoplay"),
	}
}

// Run plays until the current match ends and returns its result.
func (a *Autoplayer) Run(ctx context.Context) (game.Result, error) {
	done := a.session.Done()
	if done == nil {
		return game.Result{}, ErrNoMatch
	}

	for {
		if err := a.Step(); err != nil {
			a.logger.Debug("Step skipped", "reason", err)
		}

		timer := a.clock.NewTimer(a.delay, "autoplay")
		select {
		case <-ctx.Done():
			timer.Stop()
			return game.Result{}, ctx.Err()
		case <-done:
			timer.Stop()
			result, ok := a.session.Result()
			if !ok {
				return game.Result{}, ErrNoMatch
			}
			return result, nil
		case <-timer.C:
		}
	}
}

// Step takes at most one action for the human.
func (a *Autoplayer) Step() error {
	view, err := a.session.View()
	if err != nil {
		return err
	}
	if view.Over {
		return game.ErrMatchOver
	}

	state := view.State
	if state.HumanCanDeclareSelf && len(view.HumanHand) == 1 {
		a.ignoreBusy(a.session.DeclareSelf())
	}
	if state.HumanCanDeclareOnOpponent && view.OpponentCount == 1 {
		a.ignoreBusy(a.session.DeclareOnOpponent())
	}

	if state.Turn != game.Human {
		return nil
	}
	if state.AwaitingColor {
		return a.session.ChooseColor(favouriteColor(view.HumanHand))
	}
	for i, card := range view.HumanHand {
		if game.CanPlay(card, view.Top) {
			_, err := a.session.PlayCard(i)
			return err
		}
	}
	_, err = a.session.DrawCard()
	return err
}

func (a *Autoplayer) ignoreBusy(err error) {
	if err != nil && !errors.Is(err, ErrEventsBusy) {
		a.logger.Debug("Declaration not sent", "reason", err)
	}
}

// favouriteColor picks the standard colour held most often.
func favouriteColor(hand []deck.Card) deck.Color {
	counts := make(map[deck.Color]int)
	for _, card := range hand {
		if card.Color.IsStandard() {
			counts[card.Color]++
		}
	}
	best := deck.Red
	for _, color := range deck.StandardColors {
		if counts[color] > counts[best] {
			best = color
		}
	}
	return best
}
