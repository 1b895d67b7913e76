// Package game implements the rules of a two-sided shedding card match
// between a human and a computer opponent.
//
// The main type is Engine, which owns the draw pile, the discard pile, both
// hands and the shared MatchState. Every compound operation (deal, play,
// draw, call-out, recycle, conclude) runs under a single engine lock so the
// background workers and the user input path never observe a half-applied
// move.
//
// # Basic Usage
//
//	e, err := game.NewStandardEngine(deck.Compact, randutil.NewLocked(0), logger)
//	if err != nil {
//	    return err
//	}
//	if err := e.StartMatch(); err != nil {
//	    return err
//	}
//	card, err := e.HumanPlay(0)
//
// # Deterministic Testing
//
// NewEngine accepts a prepared draw pile. Built with a nil shuffler the pile
// is dealt in the given order, top card last:
//
//	pile := deck.NewDrawPile(deck.MustParseCards("RED 1", "BLUE 2", ...), nil)
//	e := game.NewEngine(pile, randutil.NewLocked(1), logger)
package game
