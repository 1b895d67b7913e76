package game

import "github.com/lox/uno-cli/internal/deck"

// CanPlay reports whether candidate may go on top. Wild cards always may,
// anything may follow a +4, otherwise colour or value must match.
func CanPlay(candidate, top deck.Card) bool {
	if candidate.Value.IsWild() {
		return true
	}
	if top.Value == deck.DrawFour {
		return true
	}
	return candidate.Color == top.Color || candidate.Value == top.Value
}

// effect applies a played card's consequences. Called with e.mu held and the
// card already on the discard pile.
type effect func(e *Engine, acting Side) error

var effects = [deck.NumKinds]effect{
	deck.KindNumber:   passTurn,
	deck.KindSkip:     keepTurn,
	deck.KindReserve:  keepTurn,
	deck.KindDrawTwo:  drawTwo,
	deck.KindDrawFour: drawFour,
	deck.KindWild:     wild,
}

func passTurn(e *Engine, acting Side) error {
	e.setTurn(acting.Other())
	return nil
}

func keepTurn(e *Engine, acting Side) error {
	e.setTurn(acting)
	return nil
}

func drawTwo(e *Engine, acting Side) error {
	e.drawInto(acting.Other(), 2)
	e.setTurn(acting)
	return nil
}

func drawFour(e *Engine, acting Side) error {
	e.drawInto(acting.Other(), 4)
	if acting == Human {
		e.awaitColor(deck.DrawFour)
		return nil
	}
	if err := e.pickColor(); err != nil {
		return err
	}
	e.setTurn(acting)
	return nil
}

func wild(e *Engine, acting Side) error {
	if acting == Human {
		e.awaitColor(deck.Wild)
		return nil
	}
	if err := e.pickColor(); err != nil {
		return err
	}
	e.setTurn(Human)
	return nil
}
