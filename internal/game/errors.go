package game

import "errors"

var (
	ErrMatchNotStarted = errors.New("game: match not started")
	ErrMatchStarted    = errors.New("game: match already started")
	// ErrMatchOver is returned by every mutating call once a result has been
	// concluded.
	ErrMatchOver        = errors.New("game: match is over")
	ErrNotYourTurn      = errors.New("game: not your turn")
	ErrIllegalMove      = errors.New("game: card cannot be played")
	ErrAwaitingColor    = errors.New("game: a colour must be chosen first")
	ErrNotAwaitingColor = errors.New("game: no colour choice pending")
	ErrAlreadyDrew      = errors.New("game: already drew this turn")
	ErrCannotDeclare    = errors.New("game: nothing to declare")
	ErrConservation     = errors.New("game: card conservation violated")
	ErrBadSnapshot      = errors.New("game: inconsistent snapshot")
)
