package deck

import "errors"

var (
	// ErrOutOfCardsInDeck is returned when taking from an empty draw pile.
	// Callers recover by recycling the discard pile.
	ErrOutOfCardsInDeck = errors.New("deck: out of cards")
	// ErrIllegalCardColor is returned for a colour a card cannot carry.
	ErrIllegalCardColor = errors.New("deck: illegal card color")
	// ErrIllegalCardValue is returned for an unknown face.
	ErrIllegalCardValue = errors.New("deck: illegal card value")
	// ErrEmptyDiscardPile signals a read of the top card before the match
	// started.
	ErrEmptyDiscardPile = errors.New("deck: discard pile is empty")
	// ErrInvalidHandIndex is a bounds violation on a hand.
	ErrInvalidHandIndex = errors.New("deck: invalid hand index")
	// ErrNullCard is returned when an absent card is added or played.
	ErrNullCard = errors.New("deck: null card")
)
