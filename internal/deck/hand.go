package deck

import (
	"fmt"
	"sync"
)

// Hand is one side's ordered cards. It grows by appending and shrinks by
// index removal on play. Safe for concurrent use.
type Hand struct {
	mu    sync.Mutex
	cards []Card
}

// NewHand returns a hand holding a copy of cards.
func NewHand(cards ...Card) *Hand {
	return &Hand{cards: append([]Card(nil), cards...)}
}

// Add appends card to the hand.
func (h *Hand) Add(card Card) error {
	if card.IsZero() {
		return ErrNullCard
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.cards = append(h.cards, card)
	return nil
}

// Get returns the card at index.
func (h *Hand) Get(index int) (Card, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.cards) {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidHandIndex, index)
	}
	return h.cards[index], nil
}

// Remove deletes and returns the card at index, keeping the order of the rest.
func (h *Hand) Remove(index int) (Card, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if index < 0 || index >= len(h.cards) {
		return Card{}, fmt.Errorf("%w: %d", ErrInvalidHandIndex, index)
	}
	card := h.cards[index]
	h.cards = append(h.cards[:index], h.cards[index+1:]...)
	return card, nil
}

// Len returns the number of cards held
func (h *Hand) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cards)
}

// Cards returns a copy of the hand in order.
func (h *Hand) Cards() []Card {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Card(nil), h.cards...)
}

// Points totals the score-off value of the hand.
func (h *Hand) Points() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	total := 0
	for _, card := range h.cards {
		total += card.Value.Points()
	}
	return total
}
