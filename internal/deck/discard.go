package deck

import "sync"

// DiscardPile is the face-up sequence of played cards. The last element is
// the top card that defines what may be played next. Every operation holds
// the pile's lock for its duration.
type DiscardPile struct {
	mu    sync.Mutex
	cards []Card
}

// NewDiscardPile returns a pile holding a copy of cards, last on top.
func NewDiscardPile(cards ...Card) *DiscardPile {
	return &DiscardPile{cards: append([]Card(nil), cards...)}
}

// Add places card on top.
func (d *DiscardPile) Add(card Card) error {
	if card.IsZero() {
		return ErrNullCard
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cards = append(d.cards, card)
	return nil
}

// Top returns the current top card.
func (d *DiscardPile) Top() (Card, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cards) == 0 {
		return Card{}, ErrEmptyDiscardPile
	}
	return d.cards[len(d.cards)-1], nil
}

// SetTopColor gives the top card a chosen colour. Only wild cards accept it.
func (d *DiscardPile) SetTopColor(color Color) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cards) == 0 {
		return ErrEmptyDiscardPile
	}
	top := len(d.cards) - 1
	recoloured, err := d.cards[top].WithColor(color)
	if err != nil {
		return err
	}
	d.cards[top] = recoloured
	return nil
}

// CollectAllExceptTop removes and returns every card but the top one. With
// resetWildColor set, WILD and +4 cards come back Black since a chosen colour
// only means something while the card is on top.
func (d *DiscardPile) CollectAllExceptTop(resetWildColor bool) []Card {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.cards) <= 1 {
		return []Card{}
	}
	top := d.cards[len(d.cards)-1]
	collected := append([]Card(nil), d.cards[:len(d.cards)-1]...)
	d.cards = []Card{top}

	if resetWildColor {
		for i, card := range collected {
			if card.Value.IsWild() {
				collected[i].Color = Black
			}
		}
	}
	return collected
}

// Len returns the number of cards on the pile
func (d *DiscardPile) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.cards)
}

// Cards returns a copy of the pile, bottom first.
func (d *DiscardPile) Cards() []Card {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Card(nil), d.cards...)
}
