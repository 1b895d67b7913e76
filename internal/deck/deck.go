package deck

import (
	"fmt"
	"sync"
)

// Style selects which card set a match is dealt from.
type Style string

const (
	// Compact is one card per face and colour: 0-9, SKIP, RESERVE and +2 in
	// every colour plus a single WILD and a single +4 (54 cards).
	Compact Style = "compact"
	// Classic is the 108 card set: one 0 and two of every other coloured face
	// per colour, four WILD and four +4.
	Classic Style = "classic"
)

// Shuffler permutes n elements. *rand.Rand and *randutil.Locked satisfy it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// StandardSet returns the unshuffled cards for style.
func StandardSet(style Style) ([]Card, error) {
	copies := func(v Value) int {
		if style == Classic && v != Zero {
			return 2
		}
		return 1
	}
	wilds := 1
	switch style {
	case Compact:
	case Classic:
		wilds = 4
	default:
		return nil, fmt.Errorf("deck: unknown style %q", style)
	}

	var cards []Card
	for _, color := range StandardColors {
		for v := Zero; v <= DrawTwo; v++ {
			for i := 0; i < copies(v); i++ {
				cards = append(cards, Card{Value: v, Color: color})
			}
		}
	}
	for i := 0; i < wilds; i++ {
		cards = append(cards, Card{Value: Wild, Color: Black}, Card{Value: DrawFour, Color: Black})
	}
	return cards, nil
}

// DrawPile is the face-down LIFO stack cards are drawn from. All methods are
// safe for concurrent use.
type DrawPile struct {
	mu       sync.Mutex
	cards    []Card // top of the pile is the last element
	shuffler Shuffler
}

// NewDrawPile creates a pile holding a copy of cards and shuffles it. A nil
// shuffler keeps the given order, with cards[len(cards)-1] on top.
func NewDrawPile(cards []Card, shuffler Shuffler) *DrawPile {
	p := &DrawPile{
		cards:    append([]Card(nil), cards...),
		shuffler: shuffler,
	}
	p.shuffleLocked()
	return p
}

// RestoreDrawPile recreates a saved pile in its saved order. shuffler is only
// used by later refills.
func RestoreDrawPile(cards []Card, shuffler Shuffler) *DrawPile {
	return &DrawPile{
		cards:    append([]Card(nil), cards...),
		shuffler: shuffler,
	}
}

// Take pops the top card.
func (p *DrawPile) Take() (Card, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.cards) == 0 {
		return Card{}, ErrOutOfCardsInDeck
	}
	card := p.cards[len(p.cards)-1]
	p.cards = p.cards[:len(p.cards)-1]
	return card, nil
}

// Refill pushes a batch of cards and reshuffles the whole pile. Empty input
// is a no-op.
func (p *DrawPile) Refill(cards []Card) {
	if len(cards) == 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.cards = append(p.cards, cards...)
	p.shuffleLocked()
}

// Len returns the number of cards left
func (p *DrawPile) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.cards)
}

// IsEmpty returns true if no cards are left
func (p *DrawPile) IsEmpty() bool {
	return p.Len() == 0
}

// Cards returns a copy of the pile, bottom first.
func (p *DrawPile) Cards() []Card {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Card(nil), p.cards...)
}

func (p *DrawPile) shuffleLocked() {
	if p.shuffler == nil {
		return
	}
	p.shuffler.Shuffle(len(p.cards), func(i, j int) {
		p.cards[i], p.cards[j] = p.cards[j], p.cards[i]
	})
}
