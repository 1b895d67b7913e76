package deck

import (
	"fmt"
	"strings"
)

// Color represents a card colour. Wild cards carry Black until a colour is
// chosen for them.
type Color int

const (
	// ColorNone is the zero value; a Card with no colour is an absent card.
	ColorNone Color = iota
	Red
	Green
	Blue
	Yellow
	Black
)

// StandardColors are the four colours a wild card may be given.
var StandardColors = [...]Color{Red, Green, Blue, Yellow}

// String returns the upper-case colour name
func (c Color) String() string {
	switch c {
	case Red:
		return "RED"
	case Green:
		return "GREEN"
	case Blue:
		return "BLUE"
	case Yellow:
		return "YELLOW"
	case Black:
		return "BLACK"
	default:
		return "NONE"
	}
}

// IsStandard reports whether c is one of the four playable colours.
func (c Color) IsStandard() bool {
	return c >= Red && c <= Yellow
}

// ParseColor parses a colour name, case-insensitively.
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RED", "R":
		return Red, nil
	case "GREEN", "G":
		return Green, nil
	case "BLUE", "B":
		return Blue, nil
	case "YELLOW", "Y":
		return Yellow, nil
	case "BLACK":
		return Black, nil
	}
	return ColorNone, fmt.Errorf("%w: %q", ErrIllegalCardColor, s)
}

// Value is the face of a card: a digit or one of the special faces.
type Value int

const (
	Zero Value = iota
	One
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Skip
	Reserve
	DrawTwo
	DrawFour
	Wild
)

// String returns the printed face of the value
func (v Value) String() string {
	switch {
	case v.IsNumber():
		return fmt.Sprintf("%d", int(v))
	case v == Skip:
		return "SKIP"
	case v == Reserve:
		return "RESERVE"
	case v == DrawTwo:
		return "+2"
	case v == DrawFour:
		return "+4"
	case v == Wild:
		return "WILD"
	default:
		return "?"
	}
}

// Valid reports whether v is a known face.
func (v Value) Valid() bool {
	return v >= Zero && v <= Wild
}

// IsNumber reports whether v is a digit card (0-9).
func (v Value) IsNumber() bool {
	return v >= Zero && v <= Nine
}

// IsWild reports whether v is a colour-choosing card (WILD or +4).
func (v Value) IsWild() bool {
	return v == Wild || v == DrawFour
}

// Kind returns the effect family of the value.
func (v Value) Kind() Kind {
	switch v {
	case Skip:
		return KindSkip
	case Reserve:
		return KindReserve
	case DrawTwo:
		return KindDrawTwo
	case DrawFour:
		return KindDrawFour
	case Wild:
		return KindWild
	default:
		return KindNumber
	}
}

// Points is the score-off value of a card left in hand.
func (v Value) Points() int {
	switch v.Kind() {
	case KindNumber:
		return int(v)
	case KindSkip, KindReserve, KindDrawTwo:
		return 20
	default:
		return 50
	}
}

// ParseValue parses a printed face such as "7", "SKIP" or "+4".
func ParseValue(s string) (Value, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 1 && s[0] >= '0' && s[0] <= '9' {
		return Value(s[0] - '0'), nil
	}
	switch s {
	case "SKIP":
		return Skip, nil
	case "RESERVE":
		return Reserve, nil
	case "+2":
		return DrawTwo, nil
	case "+4":
		return DrawFour, nil
	case "WILD":
		return Wild, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrIllegalCardValue, s)
}

// Kind groups values by the effect their play triggers. The set is closed;
// NumKinds sizes lookup tables keyed by Kind.
type Kind int

const (
	KindNumber Kind = iota
	KindSkip
	KindReserve
	KindDrawTwo
	KindDrawFour
	KindWild
	NumKinds
)

// Card represents a single card
type Card struct {
	Value Value
	Color Color
}

// NewCard validates and creates a card. Wild faces must be Black, every
// other face must carry a standard colour.
func NewCard(value Value, color Color) (Card, error) {
	if !value.Valid() {
		return Card{}, fmt.Errorf("%w: %d", ErrIllegalCardValue, int(value))
	}
	if value.IsWild() {
		if color != Black {
			return Card{}, fmt.Errorf("%w: %s must start BLACK", ErrIllegalCardColor, value)
		}
	} else if !color.IsStandard() {
		return Card{}, fmt.Errorf("%w: %s %s", ErrIllegalCardColor, color, value)
	}
	return Card{Value: value, Color: color}, nil
}

// IsZero reports whether c is the absent card.
func (c Card) IsZero() bool {
	return c.Color == ColorNone
}

// String returns the text form, e.g. "RED 7" or "BLACK WILD"
func (c Card) String() string {
	return c.Color.String() + " " + c.Value.String()
}

// WithColor returns a copy of a wild card carrying color. Only WILD and +4
// can change colour, and only to a standard colour or back to Black.
func (c Card) WithColor(color Color) (Card, error) {
	if !c.Value.IsWild() {
		return c, fmt.Errorf("%w: cannot recolour %s", ErrIllegalCardColor, c)
	}
	if !color.IsStandard() && color != Black {
		return c, fmt.Errorf("%w: %s", ErrIllegalCardColor, color)
	}
	c.Color = color
	return c, nil
}

// MarshalText encodes the card in its text form.
func (c Card) MarshalText() ([]byte, error) {
	if c.IsZero() {
		return nil, ErrNullCard
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a card from its text form. A wild card may carry a
// chosen colour (it does while on top of the discard pile).
func (c *Card) UnmarshalText(text []byte) error {
	card, err := ParseCard(string(text))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// ParseCard parses "<COLOR> <VALUE>".
func ParseCard(s string) (Card, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrIllegalCardValue, s)
	}
	color, err := ParseColor(fields[0])
	if err != nil {
		return Card{}, err
	}
	value, err := ParseValue(fields[1])
	if err != nil {
		return Card{}, err
	}
	if value.IsWild() {
		card, err := NewCard(value, Black)
		if err != nil {
			return Card{}, err
		}
		return card.WithColor(color)
	}
	return NewCard(value, color)
}

// MustParseCards parses each argument with ParseCard and panics on error.
// Intended for fixtures and tests.
func MustParseCards(texts ...string) []Card {
	cards := make([]Card, 0, len(texts))
	for _, text := range texts {
		card, err := ParseCard(text)
		if err != nil {
			panic(err)
		}
		cards = append(cards, card)
	}
	return cards
}
