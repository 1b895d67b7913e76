package game

import (
	"fmt"

	"github.com/lox/uno-cli/internal/deck"
)

// Side identifies one of the two participants.
type Side int

const (
	Human Side = iota
	Opponent
)

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Human {
		return Opponent
	}
	return Human
}

func (s Side) String() string {
	switch s {
	case Human:
		return "human"
	case Opponent:
		return "opponent"
	default:
		return fmt.Sprintf("side(%d)", int(s))
	}
}

// Valid reports whether s names a participant.
func (s Side) Valid() bool {
	return s == Human || s == Opponent
}

// MatchState is the shared turn and call-out bookkeeping.
type MatchState struct {
	Turn Side `json:"turn"`
	// HumanHasDrawn is set when the human drew a playable card and may still
	// play it this turn.
	HumanHasDrawn bool `json:"human_has_drawn"`
	// AwaitingColor is set after the human played a wild card and blocks
	// everything except ChooseColor.
	AwaitingColor bool `json:"awaiting_color"`
	// PendingWild records which wild is waiting for a colour.
	PendingWild deck.Value `json:"pending_wild,omitempty"`

	HumanCanDeclareSelf       bool `json:"human_can_declare_self"`
	HumanCanDeclareOnOpponent bool `json:"human_can_declare_on_opponent"`
}

// Move describes what a side did on its turn.
type Move struct {
	Side   Side
	Played deck.Card // zero when the side drew instead
	Drew   int
}

func (m Move) String() string {
	if !m.Played.IsZero() {
		return fmt.Sprintf("%s played %s", m.Side, m.Played)
	}
	return fmt.Sprintf("%s drew %d", m.Side, m.Drew)
}

// Reason says how a match was decided.
type Reason int

const (
	ReasonEmptyHand Reason = iota
	ReasonScore
)

func (r Reason) String() string {
	switch r {
	case ReasonEmptyHand:
		return "emptied hand"
	case ReasonScore:
		return "score-off"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// Result is the final outcome of a match.
type Result struct {
	Winner        Side
	Reason        Reason
	HumanScore    int
	OpponentScore int
}

func (r Result) String() string {
	if r.Reason == ReasonScore {
		return fmt.Sprintf("%s wins on score-off (%d vs %d)", r.Winner, r.HumanScore, r.OpponentScore)
	}
	return fmt.Sprintf("%s wins by emptying their hand", r.Winner)
}

// View is a read-only copy of everything a renderer needs.
type View struct {
	MatchID       string
	Started       bool
	Over          bool
	Top           deck.Card
	HumanHand     []deck.Card
	OpponentCount int
	DrawCount     int
	DiscardCount  int
	State         MatchState
}

// Snapshot is the persistable match state. Cards keep pile order, top last.
type Snapshot struct {
	MatchID      string      `json:"match_id"`
	DrawPile     []deck.Card `json:"draw_pile"`
	DiscardPile  []deck.Card `json:"discard_pile"`
	HumanHand    []deck.Card `json:"human_hand"`
	OpponentHand []deck.Card `json:"opponent_hand"`
	State        MatchState  `json:"state"`
}

// Total counts every card in the snapshot.
func (s Snapshot) Total() int {
	return len(s.DrawPile) + len(s.DiscardPile) + len(s.HumanHand) + len(s.OpponentHand)
}
