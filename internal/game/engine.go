package game

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/randutil"
)

// HandSize is the number of cards dealt to each side.
const HandSize = 5

// Engine owns one match. All methods are safe for concurrent use.
type Engine struct {
	mu      sync.Mutex
	logger  *log.Logger
	rng     *randutil.Locked
	draw    *deck.DrawPile
	discard *deck.DiscardPile
	hands   [2]*deck.Hand
	state   MatchState

	matchID string
	total   int // cards in play, fixed at construction
	started bool
	over    bool
}

// NewEngine creates an engine that deals from pile. rng picks the
// opponent's wild colours and is required.
func NewEngine(pile *deck.DrawPile, rng *randutil.Locked, logger *log.Logger) *Engine {
	return &Engine{
		logger:  logger.WithPrefix("engine"),
		rng:     rng,
		draw:    pile,
		discard: deck.NewDiscardPile(),
		hands:   [2]*deck.Hand{deck.NewHand(), deck.NewHand()},
		matchID: newMatchID(),
		total:   pile.Len(),
	}
}

// NewStandardEngine creates an engine over a shuffled standard set.
func NewStandardEngine(style deck.Style, rng *randutil.Locked, logger *log.Logger) (*Engine, error) {
	cards, err := deck.StandardSet(style)
	if err != nil {
		return nil, err
	}
	return NewEngine(deck.NewDrawPile(cards, rng), rng, logger), nil
}

func newMatchID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// MatchID returns the identifier used for logging and save files.
func (e *Engine) MatchID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.matchID
}

// StartMatch deals HandSize cards to each side alternately, human first, then
// turns up cards until a number card starts the discard pile. Rejected cards
// go back into the draw pile. A failed start returns every dealt card to the
// draw pile, so the engine can be started again.
func (e *Engine) StartMatch() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.started {
		return ErrMatchStarted
	}

	for i := 0; i < HandSize; i++ {
		for _, side := range []Side{Human, Opponent} {
			card, err := e.draw.Take()
			if err != nil {
				e.undeal()
				return fmt.Errorf("dealing: %w", err)
			}
			if err := e.hands[side].Add(card); err != nil {
				e.undeal(card)
				return err
			}
		}
	}

	var rejected []deck.Card
	for {
		card, err := e.draw.Take()
		if err != nil {
			e.undeal(rejected...)
			return fmt.Errorf("turning up first card: %w", err)
		}
		if card.Value.IsNumber() {
			if err := e.discard.Add(card); err != nil {
				e.undeal(append(rejected, card)...)
				return err
			}
			break
		}
		rejected = append(rejected, card)
	}
	e.draw.Refill(rejected)

	e.state = MatchState{Turn: Human}
	e.started = true

	e.logger.Info("Match started",
		"match", e.matchID,
		"cards", e.total,
		"redrawn", len(rejected))
	return nil
}

// undeal puts the hands, the discard pile and extra back into the draw pile.
func (e *Engine) undeal(extra ...deck.Card) {
	cards := append(e.hands[Human].Cards(), e.hands[Opponent].Cards()...)
	cards = append(cards, e.discard.Cards()...)
	cards = append(cards, extra...)

	e.hands = [2]*deck.Hand{deck.NewHand(), deck.NewHand()}
	e.discard = deck.NewDiscardPile()
	e.draw.Refill(cards)
	e.logger.Debug("Deal abandoned", "returned", len(cards))
}

// Play puts card on the discard pile without any rule checks.
func (e *Engine) Play(card deck.Card) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.over {
		return ErrMatchOver
	}
	return e.discard.Add(card)
}

// ResolveSpecial applies the effect of card, assumed already on top of the
// discard pile, as played by acting.
func (e *Engine) ResolveSpecial(card deck.Card, acting Side) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkActive(); err != nil {
		return err
	}
	return e.resolve(card, acting)
}

// HumanPlay plays the card at index from the human's hand.
func (e *Engine) HumanPlay(index int) (deck.Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkHumanTurn(); err != nil {
		return deck.Card{}, err
	}
	card, err := e.hands[Human].Get(index)
	if err != nil {
		return deck.Card{}, err
	}
	top, err := e.discard.Top()
	if err != nil {
		return deck.Card{}, err
	}
	if !CanPlay(card, top) {
		return deck.Card{}, fmt.Errorf("%w: %s on %s", ErrIllegalMove, card, top)
	}
	if err := e.playFromHand(Human, index); err != nil {
		return deck.Card{}, err
	}
	return card, nil
}

// HumanDraw draws one card for the human. A playable card keeps the turn so
// it can be played; anything else passes the turn.
func (e *Engine) HumanDraw() (deck.Card, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkHumanTurn(); err != nil {
		return deck.Card{}, err
	}
	if e.state.HumanHasDrawn {
		return deck.Card{}, ErrAlreadyDrew
	}
	if e.drawInto(Human, 1) == 0 {
		return deck.Card{}, deck.ErrOutOfCardsInDeck
	}

	cards := e.hands[Human].Cards()
	drawn := cards[len(cards)-1]
	top, err := e.discard.Top()
	if err != nil {
		return deck.Card{}, err
	}
	if CanPlay(drawn, top) {
		e.state.HumanHasDrawn = true
	} else {
		e.setTurn(Opponent)
	}
	return drawn, nil
}

// ChooseColor sets the colour of the human's pending wild card. A WILD then
// passes the turn, a +4 keeps it.
func (e *Engine) ChooseColor(color deck.Color) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	if !e.state.AwaitingColor {
		return ErrNotAwaitingColor
	}
	if !color.IsStandard() {
		return fmt.Errorf("%w: %s", deck.ErrIllegalCardColor, color)
	}
	if err := e.discard.SetTopColor(color); err != nil {
		return err
	}

	pending := e.state.PendingWild
	e.state.AwaitingColor = false
	e.state.PendingWild = 0
	if pending == deck.Wild {
		e.setTurn(Opponent)
	} else {
		e.setTurn(Human)
	}
	return nil
}

// OpponentMove plays the opponent's first legal card, or draws one and
// passes the turn when nothing fits.
func (e *Engine) OpponentMove() (Move, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActive(); err != nil {
		return Move{}, err
	}
	if e.state.Turn != Opponent {
		return Move{}, ErrNotYourTurn
	}
	top, err := e.discard.Top()
	if err != nil {
		return Move{}, err
	}

	for i, card := range e.hands[Opponent].Cards() {
		if !CanPlay(card, top) {
			continue
		}
		if err := e.playFromHand(Opponent, i); err != nil {
			return Move{}, err
		}
		played, err := e.discard.Top()
		if err != nil {
			return Move{}, err
		}
		return Move{Side: Opponent, Played: played}, nil
	}

	n := e.drawInto(Opponent, 1)
	e.setTurn(Human)
	return Move{Side: Opponent, Drew: n}, nil
}

// DeclareLastCard consumes a pending declaration. For Human it is the human
// announcing their own last card; for Opponent it records that the opponent
// announced in time.
func (e *Engine) DeclareLastCard(side Side) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	switch side {
	case Human:
		if !e.state.HumanCanDeclareSelf || e.hands[Human].Len() != 1 {
			return ErrCannotDeclare
		}
		e.state.HumanCanDeclareSelf = false
	case Opponent:
		if !e.state.HumanCanDeclareOnOpponent {
			return ErrCannotDeclare
		}
		e.state.HumanCanDeclareOnOpponent = false
	default:
		return fmt.Errorf("game: invalid side %d", side)
	}
	e.logger.Debug("Last card declared", "side", side)
	return nil
}

// CallOut penalises target with one card for failing to declare and returns
// how many cards were actually drawn.
func (e *Engine) CallOut(target Side) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkActive(); err != nil {
		return 0, err
	}
	switch target {
	case Human:
		// a hand that left one card, by playing out or drawing, owes nothing
		if !e.state.HumanCanDeclareSelf || e.hands[Human].Len() != 1 {
			e.state.HumanCanDeclareSelf = false
			return 0, ErrCannotDeclare
		}
		e.state.HumanCanDeclareSelf = false
	case Opponent:
		if !e.state.HumanCanDeclareOnOpponent || e.hands[Opponent].Len() != 1 {
			e.state.HumanCanDeclareOnOpponent = false
			return 0, ErrCannotDeclare
		}
		e.state.HumanCanDeclareOnOpponent = false
	default:
		return 0, fmt.Errorf("game: invalid side %d", target)
	}
	n := e.drawInto(target, 1)
	e.logger.Info("Called out", "side", target, "drew", n)
	return n, nil
}

// RecycleDiscards moves every discard except the top back into the draw
// pile, resetting wild colours, and returns how many moved.
func (e *Engine) RecycleDiscards() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.recycle()
}

// Conclude decides the match if it is over. The first call that finds a
// terminal position marks the match over and returns the result; every call
// after that returns false.
func (e *Engine) Conclude() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started || e.over {
		return Result{}, false
	}

	humanCards := e.hands[Human].Len()
	opponentCards := e.hands[Opponent].Len()
	result := Result{
		HumanScore:    e.hands[Human].Points(),
		OpponentScore: e.hands[Opponent].Points(),
	}

	switch {
	case humanCards == 0:
		result.Winner, result.Reason = Human, ReasonEmptyHand
	case opponentCards == 0:
		result.Winner, result.Reason = Opponent, ReasonEmptyHand
	case e.draw.IsEmpty():
		result.Reason = ReasonScore
		// ties go to the human
		if result.OpponentScore < result.HumanScore {
			result.Winner = Opponent
		} else {
			result.Winner = Human
		}
	default:
		return Result{}, false
	}

	e.over = true
	e.logger.Info("Match over",
		"match", e.matchID,
		"winner", result.Winner,
		"reason", result.Reason,
		"human_score", result.HumanScore,
		"opponent_score", result.OpponentScore)
	return result, true
}

// IsOver reports whether a result has been concluded.
func (e *Engine) IsOver() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.over
}

// IsTurn reports whether side holds the turn in a running match.
func (e *Engine) IsTurn(side Side) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started || e.over {
		return false
	}
	return e.state.Turn == side
}

// CardsHeld returns the number of cards side holds.
func (e *Engine) CardsHeld(side Side) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hands[side].Len()
}

// State returns a copy of the match state.
func (e *Engine) State() MatchState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// View returns a consistent read-only copy for rendering.
func (e *Engine) View() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	v := View{
		MatchID:       e.matchID,
		Started:       e.started,
		Over:          e.over,
		HumanHand:     e.hands[Human].Cards(),
		OpponentCount: e.hands[Opponent].Len(),
		DrawCount:     e.draw.Len(),
		DiscardCount:  e.discard.Len(),
		State:         e.state,
	}
	if top, err := e.discard.Top(); err == nil {
		v.Top = top
	}
	return v
}

// Snapshot captures the match for persistence.
func (e *Engine) Snapshot() (Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		return Snapshot{}, ErrMatchNotStarted
	}
	if e.over {
		return Snapshot{}, ErrMatchOver
	}
	return Snapshot{
		MatchID:      e.matchID,
		DrawPile:     e.draw.Cards(),
		DiscardPile:  e.discard.Cards(),
		HumanHand:    e.hands[Human].Cards(),
		OpponentHand: e.hands[Opponent].Cards(),
		State:        e.state,
	}, nil
}

// Restore replaces the engine's match with s.
func (e *Engine) Restore(s Snapshot) error {
	if len(s.DiscardPile) == 0 {
		return deck.ErrEmptyDiscardPile
	}
	if !s.State.Turn.Valid() {
		return fmt.Errorf("%w: invalid turn %d", ErrBadSnapshot, s.State.Turn)
	}
	if s.State.AwaitingColor {
		top := s.DiscardPile[len(s.DiscardPile)-1]
		if !top.Value.IsWild() || top.Value != s.State.PendingWild || s.State.Turn != Human {
			return fmt.Errorf("%w: colour pending but %s is on top", ErrBadSnapshot, top)
		}
	}
	for _, pile := range [][]deck.Card{s.DrawPile, s.DiscardPile, s.HumanHand, s.OpponentHand} {
		for _, card := range pile {
			if card.IsZero() {
				return deck.ErrNullCard
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.draw = deck.RestoreDrawPile(s.DrawPile, e.rng)
	e.discard = deck.NewDiscardPile(s.DiscardPile...)
	e.hands = [2]*deck.Hand{deck.NewHand(s.HumanHand...), deck.NewHand(s.OpponentHand...)}
	e.state = s.State
	e.total = s.Total()
	e.started = true
	e.over = false
	if s.MatchID != "" {
		e.matchID = s.MatchID
	}

	e.logger.Info("Match restored", "match", e.matchID, "cards", e.total, "turn", e.state.Turn)
	return nil
}

// ValidateConservation checks that no card was lost or duplicated.
func (e *Engine) ValidateConservation() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	found := e.draw.Len() + e.discard.Len() + e.hands[Human].Len() + e.hands[Opponent].Len()
	if found != e.total {
		return fmt.Errorf("%w: expected %d cards, found %d", ErrConservation, e.total, found)
	}
	return nil
}

func (e *Engine) checkActive() error {
	if !e.started {
		return ErrMatchNotStarted
	}
	if e.over {
		return ErrMatchOver
	}
	return nil
}

func (e *Engine) checkHumanTurn() error {
	if err := e.checkActive(); err != nil {
		return err
	}
	if e.state.Turn != Human {
		return ErrNotYourTurn
	}
	if e.state.AwaitingColor {
		return ErrAwaitingColor
	}
	return nil
}

func (e *Engine) playFromHand(side Side, index int) error {
	card, err := e.hands[side].Remove(index)
	if err != nil {
		return err
	}
	if err := e.discard.Add(card); err != nil {
		return err
	}
	if e.hands[side].Len() == 1 {
		if side == Human {
			e.state.HumanCanDeclareSelf = true
		} else {
			e.state.HumanCanDeclareOnOpponent = true
		}
	}
	e.logger.Debug("Card played", "side", side, "card", card, "left", e.hands[side].Len())
	return e.resolve(card, side)
}

func (e *Engine) resolve(card deck.Card, acting Side) error {
	if !card.Value.Valid() {
		return fmt.Errorf("%w: %d", deck.ErrIllegalCardValue, card.Value)
	}
	return effects[card.Value.Kind()](e, acting)
}

// setTurn hands the turn to side. A fresh human turn may draw again.
func (e *Engine) setTurn(side Side) {
	e.state.Turn = side
	e.state.HumanHasDrawn = false
}

func (e *Engine) awaitColor(pending deck.Value) {
	e.state.Turn = Human
	e.state.HumanHasDrawn = false
	e.state.AwaitingColor = true
	e.state.PendingWild = pending
}

func (e *Engine) pickColor() error {
	color := deck.StandardColors[e.rng.IntN(len(deck.StandardColors))]
	return e.discard.SetTopColor(color)
}

// drawInto moves up to n cards into side's hand, recycling the discard pile
// when the draw pile runs dry. It returns how many were drawn.
func (e *Engine) drawInto(side Side, n int) int {
	drawn := 0
	for drawn < n {
		if e.draw.IsEmpty() && e.recycle() == 0 {
			e.logger.Warn("No cards left to draw", "side", side, "wanted", n, "drawn", drawn)
			break
		}
		card, err := e.draw.Take()
		if err != nil {
			break
		}
		if err := e.hands[side].Add(card); err != nil {
			break
		}
		drawn++
	}
	return drawn
}

func (e *Engine) recycle() int {
	cards := e.discard.CollectAllExceptTop(true)
	e.draw.Refill(cards)
	if len(cards) > 0 {
		e.logger.Debug("Recycled discard pile", "cards", len(cards))
	}
	return len(cards)
}
