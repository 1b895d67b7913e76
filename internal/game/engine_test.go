package game

import (
	"errors"
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/randutil"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

// stacked builds an unshuffled draw pile that deals texts in order.
func stacked(texts ...string) *deck.DrawPile {
	cards := deck.MustParseCards(texts...)
	slices.Reverse(cards)
	return deck.NewDrawPile(cards, nil)
}

// position describes a mid-match layout. The last draw card is drawn first
// and the last discard is on top.
type position struct {
	draw     []string
	discard  []string
	human    []string
	opponent []string
	state    MatchState
}

func (p position) snapshot() Snapshot {
	return Snapshot{
		MatchID:      "test-match",
		DrawPile:     deck.MustParseCards(p.draw...),
		DiscardPile:  deck.MustParseCards(p.discard...),
		HumanHand:    deck.MustParseCards(p.human...),
		OpponentHand: deck.MustParseCards(p.opponent...),
		State:        p.state,
	}
}

func restored(t *testing.T, p position) *Engine {
	t.Helper()
	e := NewEngine(deck.NewDrawPile(nil, nil), randutil.NewLocked(1), testLogger())
	require.NoError(t, e.Restore(p.snapshot()))
	return e
}

var filler = []string{"GREEN 0", "GREEN 1", "GREEN 2", "GREEN 4", "GREEN 6", "GREEN 8"}

func TestStartMatchDeal(t *testing.T) {
	pile := stacked(
		"RED 1", "BLUE 1", "RED 3", "BLUE 3", "RED 5",
		"BLUE 5", "RED 7", "BLUE 7", "RED 9", "BLUE 9",
		"BLUE SKIP", "BLACK WILD", "GREEN 7", "YELLOW 9",
	)
	e := NewEngine(pile, randutil.NewLocked(1), testLogger())
	require.NoError(t, e.StartMatch())

	view := e.View()
	assert.True(t, view.Started)
	assert.Equal(t, deck.MustParseCards("RED 1", "RED 3", "RED 5", "RED 7", "RED 9"), view.HumanHand)
	assert.Equal(t, 5, view.OpponentCount)
	assert.Equal(t, 1, view.DiscardCount)
	assert.Equal(t, "GREEN 7", view.Top.String())
	assert.True(t, view.Top.Value.IsNumber())

	// the two rejected specials go back under the remaining card
	assert.Equal(t, 3, view.DrawCount)
	assert.Equal(t, Human, view.State.Turn)
	assert.NoError(t, e.ValidateConservation())

	assert.ErrorIs(t, e.StartMatch(), ErrMatchStarted)
}

func TestStartMatchWithStandardSet(t *testing.T) {
	e, err := NewStandardEngine(deck.Classic, randutil.NewLocked(42), testLogger())
	require.NoError(t, err)
	require.NoError(t, e.StartMatch())

	view := e.View()
	assert.Len(t, view.HumanHand, HandSize)
	assert.Equal(t, HandSize, view.OpponentCount)
	assert.Equal(t, 1, view.DiscardCount)
	assert.True(t, view.Top.Value.IsNumber())
	assert.Equal(t, 108-2*HandSize-1, view.DrawCount)
	assert.NotEmpty(t, view.MatchID)
}

func TestStartMatchShortPile(t *testing.T) {
	e := NewEngine(stacked("RED 1", "RED 2", "RED 3"), randutil.NewLocked(1), testLogger())
	assert.ErrorIs(t, e.StartMatch(), deck.ErrOutOfCardsInDeck)
}

func TestFailedStartReturnsDealtCards(t *testing.T) {
	// ten cards deal the hands, then only a special is left to turn up
	pile := stacked(append(slices.Clone(filler), "RED 3", "RED 5", "RED 7", "RED 9", "RED SKIP")...)
	e := NewEngine(pile, randutil.NewLocked(1), testLogger())

	assert.ErrorIs(t, e.StartMatch(), deck.ErrOutOfCardsInDeck)
	assert.Equal(t, 11, pile.Len())
	assert.Zero(t, e.CardsHeld(Human))
	assert.Zero(t, e.CardsHeld(Opponent))
	assert.NoError(t, e.ValidateConservation())

	// the skip now sits on top and is dealt, leaving a number to turn up
	require.NoError(t, e.StartMatch())
	assert.Equal(t, HandSize, e.CardsHeld(Human))
	assert.Equal(t, HandSize, e.CardsHeld(Opponent))
	assert.Zero(t, pile.Len())
	assert.NoError(t, e.ValidateConservation())
}

func TestOperationsBeforeStart(t *testing.T) {
	e := NewEngine(stacked(filler...), randutil.NewLocked(1), testLogger())

	_, err := e.HumanPlay(0)
	assert.ErrorIs(t, err, ErrMatchNotStarted)
	_, err = e.HumanDraw()
	assert.ErrorIs(t, err, ErrMatchNotStarted)
	_, err = e.OpponentMove()
	assert.ErrorIs(t, err, ErrMatchNotStarted)
	_, err = e.Snapshot()
	assert.ErrorIs(t, err, ErrMatchNotStarted)

	_, done := e.Conclude()
	assert.False(t, done)
	assert.False(t, e.IsTurn(Human))
}

func TestCanPlay(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		top       string
		expected  bool
	}{
		{"same colour", "RED 2", "RED 9", true},
		{"same value", "BLUE 9", "RED 9", true},
		{"same action", "BLUE SKIP", "RED SKIP", true},
		{"mismatch", "BLUE 2", "RED 9", false},
		{"wild on anything", "BLACK WILD", "RED 9", true},
		{"draw four on anything", "BLACK +4", "GREEN +2", true},
		{"anything on draw four", "RED 3", "GREEN +4", true},
		{"colour of chosen wild", "GREEN 3", "GREEN WILD", true},
		{"other colour on chosen wild", "RED 3", "GREEN WILD", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := deck.MustParseCards(tt.candidate)[0]
			top := deck.MustParseCards(tt.top)[0]
			assert.Equal(t, tt.expected, CanPlay(candidate, top))
		})
	}
}

func TestEveryKindHasAnEffect(t *testing.T) {
	for kind := deck.Kind(0); kind < deck.NumKinds; kind++ {
		assert.NotNil(t, effects[kind], "kind %d", kind)
	}
}

func TestHumanPlayTurnTransfer(t *testing.T) {
	tests := []struct {
		name          string
		card          string
		expectedTurn  Side
		opponentCards int
		awaiting      bool
	}{
		{name: "number passes", card: "RED 5", expectedTurn: Opponent, opponentCards: 2},
		{name: "skip keeps", card: "RED SKIP", expectedTurn: Human, opponentCards: 2},
		{name: "reserve keeps", card: "RED RESERVE", expectedTurn: Human, opponentCards: 2},
		{name: "draw two keeps", card: "RED +2", expectedTurn: Human, opponentCards: 4},
		{name: "draw four awaits colour", card: "BLACK +4", expectedTurn: Human, opponentCards: 6, awaiting: true},
		{name: "wild awaits colour", card: "BLACK WILD", expectedTurn: Human, opponentCards: 2, awaiting: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := restored(t, position{
				draw:     filler,
				discard:  []string{"YELLOW 0", "RED 3"},
				human:    []string{tt.card, "BLUE 9", "BLUE 8"},
				opponent: []string{"YELLOW 1", "YELLOW 2"},
			})

			card, err := e.HumanPlay(0)
			require.NoError(t, err)
			assert.Equal(t, tt.card, card.String())

			view := e.View()
			assert.Equal(t, tt.expectedTurn, view.State.Turn)
			assert.Equal(t, tt.awaiting, view.State.AwaitingColor)
			assert.Equal(t, tt.opponentCards, view.OpponentCount)
			assert.Equal(t, tt.card, view.Top.String())
			assert.NoError(t, e.ValidateConservation())
		})
	}
}

func TestChooseColor(t *testing.T) {
	t.Run("wild passes the turn", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLACK WILD", "BLUE 9", "BLUE 8"},
			opponent: []string{"YELLOW 1"},
		})
		assert.ErrorIs(t, e.ChooseColor(deck.Blue), ErrNotAwaitingColor)

		_, err := e.HumanPlay(0)
		require.NoError(t, err)

		_, err = e.HumanPlay(0)
		assert.ErrorIs(t, err, ErrAwaitingColor)
		_, err = e.HumanDraw()
		assert.ErrorIs(t, err, ErrAwaitingColor)

		assert.ErrorIs(t, e.ChooseColor(deck.Black), deck.ErrIllegalCardColor)
		require.NoError(t, e.ChooseColor(deck.Blue))

		view := e.View()
		assert.Equal(t, "BLUE WILD", view.Top.String())
		assert.Equal(t, Opponent, view.State.Turn)
		assert.False(t, view.State.AwaitingColor)
	})

	t.Run("draw four keeps the turn", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLACK +4", "BLUE 9", "BLUE 8"},
			opponent: []string{"YELLOW 1"},
		})
		_, err := e.HumanPlay(0)
		require.NoError(t, err)
		require.NoError(t, e.ChooseColor(deck.Green))

		view := e.View()
		assert.Equal(t, "GREEN +4", view.Top.String())
		assert.Equal(t, Human, view.State.Turn)
		assert.Equal(t, 5, view.OpponentCount)
	})
}

func TestDrawFourFreePlay(t *testing.T) {
	e := restored(t, position{
		draw:     filler,
		discard:  []string{"RED 3", "GREEN +4"},
		human:    []string{"BLUE 7", "BLUE 9"},
		opponent: []string{"YELLOW 1"},
	})

	top := e.View().Top
	assert.True(t, CanPlay(deck.MustParseCards("BLUE 7")[0], top))

	card, err := e.HumanPlay(0)
	require.NoError(t, err)
	assert.Equal(t, "BLUE 7", card.String())
}

func TestHumanPlayRejections(t *testing.T) {
	p := position{
		draw:     filler,
		discard:  []string{"RED 3"},
		human:    []string{"BLUE 5", "RED 9"},
		opponent: []string{"YELLOW 1"},
	}

	e := restored(t, p)
	_, err := e.HumanPlay(0)
	assert.ErrorIs(t, err, ErrIllegalMove)
	_, err = e.HumanPlay(2)
	assert.ErrorIs(t, err, deck.ErrInvalidHandIndex)
	assert.Equal(t, deck.MustParseCards("BLUE 5", "RED 9"), e.View().HumanHand)

	p.state.Turn = Opponent
	e = restored(t, p)
	_, err = e.HumanPlay(1)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = e.HumanDraw()
	assert.ErrorIs(t, err, ErrNotYourTurn)
}

func TestHumanDraw(t *testing.T) {
	t.Run("playable card keeps the turn", func(t *testing.T) {
		e := restored(t, position{
			draw:     []string{"GREEN 1", "RED 8"},
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5"},
			opponent: []string{"YELLOW 1", "YELLOW 2"},
		})

		card, err := e.HumanDraw()
		require.NoError(t, err)
		assert.Equal(t, "RED 8", card.String())
		assert.True(t, e.IsTurn(Human))
		assert.True(t, e.State().HumanHasDrawn)

		_, err = e.HumanDraw()
		assert.ErrorIs(t, err, ErrAlreadyDrew)

		_, err = e.HumanPlay(1)
		require.NoError(t, err)
		assert.True(t, e.IsTurn(Opponent))
	})

	t.Run("unplayable card passes the turn", func(t *testing.T) {
		e := restored(t, position{
			draw:     []string{"GREEN 1", "BLUE 8"},
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5"},
			opponent: []string{"YELLOW 1", "YELLOW 2"},
		})

		card, err := e.HumanDraw()
		require.NoError(t, err)
		assert.Equal(t, "BLUE 8", card.String())
		assert.True(t, e.IsTurn(Opponent))
		assert.False(t, e.State().HumanHasDrawn)
	})
}

func TestOpponentMove(t *testing.T) {
	t.Run("plays first legal card", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5", "BLUE 6"},
			opponent: []string{"BLUE 1", "RED 4", "RED 6"},
			state:    MatchState{Turn: Opponent},
		})

		_, err := e.OpponentMove()
		require.NoError(t, err)

		view := e.View()
		assert.Equal(t, "RED 4", view.Top.String())
		assert.Equal(t, 2, view.OpponentCount)
		assert.Equal(t, Human, view.State.Turn)
	})

	t.Run("draws without playing", func(t *testing.T) {
		e := restored(t, position{
			draw:     []string{"GREEN 1", "RED 5"},
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5", "BLUE 6"},
			opponent: []string{"BLUE 1", "BLUE 2"},
			state:    MatchState{Turn: Opponent},
		})

		move, err := e.OpponentMove()
		require.NoError(t, err)
		assert.True(t, move.Played.IsZero())
		assert.Equal(t, 1, move.Drew)
		assert.Equal(t, "opponent drew 1", move.String())

		view := e.View()
		assert.Equal(t, 3, view.OpponentCount)
		assert.Equal(t, "RED 3", view.Top.String())
		assert.Equal(t, Human, view.State.Turn)
	})

	t.Run("wild picks a colour and passes", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5", "BLUE 6"},
			opponent: []string{"BLUE 1", "BLACK WILD", "BLUE 2"},
			state:    MatchState{Turn: Opponent},
		})

		move, err := e.OpponentMove()
		require.NoError(t, err)
		assert.Equal(t, deck.Wild, move.Played.Value)
		assert.True(t, move.Played.Color.IsStandard())
		assert.Equal(t, Human, e.State().Turn)
		assert.False(t, e.State().AwaitingColor)
	})

	t.Run("draw four keeps the turn", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5", "BLUE 6"},
			opponent: []string{"BLACK +4", "BLUE 1", "BLUE 2"},
			state:    MatchState{Turn: Opponent},
		})

		move, err := e.OpponentMove()
		require.NoError(t, err)
		assert.True(t, move.Played.Color.IsStandard())

		view := e.View()
		assert.Len(t, view.HumanHand, 6)
		assert.Equal(t, Opponent, view.State.Turn)
	})

	t.Run("not its turn", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5"},
			opponent: []string{"RED 1"},
		})
		_, err := e.OpponentMove()
		assert.ErrorIs(t, err, ErrNotYourTurn)
	})
}

func TestLastCardArmsDeclarations(t *testing.T) {
	t.Run("opponent called out", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5", "BLUE 6"},
			opponent: []string{"RED 4", "BLUE 2"},
			state:    MatchState{Turn: Opponent},
		})
		_, err := e.CallOut(Opponent)
		assert.ErrorIs(t, err, ErrCannotDeclare)

		_, err = e.OpponentMove()
		require.NoError(t, err)
		assert.True(t, e.State().HumanCanDeclareOnOpponent)

		n, err := e.CallOut(Opponent)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 2, e.CardsHeld(Opponent))
		assert.False(t, e.State().HumanCanDeclareOnOpponent)

		_, err = e.CallOut(Opponent)
		assert.ErrorIs(t, err, ErrCannotDeclare)
	})

	t.Run("opponent declares in time", func(t *testing.T) {
		e := restored(t, position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"BLUE 5", "BLUE 6"},
			opponent: []string{"RED 4", "BLUE 2"},
			state:    MatchState{Turn: Opponent},
		})
		_, err := e.OpponentMove()
		require.NoError(t, err)

		require.NoError(t, e.DeclareLastCard(Opponent))
		_, err = e.CallOut(Opponent)
		assert.ErrorIs(t, err, ErrCannotDeclare)
		assert.Equal(t, 1, e.CardsHeld(Opponent))
	})

	t.Run("human declares or is penalised", func(t *testing.T) {
		p := position{
			draw:     filler,
			discard:  []string{"RED 3"},
			human:    []string{"RED 5", "BLUE 9"},
			opponent: []string{"YELLOW 1", "YELLOW 2"},
		}

		e := restored(t, p)
		assert.ErrorIs(t, e.DeclareLastCard(Human), ErrCannotDeclare)
		_, err := e.HumanPlay(0)
		require.NoError(t, err)
		require.NoError(t, e.DeclareLastCard(Human))
		assert.ErrorIs(t, e.DeclareLastCard(Human), ErrCannotDeclare)

		e = restored(t, p)
		_, err = e.HumanPlay(0)
		require.NoError(t, err)
		n, err := e.CallOut(Human)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		assert.Equal(t, 2, e.CardsHeld(Human))
		assert.NoError(t, e.ValidateConservation())
	})
}

func TestRecycleDiscards(t *testing.T) {
	e := restored(t, position{
		discard:  []string{"BLUE WILD", "YELLOW +4", "RED 3"},
		human:    []string{"BLUE 5"},
		opponent: []string{"YELLOW 1"},
	})

	assert.Equal(t, 2, e.RecycleDiscards())

	snap, err := e.Snapshot()
	require.NoError(t, err)
	assert.Len(t, snap.DrawPile, 2)
	assert.ElementsMatch(t, deck.MustParseCards("BLACK WILD", "BLACK +4"), snap.DrawPile)
	assert.Equal(t, deck.MustParseCards("RED 3"), snap.DiscardPile)

	assert.Equal(t, 0, e.RecycleDiscards())
	assert.NoError(t, e.ValidateConservation())
}

func TestDrawRecyclesWhenPileIsEmpty(t *testing.T) {
	e := restored(t, position{
		discard:  []string{"GREEN 7", "RED 3"},
		human:    []string{"BLUE 5", "BLUE 6"},
		opponent: []string{"YELLOW 1", "YELLOW 2"},
	})

	card, err := e.HumanDraw()
	require.NoError(t, err)
	assert.Equal(t, "GREEN 7", card.String())
	assert.Equal(t, 1, e.View().DiscardCount)
}

func TestPenaltyDegradesWhenCardsRunOut(t *testing.T) {
	e := restored(t, position{
		discard:  []string{"RED 3"},
		human:    []string{"RED +2", "BLUE 6"},
		opponent: []string{"YELLOW 1", "YELLOW 2"},
	})

	_, err := e.HumanPlay(0)
	require.NoError(t, err)

	// only RED 3 sits under the +2
	assert.Equal(t, 3, e.CardsHeld(Opponent))
	assert.Equal(t, 1, e.View().DiscardCount)
	assert.Equal(t, Human, e.State().Turn)
	assert.NoError(t, e.ValidateConservation())
}

func TestConclude(t *testing.T) {
	tests := []struct {
		name     string
		p        position
		expected Result
	}{
		{
			name: "human empty hand",
			p:    position{draw: filler, discard: []string{"RED 3"}, opponent: []string{"RED 1"}},
			expected: Result{Winner: Human, Reason: ReasonEmptyHand, OpponentScore: 1},
		},
		{
			name:     "human empty hand beats exhausted pile",
			p:        position{discard: []string{"RED 3"}, opponent: []string{"RED SKIP"}},
			expected: Result{Winner: Human, Reason: ReasonEmptyHand, OpponentScore: 20},
		},
		{
			name:     "opponent empty hand",
			p:        position{draw: filler, discard: []string{"RED 3"}, human: []string{"BLACK WILD"}},
			expected: Result{Winner: Opponent, Reason: ReasonEmptyHand, HumanScore: 50},
		},
		{
			name:     "lower human score",
			p:        position{discard: []string{"RED 3"}, human: []string{"RED 5"}, opponent: []string{"RED SKIP"}},
			expected: Result{Winner: Human, Reason: ReasonScore, HumanScore: 5, OpponentScore: 20},
		},
		{
			name:     "lower opponent score",
			p:        position{discard: []string{"RED 3"}, human: []string{"BLACK +4", "RED 2"}, opponent: []string{"RED 9"}},
			expected: Result{Winner: Opponent, Reason: ReasonScore, HumanScore: 52, OpponentScore: 9},
		},
		{
			name:     "tie goes to human",
			p:        position{discard: []string{"RED 3"}, human: []string{"RED 5"}, opponent: []string{"BLUE 5"}},
			expected: Result{Winner: Human, Reason: ReasonScore, HumanScore: 5, OpponentScore: 5},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := restored(t, tt.p)

			result, done := e.Conclude()
			require.True(t, done)
			assert.Equal(t, tt.expected, result)
			assert.True(t, e.IsOver())

			_, again := e.Conclude()
			assert.False(t, again, "a result is only reported once")
		})
	}
}

func TestConcludeRunningMatch(t *testing.T) {
	e := restored(t, position{
		draw:     filler,
		discard:  []string{"RED 3"},
		human:    []string{"RED 5"},
		opponent: []string{"BLUE 5"},
	})
	_, done := e.Conclude()
	assert.False(t, done)
	assert.False(t, e.IsOver())
}

func TestNoMovesAfterMatchOver(t *testing.T) {
	e := restored(t, position{
		discard:  []string{"RED 3"},
		human:    []string{"RED 5"},
		opponent: []string{"BLUE 5"},
	})
	_, done := e.Conclude()
	require.True(t, done)

	_, err := e.HumanPlay(0)
	assert.ErrorIs(t, err, ErrMatchOver)
	_, err = e.CallOut(Human)
	assert.ErrorIs(t, err, ErrMatchOver)
	_, err = e.Snapshot()
	assert.ErrorIs(t, err, ErrMatchOver)
	assert.False(t, e.IsTurn(Human))
}

func TestSnapshotRestoreResumesExactly(t *testing.T) {
	original, err := NewStandardEngine(deck.Compact, randutil.NewLocked(7), testLogger())
	require.NoError(t, err)
	require.NoError(t, original.StartMatch())

	snap, err := original.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, 54, snap.Total())

	resumed := NewEngine(deck.NewDrawPile(nil, nil), randutil.NewLocked(7), testLogger())
	require.NoError(t, resumed.Restore(snap))

	again, err := resumed.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, snap, again)
	assert.Equal(t, original.View(), resumed.View())
	assert.NoError(t, resumed.ValidateConservation())
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	e := NewEngine(deck.NewDrawPile(nil, nil), randutil.NewLocked(1), testLogger())

	assert.ErrorIs(t, e.Restore(Snapshot{HumanHand: deck.MustParseCards("RED 1")}), deck.ErrEmptyDiscardPile)

	snap := position{discard: []string{"RED 1"}}.snapshot()
	snap.HumanHand = []deck.Card{{}}
	assert.ErrorIs(t, e.Restore(snap), deck.ErrNullCard)

	snap = position{discard: []string{"RED 1"}, state: MatchState{Turn: Side(5)}}.snapshot()
	assert.ErrorIs(t, e.Restore(snap), ErrBadSnapshot)

	tests := []struct {
		name  string
		top   string
		state MatchState
	}{
		{"number on top", "RED 1", MatchState{Turn: Human, AwaitingColor: true, PendingWild: deck.Wild}},
		{"pending value differs", "BLACK +4", MatchState{Turn: Human, AwaitingColor: true, PendingWild: deck.Wild}},
		{"opponent to move", "BLACK WILD", MatchState{Turn: Opponent, AwaitingColor: true, PendingWild: deck.Wild}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := position{discard: []string{"RED 1", tt.top}, human: []string{"BLUE 2"}, state: tt.state}.snapshot()
			assert.ErrorIs(t, e.Restore(snap), ErrBadSnapshot)
		})
	}

	// a wild waiting for its colour resumes and can be settled
	e = restored(t, position{
		discard: []string{"RED 1", "BLACK WILD"},
		human:   []string{"BLUE 2"},
		state:   MatchState{Turn: Human, AwaitingColor: true, PendingWild: deck.Wild},
	})
	require.NoError(t, e.ChooseColor(deck.Blue))
	assert.Equal(t, Opponent, e.State().Turn)
}

func TestCallOutNeedsExactlyOneCard(t *testing.T) {
	tests := []struct {
		name  string
		human []string
	}{
		{"played out", nil},
		{"drew back up", []string{"BLUE 2", "BLUE 3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := restored(t, position{
				draw:     filler,
				discard:  []string{"RED 1"},
				human:    tt.human,
				opponent: []string{"YELLOW 1", "YELLOW 2"},
				state:    MatchState{Turn: Human, HumanCanDeclareSelf: true},
			})

			n, err := e.CallOut(Human)
			assert.ErrorIs(t, err, ErrCannotDeclare)
			assert.Zero(t, n)
			assert.Equal(t, len(tt.human), e.CardsHeld(Human))
			assert.False(t, e.State().HumanCanDeclareSelf)
		})
	}

	e := restored(t, position{
		draw:     filler,
		discard:  []string{"RED 1"},
		human:    []string{"BLUE 2"},
		opponent: []string{"YELLOW 1", "YELLOW 2", "YELLOW 3"},
		state:    MatchState{Turn: Human, HumanCanDeclareOnOpponent: true},
	})
	_, err := e.CallOut(Opponent)
	assert.ErrorIs(t, err, ErrCannotDeclare)
	assert.Equal(t, 3, e.CardsHeld(Opponent))
	assert.False(t, e.State().HumanCanDeclareOnOpponent)
}

// TestFullMatchConservesCards plays seeded matches to the end with a naive
// human strategy and checks card conservation after every step.
func TestFullMatchConservesCards(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		e, err := NewStandardEngine(deck.Compact, randutil.NewLocked(seed), testLogger())
		require.NoError(t, err)
		require.NoError(t, e.StartMatch())

		finished := false
		for step := 0; step < 2000 && !finished; step++ {
			if _, done := e.Conclude(); done {
				finished = true
				break
			}

			view := e.View()
			switch {
			case view.State.Turn == Opponent:
				_, err = e.OpponentMove()
			case view.State.AwaitingColor:
				err = e.ChooseColor(deck.Red)
			default:
				err = humanStep(e, view)
			}
			require.NoError(t, err, "seed %d step %d", seed, step)

			state := e.State()
			if state.HumanCanDeclareOnOpponent {
				if _, err := e.CallOut(Opponent); !errors.Is(err, ErrCannotDeclare) {
					require.NoError(t, err)
				}
			}
			if state.HumanCanDeclareSelf {
				if err := e.DeclareLastCard(Human); !errors.Is(err, ErrCannotDeclare) {
					require.NoError(t, err)
				}
			}
			require.NoError(t, e.ValidateConservation(), "seed %d step %d", seed, step)
		}
		assert.True(t, finished, "seed %d did not finish", seed)
	}
}

func humanStep(e *Engine, view View) error {
	for i, card := range view.HumanHand {
		if CanPlay(card, view.Top) {
			_, err := e.HumanPlay(i)
			return err
		}
	}
	_, err := e.HumanDraw()
	return err
}
