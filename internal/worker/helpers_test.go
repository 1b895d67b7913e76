package worker

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/require"

	"github.com/lox/uno-cli/internal/deck"
	"github.com/lox/uno-cli/internal/game"
	"github.com/lox/uno-cli/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

var fastTiming = Timing{
	OpponentThink:    time.Millisecond,
	OpponentIdle:     time.Millisecond,
	CallOutCountdown: 20 * time.Millisecond,
	CallOutPollMax:   4 * time.Millisecond,
	WinPollMax:       4 * time.Millisecond,
}

// recorder is a Notifier that keeps everything it was told, in order.
type recorder struct {
	mu       sync.Mutex
	trail    []string
	messages []string
	results  []game.Result
}

func (r *recorder) OnStateChanged() {}

func (r *recorder) OnStatusMessage(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, text)
	r.trail = append(r.trail, "message")
}

func (r *recorder) OnMatchOver(result game.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	r.trail = append(r.trail, "over")
}

func (r *recorder) mark(step string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trail = append(r.trail, step)
}

func (r *recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *recorder) Results() []game.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]game.Result(nil), r.results...)
}

func (r *recorder) Trail() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.trail...)
}

type layout struct {
	draw     []string
	discard  []string
	human    []string
	opponent []string
	turn     game.Side
}

var filler = []string{"GREEN 0", "GREEN 1", "GREEN 2", "GREEN 4", "GREEN 6", "GREEN 8"}

func newEngine(t *testing.T, l layout) *game.Engine {
	t.Helper()
	e := game.NewEngine(deck.NewDrawPile(nil, nil), randutil.NewLocked(1), testLogger())
	require.NoError(t, e.Restore(game.Snapshot{
		DrawPile:     deck.MustParseCards(l.draw...),
		DiscardPile:  deck.MustParseCards(l.discard...),
		HumanHand:    deck.MustParseCards(l.human...),
		OpponentHand: deck.MustParseCards(l.opponent...),
		State:        game.MatchState{Turn: l.turn},
	}))
	return e
}
