package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/uno-cli/internal/game"
)

// Notification messages delivered to the model.
type (
	stateChangedMsg struct{}
	statusMsg       string
	matchOverMsg    struct{ result game.Result }
)

// notificationsMsg carries every notification queued since the last wait.
type notificationsMsg []tea.Msg

// Bridge is a game.Notifier that queues worker notifications for the
// Bubble Tea program. It never blocks the caller, so workers and session
// commands issued from Update can notify freely.
type Bridge struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

var _ game.Notifier = (*Bridge)(nil)

// NewBridge creates an empty bridge.
func NewBridge() *Bridge {
	return &Bridge{wake: make(chan struct{}, 1)}
}

func (b *Bridge) OnStateChanged() {
	b.push(stateChangedMsg{})
}

func (b *Bridge) OnStatusMessage(text string) {
	b.push(statusMsg(text))
}

func (b *Bridge) OnMatchOver(result game.Result) {
	b.push(matchOverMsg{result: result})
}

func (b *Bridge) push(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
		// a wake up is already pending
	}
}

// Wait returns a command that blocks until notifications are queued and
// delivers them in order. The model issues it again after each delivery.
func (b *Bridge) Wait() tea.Cmd {
	return func() tea.Msg {
		<-b.wake
		b.mu.Lock()
		defer b.mu.Unlock()
		msgs := b.queue
		b.queue = nil
		return notificationsMsg(msgs)
	}
}
