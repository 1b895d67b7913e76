package game

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// Declaration is a human announcement sent to the call-out monitor.
type Declaration int

const (
	// SelfDeclared: the human announces their own last card.
	SelfDeclared Declaration = iota + 1
	// DeclaredOnOpponent: the human calls out the opponent's last card.
	DeclaredOnOpponent
)

func (d Declaration) String() string {
	switch d {
	case SelfDeclared:
		return "SELF_DECLARED"
	case DeclaredOnOpponent:
		return "DECLARED_ON_OPPONENT"
	default:
		return fmt.Sprintf("declaration(%d)", int(d))
	}
}

// Side returns the side whose last card the declaration concerns.
func (d Declaration) Side() Side {
	if d == DeclaredOnOpponent {
		return Opponent
	}
	return Human
}

// Notifier receives asynchronous updates from the engine's workers.
// Implementations must not block.
type Notifier interface {
	OnStateChanged()
	OnStatusMessage(text string)
	OnMatchOver(result Result)
}

// MultiNotifier fans each notification out to several notifiers in order.
type MultiNotifier []Notifier

// NewMultiNotifier skips nil entries.
func NewMultiNotifier(notifiers ...Notifier) MultiNotifier {
	m := make(MultiNotifier, 0, len(notifiers))
	for _, n := range notifiers {
		if n != nil {
			m = append(m, n)
		}
	}
	return m
}

func (m MultiNotifier) OnStateChanged() {
	for _, n := range m {
		n.OnStateChanged()
	}
}

func (m MultiNotifier) OnStatusMessage(text string) {
	for _, n := range m {
		n.OnStatusMessage(text)
	}
}

func (m MultiNotifier) OnMatchOver(result Result) {
	for _, n := range m {
		n.OnMatchOver(result)
	}
}

// LogNotifier writes notifications to a logger.
type LogNotifier struct {
	logger *log.Logger
}

func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) OnStateChanged() {}

func (l *LogNotifier) OnStatusMessage(text string) {
	l.logger.Info(text)
}

func (l *LogNotifier) OnMatchOver(result Result) {
	l.logger.Info("Result", "winner", result.Winner, "reason", result.Reason,
		"human_score", result.HumanScore, "opponent_score", result.OpponentScore)
}

// NopNotifier discards everything.
type NopNotifier struct{}

func (NopNotifier) OnStateChanged()        {}
func (NopNotifier) OnStatusMessage(string) {}
func (NopNotifier) OnMatchOver(Result)     {}
