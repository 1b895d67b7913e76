// Package worker runs the background loops that drive a match: the
// computer opponent, the last-card call-out monitor and the win watcher.
//
// Each worker blocks only on clock sleeps and exits cleanly when its context
// is cancelled. Engine errors are logged and the loop carries on.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/coder/quartz"
)

// ErrWorkerInit is returned by constructors when a collaborator is missing.
var ErrWorkerInit = errors.New("worker: missing collaborator")

// Timing holds the delays used by the workers.
type Timing struct {
	// OpponentThink is the fixed pause before the opponent moves.
	OpponentThink time.Duration
	// OpponentIdle is how often the opponent checks for its turn.
	OpponentIdle time.Duration
	// CallOutCountdown is how long a side has to declare its last card.
	CallOutCountdown time.Duration
	// CallOutPollMax and WinPollMax bound the randomized poll intervals.
	// Each poll waits between half the bound and the bound.
	CallOutPollMax time.Duration
	WinPollMax     time.Duration
}

// DefaultTiming returns the delays used when nothing is configured.
func DefaultTiming() Timing {
	return Timing{
		OpponentThink:    2 * time.Second,
		OpponentIdle:     50 * time.Millisecond,
		CallOutCountdown: 5 * time.Second,
		CallOutPollMax:   500 * time.Millisecond,
		WinPollMax:       250 * time.Millisecond,
	}
}

// sleep waits d on clock. It returns false if ctx ended first.
func sleep(ctx context.Context, clock quartz.Clock, d time.Duration, tags ...string) bool {
	timer := clock.NewTimer(d, tags...)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
