package randutil

import (
	rand "math/rand/v2"
	"sync"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG seeds are derived from the one value so call sites only carry a
// single seed around.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// Seed returns seed unchanged unless it is zero, in which case a time based
// seed is returned. Zero is the "pick one for me" value on the command line.
func Seed(seed int64) int64 {
	if seed != 0 {
		return seed
	}
	return time.Now().UnixNano()
}

// Locked wraps a *rand.Rand so it can be shared between the engine and the
// background workers. rand.Rand itself is not safe for concurrent use.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewLocked returns a goroutine-safe source seeded from seed.
func NewLocked(seed int64) *Locked {
	return &Locked{r: New(seed)}
}

// IntN returns a uniform int in [0, n).
func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Shuffle permutes n elements using swap.
func (l *Locked) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// Jitter returns a random duration in [min, max]. A max below min yields min.
func (l *Locked) Jitter(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return min + time.Duration(l.r.Int64N(int64(max-min)+1))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
