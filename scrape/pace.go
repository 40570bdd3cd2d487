package scrape

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/fwojciec/biblefetch"
)

// DefaultPauseEvery is the number of completed requests between long pauses.
const DefaultPauseEvery = 25

// DefaultPauses returns the long pause lengths, one of which is picked at random.
func DefaultPauses() []time.Duration {
	return []time.Duration{45 * time.Second, 62 * time.Second, 53 * time.Second, 57 * time.Second}
}

// Default bounds of the randomized delay between sequential requests.
const (
	DefaultMinJitter = 500 * time.Millisecond
	DefaultMaxJitter = 1500 * time.Millisecond
)

var _ biblefetch.Pacer = (*EveryNth)(nil)

// EveryNth pauses after every Nth completed request. It is a fixed schedule:
// it does not observe server responses.
type EveryNth struct {
	// N is the request interval. Zero or negative disables pausing.
	N int

	// Pauses are the candidate pause lengths.
	Pauses []time.Duration

	// Rand returns a number in [0, n). Defaults to math/rand/v2.IntN.
	Rand func(n int) int
}

// NewEveryNth returns a pacer that pauses every n requests for one of DefaultPauses.
func NewEveryNth(n int) *EveryNth {
	return &EveryNth{N: n, Pauses: DefaultPauses()}
}

// Pause reports whether the nth request should be followed by a pause.
func (p *EveryNth) Pause(n int) (time.Duration, bool) {
	if p.N <= 0 || n <= 0 || n%p.N != 0 || len(p.Pauses) == 0 {
		return 0, false
	}
	pick := rand.IntN
	if p.Rand != nil {
		pick = p.Rand
	}
	return p.Pauses[pick(len(p.Pauses))], true
}

// Counter counts completed requests across goroutines.
// Increments are serialized by a mutex so no value is skipped or repeated.
type Counter struct {
	mu sync.Mutex
	n  int
}

// Increment adds one and returns the new count.
func (c *Counter) Increment() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

// Value returns the current count.
func (c *Counter) Value() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep blocks for d or until ctx is done, returning the context error in
// the latter case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// UniformJitter returns a function yielding durations uniformly distributed in [lo, hi).
func UniformJitter(lo, hi time.Duration) func() time.Duration {
	if hi <= lo {
		return func() time.Duration { return lo }
	}
	return func() time.Duration {
		return lo + rand.N(hi-lo)
	}
}
