// Package guard provides single-slot admission control for broadcast
// cycles: at most one execution in flight, plus a minimum interval
// between admitted executions. A rejected request is dropped, not
// queued; the next trigger simply tries again.
package guard

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	// DefaultWaitTimeout bounds how long an admission request waits for
	// the slot before giving up.
	DefaultWaitTimeout = 5 * time.Second
	// DefaultMinInterval is the debounce window between admitted runs.
	DefaultMinInterval = time.Minute
)

// Guard serializes and debounces executions of one guarded operation.
// Create one Guard per logical operation; the scheduled broadcast and
// the on-demand citation each get their own.
type Guard struct {
	name        string
	log         *zap.Logger
	clock       clockwork.Clock
	slot        chan struct{} // capacity 1; holding a token = running
	waitTimeout time.Duration
	minInterval time.Duration

	mu      sync.Mutex
	lastRun time.Time
}

// New creates a Guard. minInterval <= 0 disables the debounce.
func New(name string, minInterval time.Duration, log *zap.Logger, clock clockwork.Clock) *Guard {
	return &Guard{
		name:        name,
		log:         log,
		clock:       clock,
		slot:        make(chan struct{}, 1),
		waitTimeout: DefaultWaitTimeout,
		minInterval: minInterval,
	}
}

// Do runs fn if admitted and reports whether it ran. Admission fails
// when another execution holds the slot past the bounded wait, when the
// debounce window since the previous admitted run has not elapsed, or
// when ctx is done. The slot is released on every exit path of fn.
func (g *Guard) Do(ctx context.Context, fn func(context.Context)) bool {
	if g.debounced() {
		g.log.Debug("guard rejected: debounce window active", zap.String("guard", g.name))
		return false
	}

	timer := g.clock.NewTimer(g.waitTimeout)
	defer timer.Stop()

	select {
	case g.slot <- struct{}{}:
	case <-timer.Chan():
		g.log.Debug("guard rejected: busy past wait timeout", zap.String("guard", g.name))
		return false
	case <-ctx.Done():
		return false
	}
	defer func() { <-g.slot }()

	// Re-check after the wait: the run we waited behind counts against
	// the debounce window too.
	g.mu.Lock()
	if g.minInterval > 0 && !g.lastRun.IsZero() && g.clock.Since(g.lastRun) < g.minInterval {
		g.mu.Unlock()
		g.log.Debug("guard rejected: debounce window active", zap.String("guard", g.name))
		return false
	}
	g.lastRun = g.clock.Now()
	g.mu.Unlock()

	fn(ctx)
	return true
}

func (g *Guard) debounced() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minInterval > 0 && !g.lastRun.IsZero() && g.clock.Since(g.lastRun) < g.minInterval
}
