// Package scheduler fires broadcast cycles at fixed wall-clock times in
// a configured time zone. It is a pure trigger source: a declined cycle
// (guard busy or debounced) is the dispatcher's business, not ours.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"morningbot/internal/broadcast"
)

// Runner executes one broadcast cycle and reports whether it was admitted.
type Runner interface {
	Run(ctx context.Context, kind broadcast.Kind) bool
}

// Trigger binds a standard 5-field cron spec to a broadcast kind.
type Trigger struct {
	Spec string
	Kind broadcast.Kind
}

// Scheduler wraps a cron runner with TZ-aware daily triggers.
type Scheduler struct {
	c      *cron.Cron
	log    *zap.Logger
	runner Runner

	// set once in Start before the cron goroutine runs
	ctx context.Context
}

// New validates the triggers and builds the scheduler. The time zone
// must be a valid IANA name; every spec must parse.
func New(triggers []Trigger, tz string, runner Runner, log *zap.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}

	s := &Scheduler{
		c:      cron.New(cron.WithLocation(loc)),
		log:    log,
		runner: runner,
	}
	for _, t := range triggers {
		kind := t.Kind
		if _, err := s.c.AddFunc(t.Spec, func() { s.fire(kind) }); err != nil {
			return nil, fmt.Errorf("cron spec %q: %w", t.Spec, err)
		}
	}
	return s, nil
}

// Start begins firing triggers. ctx is handed to every cycle.
func (s *Scheduler) Start(ctx context.Context) {
	s.ctx = ctx
	s.c.Start()
	for _, e := range s.c.Entries() {
		s.log.Info("trigger scheduled", zap.Time("next", e.Next))
	}
}

// Stop stops firing new triggers and waits for an in-flight cycle to
// drain before returning.
func (s *Scheduler) Stop() {
	<-s.c.Stop().Done()
	s.log.Info("scheduler stopped")
}

// fire runs one cycle, fire-and-forget: the outcome stays inside the
// cycle's own error handling.
func (s *Scheduler) fire(kind broadcast.Kind) {
	if !s.runner.Run(s.ctx, kind) {
		s.log.Debug("trigger declined by guard", zap.String("kind", string(kind)))
	}
}
