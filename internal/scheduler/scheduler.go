// Package scheduler runs periodic maintenance for the in-memory cache.
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Purger drops stale entries and reports how many were removed.
type Purger interface {
	PurgeExpired() int
	Len() int
}

// Scheduler wraps a cron runner for cache maintenance jobs.
type Scheduler struct {
	cron *cron.Cron
}

// New creates a Scheduler that purges p on the given cron spec
// (standard five-field syntax or descriptors such as "@every 10m").
func New(spec string, p Purger) (*Scheduler, error) {
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { PurgeOnce(p) }); err != nil {
		return nil, fmt.Errorf("invalid purge schedule %q: %w", spec, err)
	}
	return &Scheduler{cron: c}, nil
}

// Start runs the jobs in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running purge to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// PurgeOnce drops stale entries from p and logs the result.
func PurgeOnce(p Purger) int {
	removed := p.PurgeExpired()
	slog.Info("cache purge", "removed", removed, "remaining", p.Len())
	return removed
}
