package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Sweeper deletes rule sets older than the TTL from durable storage and
// the cache. It is owned by the Store, started exactly once, and never
// blocks request paths: sweeps run on the cron scheduler's own goroutine.
type Sweeper struct {
	store    *Store
	ttl      time.Duration
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	started bool
}

// newSweeper creates a sweeper for the store.
func newSweeper(store *Store, ttl time.Duration, schedule string) *Sweeper {
	return &Sweeper{
		store:    store,
		ttl:      ttl,
		schedule: schedule,
		cron:     cron.New(),
		logger:   slog.Default().With("component", "rules.store.sweeper"),
	}
}

// Start runs one sweep immediately, then schedules recurring sweeps.
// Calling Start more than once is an error; the sweep is a per-process
// singleton by construction.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return fmt.Errorf("sweeper already started")
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid sweep schedule %q: %w", s.schedule, err)
	}

	// Initial sweep runs in the background so startup is not delayed.
	go s.runSweep(ctx)

	if _, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.started = true
	s.running = true

	s.logger.Info("ttl sweeper started",
		"schedule", s.schedule,
		"ttl", s.ttl,
	)

	// Stop with the surrounding context.
	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// runSweep executes one sweep cycle.
func (s *Sweeper) runSweep(ctx context.Context) {
	deleted, err := s.Sweep(ctx)
	if err != nil {
		s.logger.Error("ttl sweep failed", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("ttl sweep completed", "deleted", deleted)
	} else {
		s.logger.Debug("ttl sweep completed, nothing expired")
	}
}

// Sweep scans durable records and deletes every record older than the TTL
// from both durable storage and the cache. Deletion is unconditional; a
// load racing the sweep sees either the record or not-found.
func (s *Sweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := time.Now().UTC().Add(-s.ttl)

	keys, err := expiredKeys(ctx, s.store.db, cutoff)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		if err := deleteRuleSet(ctx, s.store.db, key); err != nil {
			s.logger.Error("failed to delete expired rule set",
				"firm_key", key,
				"error", err,
			)
			continue
		}
		s.store.cache.Delete(key)
		deleted++

		s.logger.Info("expired rule set purged",
			"firm_key", key,
			"cutoff", cutoff,
		)
	}

	if deleted > 0 {
		s.store.metrics.SweepDeleted(deleted)
	}
	return deleted, nil
}

// Stop stops the scheduler and waits for a running sweep to complete.
// Safe to call multiple times.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		stopCtx := s.cron.Stop()
		<-stopCtx.Done()
		s.running = false
		s.logger.Info("ttl sweeper stopped")
	}
}

// IsRunning reports whether the scheduler is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
