package store

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"sync"
	"time"

	"mercator-hq/themis/pkg/rules"
)

// Config contains configuration for the rule store.
type Config struct {
	// Path is the SQLite database file path.
	Path string

	// MaxCacheEntries bounds the in-memory cache. Default: 100.
	MaxCacheEntries int

	// TTL is the maximum age of a durable record before the sweeper
	// purges it. Default: 24h.
	TTL time.Duration

	// SweepSchedule is the cron expression for the TTL sweep.
	// Default: "0 * * * *" (hourly). The sweep also runs once at startup.
	SweepSchedule string

	// MaxOpenConns is the maximum number of open database connections.
	// Default: 10.
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections. Default: 5.
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true.
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5s.
	BusyTimeout time.Duration
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() *Config {
	return &Config{
		Path:            "data/rules.db",
		MaxCacheEntries: 100,
		TTL:             24 * time.Hour,
		SweepSchedule:   "0 * * * *",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		WALMode:         true,
		BusyTimeout:     5 * time.Second,
	}
}

// Metrics receives store events. The zero value of noopMetrics is used when
// no collector is wired.
type Metrics interface {
	CacheHit()
	CacheMiss()
	CacheEviction()
	SweepDeleted(count int)
}

type noopMetrics struct{}

func (noopMetrics) CacheHit()        {}
func (noopMetrics) CacheMiss()       {}
func (noopMetrics) CacheEviction()   {}
func (noopMetrics) SweepDeleted(int) {}

// Store persists rule sets durably and mirrors them in a bounded FIFO
// cache. It owns the TTL sweeper's lifecycle.
type Store struct {
	config  *Config
	db      *sql.DB
	cache   *fifoCache
	sweeper *Sweeper
	metrics Metrics
	logger  *slog.Logger

	// firmLocks serializes saves per firm so overlapping ingestions for
	// the same firm cannot interleave cache and durable writes.
	firmLocks sync.Map // firmKey -> *sync.Mutex
}

// Option configures optional store behavior.
type Option func(*Store)

// WithMetrics wires a metrics sink into the store.
func WithMetrics(m Metrics) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// New opens the store and prepares (but does not start) the TTL sweeper.
func New(config *Config, opts ...Option) (*Store, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxCacheEntries <= 0 {
		config.MaxCacheEntries = 100
	}
	if config.TTL <= 0 {
		config.TTL = 24 * time.Hour
	}
	if config.SweepSchedule == "" {
		config.SweepSchedule = "0 * * * *"
	}
	if config.MaxOpenConns == 0 {
		config.MaxOpenConns = 10
	}
	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 5
	}
	if config.BusyTimeout == 0 {
		config.BusyTimeout = 5 * time.Second
	}

	db, err := openDatabase(config)
	if err != nil {
		return nil, err
	}

	s := &Store{
		config:  config,
		db:      db,
		cache:   newFIFOCache(config.MaxCacheEntries),
		metrics: noopMetrics{},
		logger:  slog.Default().With("component", "rules.store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sweeper = newSweeper(s, config.TTL, config.SweepSchedule)

	s.logger.Info("rule store opened",
		"path", config.Path,
		"max_cache_entries", config.MaxCacheEntries,
		"ttl", config.TTL,
	)

	return s, nil
}

// StartSweeper starts the background TTL sweep: once immediately, then on
// the configured schedule. It is safe to call only once per store; the
// sweeper enforces this.
func (s *Store) StartSweeper(ctx context.Context) error {
	return s.sweeper.Start(ctx)
}

// StopSweeper stops the background sweep and waits for a running sweep to
// finish.
func (s *Store) StopSweeper() {
	s.sweeper.Stop()
}

// Save stamps and durably writes the firm's rule set, replacing any prior
// record, then updates the cache. Saves for the same firm are serialized;
// the last writer wins and the cache reflects it.
func (s *Store) Save(ctx context.Context, firmName string, set []rules.Rule, totalIterations int) (*rules.RuleSet, error) {
	if firmName == "" {
		return nil, &rules.RequestValidationError{Field: "firm_name", Message: "firm name is required"}
	}

	firmKey := NormalizeFirmName(firmName)

	lock := s.lockFor(firmKey)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now().UTC()
	ruleSet := &rules.RuleSet{
		FirmName:        firmName,
		PolicyVersion:   now.Format("2006-01"),
		LastUpdated:     now,
		GeneratedByLLM:  true,
		TotalIterations: totalIterations,
		Rules:           set,
	}

	if err := writeRuleSet(ctx, s.db, firmKey, ruleSet); err != nil {
		s.logger.Error("durable save failed", "firm", firmName, "error", err)
		return nil, err
	}

	if _, evicted := s.cache.Put(firmKey, ruleSet); evicted {
		s.metrics.CacheEviction()
	}

	s.logger.Info("rule set saved",
		"firm", firmName,
		"firm_key", firmKey,
		"rules", len(set),
		"total_iterations", totalIterations,
	)

	return ruleSet, nil
}

// Load returns the firm's rule set from the cache when present, falling
// back to durable storage and populating the cache on success. A firm with
// no durable record yields a NotFoundError.
func (s *Store) Load(ctx context.Context, firmName string) (*rules.RuleSet, error) {
	if firmName == "" {
		return nil, &rules.RequestValidationError{Field: "firm_name", Message: "firm name is required"}
	}

	firmKey := NormalizeFirmName(firmName)

	if set, ok := s.cache.Get(firmKey); ok {
		s.metrics.CacheHit()
		return set, nil
	}
	s.metrics.CacheMiss()

	set, err := readRuleSet(ctx, s.db, firmKey, firmName)
	if err != nil {
		return nil, err
	}

	if _, evicted := s.cache.Put(firmKey, set); evicted {
		s.metrics.CacheEviction()
	}
	return set, nil
}

// Close stops the sweeper and closes the database.
func (s *Store) Close() error {
	s.sweeper.Stop()

	if err := s.db.Close(); err != nil {
		return &rules.PersistenceError{Op: "close", Cause: err}
	}
	s.logger.Info("rule store closed")
	return nil
}

// CacheLen reports the number of cached entries, for tests and diagnostics.
func (s *Store) CacheLen() int {
	return s.cache.Len()
}

// lockFor returns the per-firm save mutex, creating it on first use.
func (s *Store) lockFor(firmKey string) *sync.Mutex {
	actual, _ := s.firmLocks.LoadOrStore(firmKey, &sync.Mutex{})
	return actual.(*sync.Mutex)
}

// NormalizeFirmName derives the storage key from a firm name: case-folded,
// trimmed, with internal whitespace runs collapsed to single underscores.
func NormalizeFirmName(firmName string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(firmName)))
	return strings.Join(fields, "_")
}
