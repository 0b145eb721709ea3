package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/themis/pkg/rules"
)

// Ingestor submits a policy document to the rule pipeline.
type Ingestor interface {
	ProcessPolicy(ctx context.Context, policyText, firmName string) (*rules.RuleSet, error)
}

// Config configures the drop-directory watcher.
type Config struct {
	// Dir is the directory to watch for policy documents.
	Dir string

	// DebounceInterval is how long to wait after the last write to a
	// file before ingesting it. Defaults to 2 seconds.
	DebounceInterval time.Duration

	// IngestTimeout bounds a single ingestion run. Defaults to 10
	// minutes; generation and validation round-trips are slow.
	IngestTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = 2 * time.Second
	}
	if c.IngestTimeout <= 0 {
		c.IngestTimeout = 10 * time.Minute
	}
}

// Watcher monitors a drop directory and ingests policy documents as
// they appear or change.
type Watcher struct {
	config   Config
	ingestor Ingestor
	watcher  *fsnotify.Watcher
	debounce *Debouncer
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// New creates a watcher over config.Dir. The directory must exist.
func New(config Config, ingestor Ingestor, logger *slog.Logger) (*Watcher, error) {
	config.applyDefaults()
	if config.Dir == "" {
		return nil, &rules.ConfigurationError{Message: "watcher: directory not set"}
	}
	if ingestor == nil {
		return nil, &rules.ConfigurationError{Message: "watcher: ingestor not set"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	info, err := os.Stat(config.Dir)
	if err != nil {
		return nil, fmt.Errorf("stat watch directory: %w", err)
	}
	if !info.IsDir() {
		return nil, &rules.ConfigurationError{Message: fmt.Sprintf("watcher: %s is not a directory", config.Dir)}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(config.Dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", config.Dir, err)
	}

	return &Watcher{
		config:   config,
		ingestor: ingestor,
		watcher:  fw,
		debounce: NewDebouncer(config.DebounceInterval),
		logger:   logger.With("component", "policy_watcher"),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are processed
// on a background goroutine until Stop is called or ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	w.logger.Info("policy watcher started",
		"dir", w.config.Dir,
		"debounce", w.config.DebounceInterval.String())

	go func() {
		<-ctx.Done()
		w.Stop()
	}()
	go w.watch(ctx)
}

func (w *Watcher) watch(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.shouldProcessEvent(event) {
				continue
			}
			path := event.Name
			w.logger.Debug("policy file event",
				"path", path,
				"op", event.Op.String())
			w.debounce.Trigger(path, func() {
				w.ingest(ctx, path)
			})

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", "error", err)
		}
	}
}

// shouldProcessEvent filters out events that should not trigger
// ingestion: attribute changes, removals, hidden files, and files
// without a recognized policy extension.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	if event.Op&fsnotify.Chmod != 0 {
		return false
	}
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		return false
	}

	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, "~") {
		return false
	}

	switch strings.ToLower(filepath.Ext(base)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

func (w *Watcher) ingest(ctx context.Context, path string) {
	firmName := FirmNameFromPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		w.logger.Error("read policy file failed",
			"path", path,
			"error", err)
		return
	}
	if strings.TrimSpace(string(data)) == "" {
		w.logger.Warn("skipping empty policy file", "path", path)
		return
	}

	w.logger.Info("ingesting policy document",
		"path", path,
		"firm_name", firmName)

	ingestCtx, cancel := context.WithTimeout(ctx, w.config.IngestTimeout)
	defer cancel()

	start := time.Now()
	ruleSet, err := w.ingestor.ProcessPolicy(ingestCtx, string(data), firmName)
	if err != nil {
		w.logger.Error("policy ingestion failed",
			"path", path,
			"firm_name", firmName,
			"error", err)
		return
	}

	w.logger.Info("policy ingestion complete",
		"firm_name", firmName,
		"rules", len(ruleSet.Rules),
		"iterations", ruleSet.TotalIterations,
		"duration", time.Since(start).String())
}

// FirmNameFromPath derives a firm name from a policy file path: the
// base name without extension, with underscores replaced by spaces.
func FirmNameFromPath(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(base, "_", " ")
}

// Stop stops the watcher and waits for the event loop to exit. Safe to
// call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.debounce.Stop()
		w.watcher.Close()
		<-w.doneCh

		w.logger.Info("policy watcher stopped")
	})
}
