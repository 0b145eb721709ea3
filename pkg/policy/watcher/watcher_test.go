package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/themis/pkg/rules"
)

// recordingIngestor records every ingestion request.
type recordingIngestor struct {
	mu    sync.Mutex
	calls []ingestCall
}

type ingestCall struct {
	policyText string
	firmName   string
}

func (r *recordingIngestor) ProcessPolicy(ctx context.Context, policyText, firmName string) (*rules.RuleSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, ingestCall{policyText: policyText, firmName: firmName})
	return &rules.RuleSet{FirmName: firmName}, nil
}

func (r *recordingIngestor) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *recordingIngestor) lastCall() (ingestCall, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ingestCall{}, false
	}
	return r.calls[len(r.calls)-1], true
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return cond()
}

func TestNew_Validation(t *testing.T) {
	ingestor := &recordingIngestor{}

	if _, err := New(Config{}, ingestor, nil); err == nil {
		t.Error("New() error = nil without a directory")
	}
	if _, err := New(Config{Dir: t.TempDir()}, nil, nil); err == nil {
		t.Error("New() error = nil without an ingestor")
	}
	if _, err := New(Config{Dir: filepath.Join(t.TempDir(), "absent")}, ingestor, nil); err == nil {
		t.Error("New() error = nil for a missing directory")
	}

	file := filepath.Join(t.TempDir(), "not-a-dir.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{Dir: file}, ingestor, nil); err == nil {
		t.Error("New() error = nil for a non-directory path")
	}
}

func TestWatcher_IngestsDroppedPolicy(t *testing.T) {
	dir := t.TempDir()
	ingestor := &recordingIngestor{}

	w, err := New(Config{Dir: dir, DebounceInterval: 50 * time.Millisecond}, ingestor, slog.Default())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	path := filepath.Join(dir, "meridian_capital.txt")
	if err := os.WriteFile(path, []byte("No trading during blackout windows."), 0o644); err != nil {
		t.Fatal(err)
	}

	if !waitFor(t, 5*time.Second, func() bool { return ingestor.callCount() >= 1 }) {
		t.Fatal("policy file was never ingested")
	}

	call, _ := ingestor.lastCall()
	if call.firmName != "meridian capital" {
		t.Errorf("firm name = %q, want %q", call.firmName, "meridian capital")
	}
	if call.policyText != "No trading during blackout windows." {
		t.Errorf("policy text = %q", call.policyText)
	}
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()
	ingestor := &recordingIngestor{}

	w, err := New(Config{Dir: dir, DebounceInterval: 200 * time.Millisecond}, ingestor, slog.Default())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	// A burst of writes to the same file coalesces into one ingestion.
	path := filepath.Join(dir, "helios.txt")
	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("Restricted list enforcement."), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	if !waitFor(t, 5*time.Second, func() bool { return ingestor.callCount() >= 1 }) {
		t.Fatal("policy file was never ingested")
	}

	// Allow any stray debounce timers to fire before counting.
	time.Sleep(400 * time.Millisecond)
	if got := ingestor.callCount(); got != 1 {
		t.Errorf("ingestions = %d, want 1 coalesced run", got)
	}
}

func TestWatcher_IgnoresNonPolicyFiles(t *testing.T) {
	dir := t.TempDir()
	ingestor := &recordingIngestor{}

	w, err := New(Config{Dir: dir, DebounceInterval: 50 * time.Millisecond}, ingestor, slog.Default())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	for _, name := range []string{".hidden.txt", "draft.txt~", "notes.json", "policy.pdf"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("content"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	time.Sleep(300 * time.Millisecond)
	if got := ingestor.callCount(); got != 0 {
		t.Errorf("ingestions = %d, want 0 for non-policy files", got)
	}
}

func TestWatcher_SkipsEmptyFiles(t *testing.T) {
	dir := t.TempDir()
	ingestor := &recordingIngestor{}

	w, err := New(Config{Dir: dir, DebounceInterval: 50 * time.Millisecond}, ingestor, slog.Default())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	if err := os.WriteFile(filepath.Join(dir, "empty.txt"), []byte("  \n\t"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := ingestor.callCount(); got != 0 {
		t.Errorf("ingestions = %d, want 0 for an empty file", got)
	}
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := New(Config{Dir: t.TempDir()}, &recordingIngestor{}, slog.Default())
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)

	w.Stop()
	w.Stop()
}

func TestShouldProcessEvent(t *testing.T) {
	w := &Watcher{}

	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{"txt write", fsnotify.Event{Name: "/drop/firm.txt", Op: fsnotify.Write}, true},
		{"md create", fsnotify.Event{Name: "/drop/firm.md", Op: fsnotify.Create}, true},
		{"uppercase extension", fsnotify.Event{Name: "/drop/firm.TXT", Op: fsnotify.Write}, true},
		{"chmod", fsnotify.Event{Name: "/drop/firm.txt", Op: fsnotify.Chmod}, false},
		{"remove", fsnotify.Event{Name: "/drop/firm.txt", Op: fsnotify.Remove}, false},
		{"rename", fsnotify.Event{Name: "/drop/firm.txt", Op: fsnotify.Rename}, false},
		{"hidden file", fsnotify.Event{Name: "/drop/.firm.txt", Op: fsnotify.Write}, false},
		{"editor backup", fsnotify.Event{Name: "/drop/firm.txt~", Op: fsnotify.Write}, false},
		{"wrong extension", fsnotify.Event{Name: "/drop/firm.json", Op: fsnotify.Write}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.shouldProcessEvent(tt.event); got != tt.want {
				t.Errorf("shouldProcessEvent(%v) = %v, want %v", tt.event, got, tt.want)
			}
		})
	}
}

func TestFirmNameFromPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/drop/meridian_capital.txt", "meridian capital"},
		{"/drop/helios.md", "helios"},
		{"acme_global_partners.txt", "acme global partners"},
		{"/drop/no_extension", "no extension"},
	}

	for _, tt := range tests {
		if got := FirmNameFromPath(tt.path); got != tt.want {
			t.Errorf("FirmNameFromPath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
