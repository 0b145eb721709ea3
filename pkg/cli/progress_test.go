package cli

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

// syncBuffer is a goroutine-safe bytes.Buffer for spinner output.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_WritesFrames(t *testing.T) {
	buf := &syncBuffer{}
	s := NewSpinner(buf, "generating rules")

	s.Start()
	time.Sleep(300 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !strings.Contains(out, "generating rules") {
		t.Errorf("spinner output missing message: %q", out)
	}
	if !strings.Contains(out, "\r") {
		t.Errorf("spinner did not rewrite its line: %q", out)
	}
}

func TestSpinner_StopIsIdempotent(t *testing.T) {
	s := NewSpinner(&syncBuffer{}, "working")

	s.Start()
	s.Stop()
	s.Stop()

	// Start after Stop spins up a fresh animation.
	s.Start()
	s.Stop()
}

func TestSpinner_StartTwice(t *testing.T) {
	buf := &syncBuffer{}
	s := NewSpinner(buf, "working")

	s.Start()
	s.Start()
	s.Stop()
}
