package cli

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Spinner shows activity on a terminal while a long-running operation
// (policy ingestion involves several LLM and sandbox round-trips) is in
// flight. It is a no-op after Stop and safe for concurrent use.
type Spinner struct {
	mu      sync.Mutex
	writer  io.Writer
	message string
	started time.Time
	ticker  *time.Ticker
	done    chan struct{}
	running bool
}

var spinnerFrames = []string{"|", "/", "-", "\\"}

// NewSpinner creates a spinner that writes to w. If w is nil, it
// defaults to os.Stderr so spinner frames never mix with result output.
func NewSpinner(w io.Writer, message string) *Spinner {
	if w == nil {
		w = os.Stderr
	}
	return &Spinner{writer: w, message: message}
}

// Start begins animating. Calling Start on a running spinner is a no-op.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.running = true
	s.started = time.Now()
	s.ticker = time.NewTicker(120 * time.Millisecond)
	s.done = make(chan struct{})

	go func() {
		frame := 0
		for {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				s.mu.Lock()
				elapsed := time.Since(s.started).Round(time.Second)
				fmt.Fprintf(s.writer, "\r%s %s (%s)", spinnerFrames[frame%len(spinnerFrames)], s.message, elapsed)
				s.mu.Unlock()
				frame++
			}
		}
	}()
}

// Stop halts the animation and clears the spinner line.
func (s *Spinner) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.running = false
	s.ticker.Stop()
	close(s.done)
	fmt.Fprintf(s.writer, "\r%*s\r", len(s.message)+16, "")
}
