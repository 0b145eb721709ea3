package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"WARN", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Level: "warn", Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	logger.Debug("dropped debug")
	logger.Info("dropped info")
	logger.Warn("kept warn")
	logger.Error("kept error")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("below-level records written: %s", out)
	}
	if !strings.Contains(out, "kept warn") || !strings.Contains(out, "kept error") {
		t.Errorf("expected records missing: %s", out)
	}
}

func TestNew_Formats(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New(json) error: %v", err)
	}
	logger.Info("hello", "key", "value")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Errorf("json format produced non-JSON output: %s", buf.String())
	}
	if record["msg"] != "hello" || record["key"] != "value" {
		t.Errorf("record = %v", record)
	}

	buf.Reset()
	logger, err = New(Config{Format: "text", Writer: &buf})
	if err != nil {
		t.Fatalf("New(text) error: %v", err)
	}
	logger.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("text format output = %s", buf.String())
	}

	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("New(xml) error = nil, want failure")
	}
	if _, err := New(Config{Level: "trace"}); err == nil {
		t.Error("New(trace) error = nil, want failure")
	}
}

func TestContextHandler_AppendsContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithFirm(ctx, "Meridian Capital")
	logger.InfoContext(ctx, "processing")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decoding record: %v", err)
	}
	if record["request_id"] != "req-123" {
		t.Errorf("request_id = %v", record["request_id"])
	}
	if record["firm_name"] != "Meridian Capital" {
		t.Errorf("firm_name = %v", record["firm_name"])
	}
}

func TestContextHandler_SurvivesWith(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(Config{Format: "json", Writer: &buf})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Derived loggers must keep appending context fields.
	derived := logger.With("component", "test").WithGroup("detail")
	derived.InfoContext(WithRequestID(context.Background(), "req-456"), "event", "k", "v")

	out := buf.String()
	if !strings.Contains(out, "req-456") {
		t.Errorf("derived logger dropped context fields: %s", out)
	}
	if !strings.Contains(out, `"component":"test"`) {
		t.Errorf("With attrs lost: %s", out)
	}
}

func TestGetters(t *testing.T) {
	ctx := context.Background()
	if GetRequestID(ctx) != "" || GetFirm(ctx) != "" {
		t.Error("empty context returned non-empty fields")
	}

	ctx = WithRequestID(ctx, "r")
	ctx = WithFirm(ctx, "f")
	if GetRequestID(ctx) != "r" || GetFirm(ctx) != "f" {
		t.Error("round trip through context failed")
	}
}
