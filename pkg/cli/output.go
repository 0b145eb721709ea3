package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// OutputFormat selects how command results are rendered.
type OutputFormat string

const (
	// FormatText is human-readable text output (default).
	FormatText OutputFormat = "text"
	// FormatJSON is indented JSON output, for scripting.
	FormatJSON OutputFormat = "json"
)

// Formatter renders a command result to a writer.
type Formatter interface {
	FormatTo(w io.Writer, data any) error
}

// NewFormatter returns the formatter for the given format name.
func NewFormatter(format OutputFormat) (Formatter, error) {
	switch format {
	case FormatText, "":
		return &TextFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{Indent: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

// TextFormatter renders results with their String form.
type TextFormatter struct{}

// FormatTo writes data as plain text.
func (f *TextFormatter) FormatTo(w io.Writer, data any) error {
	_, err := fmt.Fprintf(w, "%v\n", data)
	return err
}

// JSONFormatter renders results as JSON.
type JSONFormatter struct {
	// Indent enables two-space indentation.
	Indent bool
}

// FormatTo writes data as JSON.
func (f *JSONFormatter) FormatTo(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(data)
}
