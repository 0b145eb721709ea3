package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// FirmKey is the context key for firm names.
	FirmKey contextKey = "firm_name"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithFirm adds a firm name to the context.
func WithFirm(ctx context.Context, firm string) context.Context {
	return context.WithValue(ctx, FirmKey, firm)
}

// GetFirm retrieves the firm name from the context.
func GetFirm(ctx context.Context) string {
	if firm, ok := ctx.Value(FirmKey).(string); ok {
		return firm
	}
	return ""
}

// contextHandler is a slog.Handler that appends context-carried fields
// (request ID, firm name) to every record logged through the *Context
// logging methods.
type contextHandler struct {
	slog.Handler
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	if requestID := GetRequestID(ctx); requestID != "" {
		record.AddAttrs(slog.String(string(RequestIDKey), requestID))
	}
	if firm := GetFirm(ctx); firm != "" {
		record.AddAttrs(slog.String(string(FirmKey), firm))
	}
	return h.Handler.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name)}
}
