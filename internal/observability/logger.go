package observability

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldQueryID is the field name for query ID.
	LogFieldQueryID = "query_id"
	// LogFieldCommand is the field name for the command being answered.
	LogFieldCommand = "command"
	// LogFieldTimezone is the field name for the schedule timezone.
	LogFieldTimezone = "timezone"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldErrorCode is the field name for error code.
	LogFieldErrorCode = "error_code"
)

// NewLogger builds a slog logger writing to w. format is "json" or "text";
// level is one of debug, info, warn, error and defaults to info.
// addSource adds the caller's file and line to every record.
func NewLogger(w io.Writer, level, format string, addSource bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level), AddSource: addSource}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// ParseLevel maps a level name onto slog.Level.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// QueryContext carries the structured logging fields of a single schedule query.
type QueryContext struct {
	QueryID   string
	Command   string
	Timezone  string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewQueryContext creates a new query context with a generated query ID.
func NewQueryContext(logger *slog.Logger, command, timezone string) *QueryContext {
	return NewQueryContextWithID(logger, uuid.New().String(), command, timezone)
}

// NewQueryContextWithID creates a new query context with a specific query ID.
func NewQueryContextWithID(logger *slog.Logger, queryID, command, timezone string) *QueryContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueryContext{
		QueryID:   queryID,
		Command:   command,
		Timezone:  timezone,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Debug logs a debug message.
func (q *QueryContext) Debug(msg string, attrs ...slog.Attr) {
	q.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, q.baseAttrsAppended(attrs...)...)
}

// Error logs an error message with the error.
func (q *QueryContext) Error(msg string, err error, attrs ...slog.Attr) {
	allAttrs := append(attrs, slog.String("error", err.Error()))
	q.Logger.LogAttrs(context.Background(), slog.LevelError, msg, q.baseAttrsAppended(allAttrs...)...)
}

// Done logs the completion of the query with its elapsed time.
func (q *QueryContext) Done(attrs ...slog.Attr) {
	q.Debug("query answered", append(attrs, slog.Int64(LogFieldDuration, q.DurationMs()))...)
}

// Duration returns the elapsed time since the query started.
func (q *QueryContext) Duration() time.Duration {
	return time.Since(q.StartTime)
}

// DurationMs returns the elapsed time in milliseconds.
func (q *QueryContext) DurationMs() int64 {
	return q.Duration().Milliseconds()
}

func (q *QueryContext) baseAttrsAppended(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldQueryID, q.QueryID),
		slog.String(LogFieldCommand, q.Command),
		slog.String(LogFieldTimezone, q.Timezone),
	}
	return append(base, attrs...)
}
