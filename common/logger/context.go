package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs within a context.
// The sync pipeline enriches the context as it narrows from a run to a channel to a file,
// so nested log statements carry the identifiers without passing them explicitly.
type LogFields struct {
	RunID     *int64  // Snowflake id of the sync run
	Channel   *string // Destination Slack channel
	Path      *string // Dropbox path being processed
	Backend   *string // Cursor store backend
	Component string  // Component name, e.g. "dropbox2slack.service.sync"
}

// WithLogFields enriches context with structured log fields.
// Multiple calls merge fields, with newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	existing := GetLogFields(ctx)
	merged := mergeFields(existing, fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context.
// Returns empty LogFields if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RunID != nil {
		result.RunID = next.RunID
	}
	if next.Channel != nil {
		result.Channel = next.Channel
	}
	if next.Path != nil {
		result.Path = next.Path
	}
	if next.Backend != nil {
		result.Backend = next.Backend
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value.
// Useful for setting LogFields inline: logger.WithLogFields(ctx, logger.LogFields{Path: logger.Ptr(p)})
func Ptr[T any](v T) *T {
	return &v
}

// Truncate truncates a string to maxLen bytes, appending "..." if truncated.
// Used for upstream response bodies that end up in errors and logs.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
