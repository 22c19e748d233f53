package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRunID is the field name for a matching run ID.
	LogFieldRunID = "run_id"
	// LogFieldItemID is the field name for the probe item ID.
	LogFieldItemID = "item_id"
	// LogFieldCandidateID is the field name for a candidate item ID.
	LogFieldCandidateID = "candidate_id"
	// LogFieldMatchID is the field name for a match ID.
	LogFieldMatchID = "match_id"
	// LogFieldUserID is the field name for user ID.
	LogFieldUserID = "user_id"
	// LogFieldScore is the field name for a match score.
	LogFieldScore = "score"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
	// LogFieldOutcome is the field name for a match-attempt outcome.
	LogFieldOutcome = "outcome"
)

// RunContext represents the context for a single matching run with structured logging.
type RunContext struct {
	RunID     string
	ItemID    int32
	StartTime time.Time
	Logger    *slog.Logger
}

// NewRunContext creates a new run context with a generated run ID.
func NewRunContext(logger *slog.Logger, itemID int32) *RunContext {
	if logger == nil {
		logger = slog.Default()
	}
	return &RunContext{
		RunID:     uuid.New().String(),
		ItemID:    itemID,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (r *RunContext) Info(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, r.baseAttrsAppended(attrs...)...)
}

// Debug logs a debug message.
func (r *RunContext) Debug(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelDebug, msg, r.baseAttrsAppended(attrs...)...)
}

// Warn logs a warning message.
func (r *RunContext) Warn(msg string, attrs ...slog.Attr) {
	r.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, r.baseAttrsAppended(attrs...)...)
}

// Error logs an error message with the error.
func (r *RunContext) Error(msg string, err error, attrs ...slog.Attr) {
	allAttrs := append(attrs, slog.String("error", err.Error()))
	r.Logger.LogAttrs(context.Background(), slog.LevelError, msg, r.baseAttrsAppended(allAttrs...)...)
}

// DurationMs returns the elapsed time in milliseconds.
func (r *RunContext) DurationMs() int64 {
	return time.Since(r.StartTime).Milliseconds()
}

func (r *RunContext) baseAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String(LogFieldRunID, r.RunID),
		slog.Int64(LogFieldItemID, int64(r.ItemID)),
	}
}

func (r *RunContext) baseAttrsAppended(attrs ...slog.Attr) []slog.Attr {
	return append(r.baseAttrs(), attrs...)
}

type ctxKey struct{}

// WithRunContext adds the run context to the context.
func WithRunContext(ctx context.Context, runCtx *RunContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, runCtx)
}

// FromContext extracts the run context from the context.
func FromContext(ctx context.Context) (*RunContext, bool) {
	runCtx, ok := ctx.Value(ctxKey{}).(*RunContext)
	return runCtx, ok
}
