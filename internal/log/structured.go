package log

import (
	"context"
	"log/slog"
	"net/http"
)

// ContextKey type for context keys
type ContextKey string

// LoggerContextKey is the context key for the logger
const LoggerContextKey ContextKey = "logger"

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext extracts a logger from the context, falling back to the
// process default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{
		Logger:    slog.Default(),
		component: "unknown",
	}
}

// StructuredLogger provides the domain log lines shared by every binary.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func (sl *StructuredLogger) emit(ctx context.Context, level slog.Level, msg string, fields LogFields) {
	l := sl.logger
	if c, ok := fields[FieldComponent].(string); ok && c != "" {
		l = l.WithComponent(c)
	}
	l.Logger.Log(ctx, level, msg, l.prepend(fields.ToSlice())...)
}

// LogHTTPEnd logs the completion of an HTTP request. 4xx are warnings and
// 5xx errors.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, requestID, clientIP string, statusCode int, durationMs int64) {
	level := slog.LevelInfo
	if statusCode >= 500 {
		level = slog.LevelError
	} else if statusCode >= 400 {
		level = slog.LevelWarn
	}
	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(statusCode, durationMs).
		WithRequestID(requestID).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)
	sl.emit(ctx, level, "HTTP request completed", fields)
}

// LogExpenseRecorded logs a successful expense entry.
func (sl *StructuredLogger) LogExpenseRecorded(ctx context.Context, desc string, amountCents int64, category, date string) {
	fields := NewFields().
		WithExpense(desc, amountCents, category, date).
		WithOperation(OpCreate).
		WithComponent(ComponentTracker)
	sl.emit(ctx, slog.LevelInfo, "Expense recorded", fields)
}

// LogBudgetSet logs a budget definition. replacedSpentCents is the spend
// discarded from the budget it replaced, if any.
func (sl *StructuredLogger) LogBudgetSet(ctx context.Context, category string, limitCents int64, replaced bool, replacedSpentCents int64) {
	fields := NewFields().
		WithBudget(category, limitCents, 0).
		WithOperation(OpSetBudget).
		WithComponent(ComponentTracker)
	if replaced && replacedSpentCents != 0 {
		fields["discarded_spent_cents"] = replacedSpentCents
		sl.emit(ctx, slog.LevelWarn, "Budget replaced, previous spend discarded", fields)
		return
	}
	fields["replaced"] = replaced
	sl.emit(ctx, slog.LevelInfo, "Budget set", fields)
}

// LogBudgetExceeded logs a category going (or staying) over its limit.
func (sl *StructuredLogger) LogBudgetExceeded(ctx context.Context, category string, limitCents, spentCents int64) {
	fields := NewFields().
		WithBudget(category, limitCents, spentCents).
		WithOperation(OpAlert).
		WithComponent(ComponentTracker)
	sl.emit(ctx, slog.LevelWarn, "Budget exceeded", fields)
}

// LogError logs an error with structured context
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	fields.WithError(err).WithOperation(operation).WithComponent(component)
	sl.emit(ctx, slog.LevelError, msg, fields)
}
