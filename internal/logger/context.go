package logger

import (
	"context"
	"time"
)

// contextKey is a private type for context keys to avoid collisions
type contextKey struct{}

// logContextKey is the key for LogContext in context.Context
var logContextKey = contextKey{}

// LogContext holds call-scoped logging context: the canonical authority and
// share a call is operating against, the operation name (e.g.
// "FileSystem.OpenByteChannel", "Poller.Register"), and trace correlation.
// It is threaded through context.Context so internal/smbclient,
// pkg/smbfs and pkg/watch/poller can log without re-deriving these fields
// at every call site.
type LogContext struct {
	TraceID   string    // OpenTelemetry trace ID
	SpanID    string    // OpenTelemetry span ID
	Operation string    // FileSystem/Poller operation name
	Authority string    // Canonical authority of the FileSystem handle
	Share     string    // SMB share name, once resolved from the path
	Domain    string    // NTLM domain used for the session
	Username  string    // NTLM user used for the session
	StartTime time.Time // For duration calculation
}

// WithContext returns a new context with the given LogContext
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from context, or nil if not present
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a new LogContext scoped to authority.
func NewLogContext(authority string) *LogContext {
	return &LogContext{
		Authority: authority,
		StartTime: time.Now(),
	}
}

// Clone creates a copy of the LogContext
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	return &LogContext{
		TraceID:   lc.TraceID,
		SpanID:    lc.SpanID,
		Operation: lc.Operation,
		Authority: lc.Authority,
		Share:     lc.Share,
		Domain:    lc.Domain,
		Username:  lc.Username,
		StartTime: lc.StartTime,
	}
}

// WithOperation returns a copy with the operation name set
func (lc *LogContext) WithOperation(operation string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Operation = operation
	}
	return clone
}

// WithShare returns a copy with the share set
func (lc *LogContext) WithShare(share string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Share = share
	}
	return clone
}

// WithCredentials returns a copy with the NTLM domain/user set. The password
// is deliberately not part of LogContext: it must never reach a log line.
func (lc *LogContext) WithCredentials(domain, username string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Domain = domain
		clone.Username = username
	}
	return clone
}

// WithTrace returns a copy with trace info set
func (lc *LogContext) WithTrace(traceID, spanID string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.TraceID = traceID
		clone.SpanID = spanID
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
