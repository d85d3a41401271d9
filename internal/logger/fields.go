package logger

import (
	"log/slog"
)

// Standard field keys for structured logging across this module: the
// FileSystem registry, path algebra, byte channels, directory streams, and
// the watch/poller subsystem. Use these keys consistently so log
// aggregation and querying line up across components.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// FileSystem Registry & Authority
	// ========================================================================
	KeyAuthority = "authority" // Canonical authority: [domain;]user[:password]@host[:port]
	KeyHost      = "host"      // SMB server host
	KeyPort      = "port"      // SMB server port
	KeyShare     = "share"     // Share name, e.g. "public" in smb://u@h/public/
	KeyDomain    = "domain"    // NTLM domain
	KeyUsername  = "username"  // NTLM user (never the password)
	KeyOperation = "operation" // FileSystem/Poller/Registry operation name

	// ========================================================================
	// Path & File Operations
	// ========================================================================
	KeyPath    = "path"          // Rendered SmbPath string
	KeyOldPath = "old_path"      // Source path for rename/move/copy
	KeyNewPath = "new_path"      // Destination path for rename/move/copy
	KeyIsDir   = "is_directory"  // Whether a path resolves to a directory
	KeySize    = "size"          // File size in bytes

	// ========================================================================
	// Byte Channel I/O
	// ========================================================================
	KeyOffset       = "offset"        // Seek/position offset
	KeyBytesRead    = "bytes_read"    // Actual bytes read from a SeekableByteChannel
	KeyBytesWritten = "bytes_written" // Actual bytes written to a SeekableByteChannel

	// ========================================================================
	// Watch / Poller
	// ========================================================================
	KeyWatchKey      = "watch_key"      // WatchKey ID (uuid)
	KeyEventKind     = "event_kind"     // CREATE, MODIFY, DELETE, OVERFLOW
	KeyEventCount    = "event_count"    // Coalesced count on an emitted event
	KeyPollInterval  = "poll_interval"  // Configured poller sweep interval
	KeyRegisteredDir = "registered_dir" // Whether a diffed path is a tracked directory

	// ========================================================================
	// Error Taxonomy
	// ========================================================================
	KeyError      = "error"       // Error message
	KeyErrorCode  = "error_code"  // fserrors.Code name
	KeyNTStatus   = "nt_status"   // smbproto.Status name from the collaborator
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
)

// ============================================================================
// Field constructors for type safety
// These functions provide type-safe construction of slog.Attr values.
// ============================================================================

// ----------------------------------------------------------------------------
// Distributed Tracing
// ----------------------------------------------------------------------------

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// ----------------------------------------------------------------------------
// FileSystem Registry & Authority
// ----------------------------------------------------------------------------

// Authority returns a slog.Attr for a canonical FileSystem authority.
func Authority(authority string) slog.Attr {
	return slog.String(KeyAuthority, authority)
}

// Host returns a slog.Attr for an SMB server host.
func Host(host string) slog.Attr {
	return slog.String(KeyHost, host)
}

// Port returns a slog.Attr for an SMB server port.
func Port(port int) slog.Attr {
	return slog.Int(KeyPort, port)
}

// Share returns a slog.Attr for a share name.
func Share(name string) slog.Attr {
	return slog.String(KeyShare, name)
}

// Domain returns a slog.Attr for an NTLM domain.
func Domain(name string) slog.Attr {
	return slog.String(KeyDomain, name)
}

// Username returns a slog.Attr for an NTLM user. The password is never
// logged; there is no corresponding field for it.
func Username(name string) slog.Attr {
	return slog.String(KeyUsername, name)
}

// Operation returns a slog.Attr for the FileSystem/Poller/Registry operation
// that produced a log line.
func Operation(op string) slog.Attr {
	return slog.String(KeyOperation, op)
}

// ----------------------------------------------------------------------------
// Path & File Operations
// ----------------------------------------------------------------------------

// Path returns a slog.Attr for a rendered SmbPath.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// OldPath returns a slog.Attr for the source path of a rename/move/copy.
func OldPath(p string) slog.Attr {
	return slog.String(KeyOldPath, p)
}

// NewPath returns a slog.Attr for the destination path of a rename/move/copy.
func NewPath(p string) slog.Attr {
	return slog.String(KeyNewPath, p)
}

// IsDir returns a slog.Attr reporting whether a path is a directory.
func IsDir(isDir bool) slog.Attr {
	return slog.Bool(KeyIsDir, isDir)
}

// Size returns a slog.Attr for a file size.
func Size(s uint64) slog.Attr {
	return slog.Uint64(KeySize, s)
}

// ----------------------------------------------------------------------------
// Byte Channel I/O
// ----------------------------------------------------------------------------

// Offset returns a slog.Attr for a channel seek/position offset.
func Offset(off int64) slog.Attr {
	return slog.Int64(KeyOffset, off)
}

// BytesRead returns a slog.Attr for bytes actually read.
func BytesRead(n int) slog.Attr {
	return slog.Int(KeyBytesRead, n)
}

// BytesWritten returns a slog.Attr for bytes actually written.
func BytesWritten(n int) slog.Attr {
	return slog.Int(KeyBytesWritten, n)
}

// ----------------------------------------------------------------------------
// Watch / Poller
// ----------------------------------------------------------------------------

// WatchKeyID returns a slog.Attr for a WatchKey's stable identifier.
func WatchKeyID(id string) slog.Attr {
	return slog.String(KeyWatchKey, id)
}

// EventKind returns a slog.Attr for a watch event kind (CREATE, MODIFY,
// DELETE, OVERFLOW). Accepts a fmt.Stringer so call sites can pass
// watch.Kind directly without this package importing pkg/watch.
func EventKind(kind interface{ String() string }) slog.Attr {
	return slog.String(KeyEventKind, kind.String())
}

// EventCount returns a slog.Attr for the coalesced count on an emitted event.
func EventCount(n int) slog.Attr {
	return slog.Int(KeyEventCount, n)
}

// PollInterval returns a slog.Attr for the poller's configured sweep
// interval, rendered via its String() method (e.g. "30s").
func PollInterval(interval interface{ String() string }) slog.Attr {
	return slog.String(KeyPollInterval, interval.String())
}

// RegisteredDir returns a slog.Attr reporting whether a diffed path is a
// tracked directory.
func RegisteredDir(isDir bool) slog.Attr {
	return slog.Bool(KeyRegisteredDir, isDir)
}

// ----------------------------------------------------------------------------
// Error Taxonomy
// ----------------------------------------------------------------------------

// Err returns a slog.Attr for an error.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

// ErrorCode returns a slog.Attr for an fserrors.Code, rendered via its
// String() method. Accepts a fmt.Stringer so this package does not need to
// import pkg/fserrors to stay dependency-light.
func ErrorCode(code interface{ String() string }) slog.Attr {
	return slog.String(KeyErrorCode, code.String())
}

// NTStatus returns a slog.Attr for a raw NT_STATUS code surfaced by the SMB
// collaborator, rendered via its String() method.
func NTStatus(status interface{ String() string }) slog.Attr {
	return slog.String(KeyNTStatus, status.String())
}

// DurationMs returns a slog.Attr for a duration in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}
