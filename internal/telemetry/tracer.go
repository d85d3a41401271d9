package telemetry

import (
	"fmt"

	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys for the spans this module emits around SMB collaborator
// calls and the registry/watch machinery built on top of them.
const (
	AttrClientIP   = "client.ip"
	AttrClientAddr = "client.address"
	AttrClientHost = "client.host"

	AttrOperation = "fs.operation" // operation name, e.g. "CopyFile", "Poll"
	AttrShare     = "fs.share"     // share name (first path component)
	AttrPath      = "fs.path"      // path the operation addresses
	AttrOffset    = "fs.offset"    // I/O offset
	AttrCount     = "fs.count"     // byte count requested
	AttrSize      = "fs.size"      // file size
	AttrStatus    = "fs.status"    // NT_STATUS code, if any
	AttrEOF       = "fs.eof"

	AttrSMBHandle    = "smb.handle"
	AttrSMBSessionID = "smb.session_id"
	AttrSMBTreeID    = "smb.tree_id"

	AttrUsername = "user.name"
	AttrDomain   = "user.domain"
)

// Span names for the operations this module traces.
const (
	SpanSMBRequest  = "smb.request"
	SpanSMBRead     = "smb.READ"
	SpanSMBWrite    = "smb.WRITE"
	SpanSMBQueryDir = "smb.QUERY_DIRECTORY"
	SpanSMBStat     = "smb.QUERY_INFO"

	SpanPollerPass = "poller.pass"
	SpanWatchEvent = "watch.event"
)

func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

func FSOperation(op string) attribute.KeyValue {
	return attribute.String(AttrOperation, op)
}

func FSShare(share string) attribute.KeyValue {
	return attribute.String(AttrShare, share)
}

func FSPath(path string) attribute.KeyValue {
	return attribute.String(AttrPath, path)
}

func FSOffset(offset int64) attribute.KeyValue {
	return attribute.Int64(AttrOffset, offset)
}

func FSCount(count int) attribute.KeyValue {
	return attribute.Int(AttrCount, count)
}

func FSSize(size int64) attribute.KeyValue {
	return attribute.Int64(AttrSize, size)
}

func FSStatus(status uint32) attribute.KeyValue {
	return attribute.Int64(AttrStatus, int64(status))
}

func FSEOF(eof bool) attribute.KeyValue {
	return attribute.Bool(AttrEOF, eof)
}

func SMBHandle(handle string) attribute.KeyValue {
	return attribute.String(AttrSMBHandle, handle)
}

func Username(name string) attribute.KeyValue {
	return attribute.String(AttrUsername, name)
}

func Domain(name string) attribute.KeyValue {
	return attribute.String(AttrDomain, name)
}

// StartSMBSpan starts a span for a single blocking call into the SMB
// collaborator, tagging it with the share and path the call operates on.
func StartSMBSpan(ctx context.Context, operation, share, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := []attribute.KeyValue{
		FSOperation(operation),
		FSShare(share),
		FSPath(path),
	}
	allAttrs = append(allAttrs, attrs...)

	return StartSpan(ctx, fmt.Sprintf("smb.%s", operation), trace.WithAttributes(allAttrs...))
}

// StartPollerSpan starts a span for one pass of the background poller over
// a registered path.
func StartPollerSpan(ctx context.Context, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := append([]attribute.KeyValue{FSPath(path)}, attrs...)
	return StartSpan(ctx, SpanPollerPass, trace.WithAttributes(allAttrs...))
}
