// Package fserrors defines the error taxonomy shared by every component of
// this module: path algebra, the file-system registry, attribute views,
// directory streams, byte channels, and the watch service all fail with a
// *fserrors.Error carrying one of the Codes below, never a bare ad hoc error.
//
// Grounded on the teacher's pkg/metadata/errors package: an ErrorCode enum, a
// single error struct carrying code+message+context, and constructor
// functions per code.
package fserrors

import (
	"errors"
	"fmt"
)

// Code identifies the kind of failure, independent of which component or
// collaborator produced it.
type Code int

const (
	// InvalidArgument indicates ill-formed input: a non-SMB URI, the wrong
	// path type, bad indices, resolving against a file instead of a folder.
	InvalidArgument Code = iota + 1

	// NotFound indicates no FileSystem is registered for an authority, or
	// no such remote file or directory exists.
	NotFound

	// AlreadyExists indicates a FileSystem is already registered for an
	// authority, a CREATE_NEW open collided with an existing file, or a
	// copy target exists without REPLACE_EXISTING.
	AlreadyExists

	// AccessDenied indicates checkAccess failed for the requested mode.
	AccessDenied

	// NotADirectory indicates a directory-only operation (DirectoryStream)
	// was attempted against a non-directory path.
	NotADirectory

	// ClosedFileSystem indicates an operation on a FileSystem handle that
	// has been removed from the registry.
	ClosedFileSystem

	// ClosedChannel indicates an operation on a SeekableByteChannel that is
	// no longer open.
	ClosedChannel

	// ClosedWatchService indicates an operation on a WatchService after
	// Close, or a request enqueued after shutdown began.
	ClosedWatchService

	// Unsupported indicates a feature this provider explicitly does not
	// implement: SYNC/DSYNC/SPARSE/DELETE_ON_CLOSE open options, generic
	// attribute setters, a file store, user-principal lookup, an
	// unrecognized watch kind, or symbolic links.
	Unsupported

	// Io indicates any other failure surfaced by the SMB collaborator.
	Io
)

// String returns the taxonomy name used in error messages and logs.
func (c Code) String() string {
	switch c {
	case InvalidArgument:
		return "InvalidArgument"
	case NotFound:
		return "NotFound"
	case AlreadyExists:
		return "AlreadyExists"
	case AccessDenied:
		return "AccessDenied"
	case NotADirectory:
		return "NotADirectory"
	case ClosedFileSystem:
		return "ClosedFileSystem"
	case ClosedChannel:
		return "ClosedChannel"
	case ClosedWatchService:
		return "ClosedWatchService"
	case Unsupported:
		return "Unsupported"
	case Io:
		return "Io"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// Error is the concrete error type every component returns. Op names the
// failing operation (e.g. "SmbPath.Resolve", "Registry.NewFileSystem") for
// logs; Path, when non-empty, is the rendered path or authority involved.
type Error struct {
	Code Code
	Op   string
	Path string
	Err  error // wrapped cause, e.g. the collaborator's underlying error
}

func (e *Error) Error() string {
	msg := e.Code.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap enables errors.Is/errors.As to reach the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New constructs an *Error with no wrapped cause.
func New(code Code, op, path string) *Error {
	return &Error{Code: code, Op: op, Path: path}
}

// Wrap constructs an *Error that wraps an underlying cause (typically one
// surfaced by the SMB collaborator).
func Wrap(code Code, op, path string, err error) *Error {
	return &Error{Code: code, Op: op, Path: path, Err: err}
}

// Is reports whether err is an *Error with the given code. It allows callers
// to write `if fserrors.Is(err, fserrors.NotFound)` instead of type-asserting.
func Is(err error, code Code) bool {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code == code
	}
	return false
}

// CodeOf extracts the Code from err, defaulting to Io for errors this
// package did not produce (e.g. a raw network error that escaped mapping).
func CodeOf(err error) Code {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Code
	}
	return Io
}
