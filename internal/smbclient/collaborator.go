// Package smbclient defines the narrow interface the core of this module
// calls through to talk to a remote SMB/CIFS server (spec §6, "Operations
// the SMB collaborator must supply") and a concrete implementation backed
// by github.com/hirochachacha/go-smb2.
//
// Nothing above this package parses an SMB2 header, negotiates a dialect,
// or signs a message — that protocol work is exactly what spec.md marks out
// of scope for the core, and go-smb2 already does it.
package smbclient

import (
	"context"
	"io"
	"time"

	"github.com/smbvfs/smbvfs/internal/smbproto"
)

// OpenFlag mirrors the subset of java.nio.file.StandardOpenOption that
// spec §4.4 says the registry honors for byte channels.
type OpenFlag int

const (
	Read OpenFlag = 1 << iota
	Write
	Create
	CreateNew
	Append
	TruncateExisting
)

func (f OpenFlag) Has(flag OpenFlag) bool { return f&flag != 0 }

// Info is the raw stat snapshot the collaborator returns for a path; it is
// the source data for pkg/smbattr's BasicFileAttributes.
type Info struct {
	Exists       bool
	IsDirectory  bool
	IsHidden     bool
	CanRead      bool
	CanWrite     bool
	Length       int64
	LastModified time.Time
	CreateTime   time.Time
	Attributes   smbproto.FileAttributes
	FileKey      string
}

// RandomAccess is a remote random-access file handle, the thing
// pkg/channel.Channel adapts.
type RandomAccess interface {
	io.Closer
	Seek(offset int64, whence int) (int64, error)
	GetFilePointer() (int64, error)
	Read(buf []byte) (int, error)
	Write(buf []byte) (int, error)
	SetLength(size int64) error
}

// Collaborator is the full set of remote operations the core dispatches to.
// Every method takes an authority-relative slash path produced by
// pkg/smbpath.Path.String: no leading authority, but the first component
// names the share the rest of the path lives under.
type Collaborator interface {
	Stat(ctx context.Context, path string) (Info, error)
	ListChildrenNames(ctx context.Context, path string) ([]string, error)
	DiskFreeSpace(ctx context.Context, path string) (uint64, error)

	Mkdir(ctx context.Context, path string) error
	Delete(ctx context.Context, path string) error
	CopyTo(ctx context.Context, path, target string, replaceExisting bool) error
	RenameTo(ctx context.Context, path, target string, replaceExisting bool) error
	CreateNewFile(ctx context.Context, path string) error
	SetLastModified(ctx context.Context, path string, t time.Time) error
	SetCreateTime(ctx context.Context, path string, t time.Time) error

	OpenHandle(ctx context.Context, path string, flags OpenFlag) (RandomAccess, error)

	// Close tears down the underlying session/share. Called once when a
	// FileSystem handle is removed from the registry.
	Close() error
}
