// Package dirstream implements the DirectoryStream spec §4.6 describes: an
// eager, filtered, one-shot enumeration of a directory's children.
package dirstream

import (
	"context"

	"github.com/smbvfs/smbvfs/internal/smbclient"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

// Filter reports whether child should be included in the stream. A nil
// Filter accepts every child.
type Filter func(child smbpath.Path) bool

// Stream is a one-shot, eagerly-populated directory listing. Unlike a lazy
// iterator, every child is fetched and filtered at construction time: the
// only suspension point is the single collaborator round trip New makes.
type Stream struct {
	entries []smbpath.Path
	read    bool
	closed  bool
}

// New verifies dir is a directory, lists its children eagerly, and applies
// filter (nil accepts everything). Returns NotFound if dir does not exist
// on the server and NotADirectory if it exists but is not a directory.
func New(ctx context.Context, collaborator smbclient.Collaborator, dir smbpath.Path, filter Filter) (*Stream, error) {
	rendered := dir.String()

	info, err := collaborator.Stat(ctx, rendered)
	if err != nil {
		return nil, err
	}
	if !info.Exists {
		return nil, fserrors.New(fserrors.NotFound, "DirectoryStream", rendered)
	}
	if !info.IsDirectory {
		return nil, fserrors.New(fserrors.NotADirectory, "DirectoryStream", rendered)
	}

	names, err := collaborator.ListChildrenNames(ctx, rendered)
	if err != nil {
		return nil, err
	}

	entries := make([]smbpath.Path, 0, len(names))
	for _, name := range names {
		child, err := dir.Resolve(smbpath.New(dir.FileSystem(), name))
		if err != nil {
			return nil, err
		}
		if filter != nil && !filter(child) {
			continue
		}
		entries = append(entries, child)
	}

	return &Stream{entries: entries}, nil
}

// Entries returns the enumerated children. It may be called exactly once;
// a second call, or a call after Close, fails with InvalidArgument standing
// in for java.nio's IllegalStateException (spec §4.6: "subsequent requests
// fail").
func (s *Stream) Entries() ([]smbpath.Path, error) {
	if s.closed {
		return nil, fserrors.New(fserrors.InvalidArgument, "DirectoryStream.Entries", "")
	}
	if s.read {
		return nil, fserrors.New(fserrors.InvalidArgument, "DirectoryStream.Entries", "")
	}
	s.read = true
	return s.entries, nil
}

// Close marks the stream closed. Idempotent.
func (s *Stream) Close() error {
	s.closed = true
	return nil
}
