// Package smbattr snapshots a remote file's basic attributes and applies
// time updates, adapting internal/smbclient.Info into the read-only view
// spec §4.5 describes.
package smbattr

import (
	"context"
	"time"

	"github.com/smbvfs/smbvfs/internal/smbclient"
)

// BasicFileAttributes is a point-in-time snapshot of a remote file's stat
// data. LastAccessTime is reported as the Unix epoch when the collaborator
// does not expose it; IsSymbolicLink and IsOther are always false, since
// neither reparse points nor device-file reporting are implemented.
type BasicFileAttributes struct {
	CreationTime     time.Time
	LastModifiedTime time.Time
	LastAccessTime   time.Time
	Size             int64
	IsDirectory      bool
	IsRegularFile    bool
	IsSymbolicLink   bool
	IsOther          bool
	FileKey          string
}

// Read captures a BasicFileAttributes snapshot for path from collaborator.
func Read(ctx context.Context, collaborator smbclient.Collaborator, path string) (BasicFileAttributes, error) {
	info, err := collaborator.Stat(ctx, path)
	if err != nil {
		return BasicFileAttributes{}, err
	}
	return FromInfo(info), nil
}

// FromInfo converts a raw collaborator stat result into a
// BasicFileAttributes snapshot.
func FromInfo(info smbclient.Info) BasicFileAttributes {
	return BasicFileAttributes{
		CreationTime:     info.CreateTime,
		LastModifiedTime: info.LastModified,
		LastAccessTime:   time.Unix(0, 0).UTC(),
		Size:             info.Length,
		IsDirectory:      info.IsDirectory,
		IsRegularFile:    !info.IsDirectory,
		IsSymbolicLink:   false,
		IsOther:          false,
		FileKey:          info.FileKey,
	}
}

// Times is the set of timestamps SetTimes may update. A zero Time field is
// left untouched on the remote server, mirroring java.nio's "null means no
// change" convention for setTimes.
type Times struct {
	LastModifiedTime time.Time
	CreationTime     time.Time
}

// SetTimes propagates the non-zero fields of t to path through collaborator.
func SetTimes(ctx context.Context, collaborator smbclient.Collaborator, path string, t Times) error {
	if !t.LastModifiedTime.IsZero() {
		if err := collaborator.SetLastModified(ctx, path, t.LastModifiedTime); err != nil {
			return err
		}
	}
	if !t.CreationTime.IsZero() {
		if err := collaborator.SetCreateTime(ctx, path, t.CreationTime); err != nil {
			return err
		}
	}
	return nil
}
