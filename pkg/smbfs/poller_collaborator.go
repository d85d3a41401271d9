package smbfs

import (
	"context"

	"github.com/smbvfs/smbvfs/internal/smbclient"
	"github.com/smbvfs/smbvfs/pkg/watch/poller"
)

// pollerCollaborator narrows a full smbclient.Collaborator down to the
// Stat/ListChildrenNames surface pkg/watch/poller needs, converting
// smbclient.Info into the poller's own, smaller Info shape.
type pollerCollaborator struct {
	inner smbclient.Collaborator
}

func newPollerCollaborator(inner smbclient.Collaborator) poller.Collaborator {
	return pollerCollaborator{inner: inner}
}

func (c pollerCollaborator) Stat(ctx context.Context, path string) (poller.Info, error) {
	info, err := c.inner.Stat(ctx, path)
	if err != nil {
		return poller.Info{}, err
	}
	return poller.Info{
		Exists:       info.Exists,
		IsDirectory:  info.IsDirectory,
		LastModified: info.LastModified,
	}, nil
}

func (c pollerCollaborator) ListChildrenNames(ctx context.Context, path string) ([]string, error) {
	return c.inner.ListChildrenNames(ctx, path)
}
