package dirstream

import (
	"context"
	"strings"
	"time"

	"github.com/smbvfs/smbvfs/internal/smbclient"
)

// fakeCollaborator is a minimal in-memory smbclient.Collaborator, just
// enough of the interface for the directory-stream construction path.
// Entries are keyed without leading or trailing slashes ("share/docs"),
// so lookups trim them from the rendered path the stream passes in.
type fakeCollaborator struct {
	stats    map[string]smbclient.Info
	children map[string][]string
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{stats: make(map[string]smbclient.Info), children: make(map[string][]string)}
}

func (f *fakeCollaborator) setDir(path string, names []string) {
	f.stats[path] = smbclient.Info{Exists: true, IsDirectory: true, LastModified: time.Now()}
	f.children[path] = names
}

func (f *fakeCollaborator) setFile(path string) {
	f.stats[path] = smbclient.Info{Exists: true, IsDirectory: false, LastModified: time.Now()}
}

func (f *fakeCollaborator) Stat(ctx context.Context, path string) (smbclient.Info, error) {
	info, ok := f.stats[strings.Trim(path, "/")]
	if !ok {
		return smbclient.Info{Exists: false}, nil
	}
	return info, nil
}

func (f *fakeCollaborator) ListChildrenNames(ctx context.Context, path string) ([]string, error) {
	return f.children[strings.Trim(path, "/")], nil
}

func (f *fakeCollaborator) DiskFreeSpace(ctx context.Context, path string) (uint64, error) {
	return 0, nil
}

func (f *fakeCollaborator) Mkdir(ctx context.Context, path string) error { return nil }

func (f *fakeCollaborator) Delete(ctx context.Context, path string) error { return nil }

func (f *fakeCollaborator) CopyTo(ctx context.Context, path, target string, replaceExisting bool) error {
	return nil
}

func (f *fakeCollaborator) RenameTo(ctx context.Context, path, target string, replaceExisting bool) error {
	return nil
}

func (f *fakeCollaborator) CreateNewFile(ctx context.Context, path string) error { return nil }

func (f *fakeCollaborator) SetLastModified(ctx context.Context, path string, t time.Time) error {
	return nil
}

func (f *fakeCollaborator) SetCreateTime(ctx context.Context, path string, t time.Time) error {
	return nil
}

func (f *fakeCollaborator) OpenHandle(ctx context.Context, path string, flags smbclient.OpenFlag) (smbclient.RandomAccess, error) {
	return nil, nil
}

func (f *fakeCollaborator) Close() error { return nil }

type fakeFileSystem struct{ id string }

func (fs fakeFileSystem) Identifier() string { return fs.id }
