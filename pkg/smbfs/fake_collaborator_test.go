package smbfs

import (
	"context"
	"sync"
	"time"

	"github.com/smbvfs/smbvfs/internal/smbclient"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

// fakeCollaborator is a minimal in-memory smbclient.Collaborator used to
// exercise Registry and FileSystem without a real SMB server.
type fakeCollaborator struct {
	mu       sync.Mutex
	stats    map[string]smbclient.Info
	children map[string][]string
	closed   bool
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{stats: make(map[string]smbclient.Info), children: make(map[string][]string)}
}

func (f *fakeCollaborator) setFile(path string, info smbclient.Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[path] = info
}

func (f *fakeCollaborator) setDir(path string, names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[path] = smbclient.Info{Exists: true, IsDirectory: true, LastModified: time.Now()}
	f.children[path] = names
}

func (f *fakeCollaborator) Stat(ctx context.Context, path string) (smbclient.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.stats[path]
	if !ok {
		return smbclient.Info{Exists: false}, nil
	}
	return info, nil
}

func (f *fakeCollaborator) ListChildrenNames(ctx context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.children[path]...), nil
}

func (f *fakeCollaborator) DiskFreeSpace(ctx context.Context, path string) (uint64, error) {
	return 1 << 30, nil
}

func (f *fakeCollaborator) Mkdir(ctx context.Context, path string) error {
	f.setDir(path, nil)
	return nil
}

func (f *fakeCollaborator) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stats, path)
	delete(f.children, path)
	return nil
}

func (f *fakeCollaborator) CopyTo(ctx context.Context, path, target string, replaceExisting bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.stats[target]; exists && !replaceExisting {
		return fserrors.New(fserrors.AlreadyExists, "CopyTo", target)
	}
	f.stats[target] = f.stats[path]
	return nil
}

func (f *fakeCollaborator) RenameTo(ctx context.Context, path, target string, replaceExisting bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.stats[target]; exists && !replaceExisting {
		return fserrors.New(fserrors.AlreadyExists, "RenameTo", target)
	}
	f.stats[target] = f.stats[path]
	delete(f.stats, path)
	return nil
}

func (f *fakeCollaborator) CreateNewFile(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.stats[path]; exists {
		return fserrors.New(fserrors.AlreadyExists, "CreateNewFile", path)
	}
	f.stats[path] = smbclient.Info{Exists: true, CanRead: true, CanWrite: true, LastModified: time.Now()}
	return nil
}

func (f *fakeCollaborator) SetLastModified(ctx context.Context, path string, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.stats[path]
	info.LastModified = t
	f.stats[path] = info
	return nil
}

func (f *fakeCollaborator) SetCreateTime(ctx context.Context, path string, t time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	info := f.stats[path]
	info.CreateTime = t
	f.stats[path] = info
	return nil
}

func (f *fakeCollaborator) OpenHandle(ctx context.Context, path string, flags smbclient.OpenFlag) (smbclient.RandomAccess, error) {
	return nil, fserrors.New(fserrors.Unsupported, "OpenHandle", path)
}

func (f *fakeCollaborator) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func fakeFactory(coll *fakeCollaborator) CollaboratorFactory {
	return func(host string, port int, creds smbclient.Credentials, cfg smbclient.DialConfig) smbclient.Collaborator {
		return coll
	}
}
