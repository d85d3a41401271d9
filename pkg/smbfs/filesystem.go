package smbfs

import (
	"context"
	"sync"

	"github.com/smbvfs/smbvfs/internal/logger"
	"github.com/smbvfs/smbvfs/internal/smbclient"
	"github.com/smbvfs/smbvfs/internal/telemetry"
	"github.com/smbvfs/smbvfs/pkg/channel"
	"github.com/smbvfs/smbvfs/pkg/dirstream"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/pathmatcher"
	"github.com/smbvfs/smbvfs/pkg/smbattr"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
	"github.com/smbvfs/smbvfs/pkg/watch"
)

// OpenOption mirrors java.nio.file.StandardOpenOption as spec §4.4 names it:
// a superset of internal/smbclient.OpenFlag that also carries the four
// options this layer always rejects (Sync/DSync/Sparse/DeleteOnClose), so
// the rejection happens at the dispatch boundary rather than inside the
// collaborator.
type OpenOption int

const (
	OpenRead OpenOption = 1 << iota
	OpenWrite
	OpenCreate
	OpenCreateNew
	OpenAppend
	OpenTruncateExisting
	OpenSync
	OpenDSync
	OpenSparse
	OpenDeleteOnClose
)

func (o OpenOption) has(flag OpenOption) bool { return o&flag != 0 }

var unsupportedOpenOptions = OpenSync | OpenDSync | OpenSparse | OpenDeleteOnClose

func (o OpenOption) toCollaboratorFlag() smbclient.OpenFlag {
	var f smbclient.OpenFlag
	if o.has(OpenRead) {
		f |= smbclient.Read
	}
	if o.has(OpenWrite) {
		f |= smbclient.Write
	}
	if o.has(OpenCreate) {
		f |= smbclient.Create
	}
	if o.has(OpenCreateNew) {
		f |= smbclient.CreateNew
	}
	if o.has(OpenAppend) {
		f |= smbclient.Append
	}
	if o.has(OpenTruncateExisting) {
		f |= smbclient.TruncateExisting
	}
	return f
}

// CopyOptions mirrors the java.nio.file.CopyOption set spec §4.4 recognizes.
// CopyAttributes is accepted but may be silently ignored (logged at debug),
// since the SMB collaborator's copy_to has no attribute-preserving mode.
type CopyOptions struct {
	ReplaceExisting bool
	CopyAttributes  bool
}

// FileSystem is the handle of spec §4.3/§4.5: one authenticated collaborator
// session plus an optional watch poller, reachable from the registry by its
// canonical authority. A handle's "open" state is exactly its presence in
// the registry; Close removes it.
type FileSystem struct {
	identifier   string
	registry     *Registry
	collaborator smbclient.Collaborator
	watchService *watch.Service

	mu     sync.Mutex
	closed bool
}

func newFileSystem(identifier string, registry *Registry, collaborator smbclient.Collaborator) *FileSystem {
	return &FileSystem{identifier: identifier, registry: registry, collaborator: collaborator}
}

// Identifier returns the canonical authority this handle is registered
// under, satisfying pkg/smbpath.FileSystem.
func (fs *FileSystem) Identifier() string { return fs.identifier }

// Closed reports whether Close has removed this handle from its registry.
func (fs *FileSystem) Closed() bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.closed
}

// Close removes this handle from its registry and shuts down its watch
// service, if any. It does not itself own any socket (spec §4.3): the
// underlying collaborator session is torn down here since nothing else
// references it once the handle is gone. Idempotent.
func (fs *FileSystem) Close(ctx context.Context) error {
	fs.mu.Lock()
	if fs.closed {
		fs.mu.Unlock()
		return nil
	}
	fs.closed = true
	fs.mu.Unlock()

	fs.registry.remove(fs.identifier)
	var err error
	if fs.watchService != nil {
		err = fs.watchService.Close(ctx)
	}
	if closeErr := fs.collaborator.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	logger.Debug("smbfs: file system closed", logger.Authority(fs.identifier))
	return err
}

// WatchService returns this handle's watch service, or nil if
// smb.watchservice.enabled was false at construction.
func (fs *FileSystem) WatchService() *watch.Service { return fs.watchService }

// GetPath builds a Path on this handle from its string form.
func (fs *FileSystem) GetPath(s string) smbpath.Path {
	return smbpath.New(fs, s)
}

func (fs *FileSystem) checkOpen(op, rendered string) error {
	if fs.Closed() {
		return fserrors.New(fserrors.ClosedFileSystem, op, rendered)
	}
	return nil
}

// OpenByteChannel opens path as a SeekableByteChannel honoring opts (spec
// §4.4's open-option handling). Sync/DSync/Sparse/DeleteOnClose fail with
// Unsupported before any collaborator call is made.
func (fs *FileSystem) OpenByteChannel(ctx context.Context, path smbpath.Path, opts OpenOption) (*channel.Channel, error) {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.OpenByteChannel", rendered); err != nil {
		return nil, err
	}
	if opts&unsupportedOpenOptions != 0 {
		return nil, fserrors.New(fserrors.Unsupported, "FileSystem.OpenByteChannel", rendered)
	}

	spanCtx, span := telemetry.StartSMBSpan(ctx, "open", "", rendered)
	defer span.End()

	handle, err := fs.collaborator.OpenHandle(spanCtx, rendered, opts.toCollaboratorFlag())
	if err != nil {
		telemetry.RecordError(spanCtx, err)
		return nil, err
	}
	return channel.New(handle, fs.registry.metrics), nil
}

// NewDirectoryStream eagerly enumerates path's children, applying matcher
// as a filter if non-nil (spec §4.6). Fails with NotFound if path does not
// exist and NotADirectory if it is not a directory.
func (fs *FileSystem) NewDirectoryStream(ctx context.Context, path smbpath.Path, matcher *pathmatcher.Matcher) (*dirstream.Stream, error) {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.NewDirectoryStream", rendered); err != nil {
		return nil, err
	}

	var filter dirstream.Filter
	if matcher != nil {
		filter = matcher.Matches
	}
	return dirstream.New(ctx, fs.collaborator, path, filter)
}

// CreateDirectory creates path as a directory.
func (fs *FileSystem) CreateDirectory(ctx context.Context, path smbpath.Path) error {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.CreateDirectory", rendered); err != nil {
		return err
	}
	return fs.collaborator.Mkdir(ctx, rendered)
}

// Delete removes path.
func (fs *FileSystem) Delete(ctx context.Context, path smbpath.Path) error {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.Delete", rendered); err != nil {
		return err
	}
	return fs.collaborator.Delete(ctx, rendered)
}

// Copy copies source to target honoring opts.ReplaceExisting (spec §4.4).
// opts.CopyAttributes is accepted but has no effect beyond a debug log,
// since the collaborator's copy_to has no attribute-preserving mode.
func (fs *FileSystem) Copy(ctx context.Context, source, target smbpath.Path, opts CopyOptions) error {
	rendered := source.String()
	if err := fs.checkOpen("FileSystem.Copy", rendered); err != nil {
		return err
	}
	if opts.CopyAttributes {
		logger.Debug("smbfs: copy_attributes requested but not supported by the collaborator", logger.Path(rendered))
	}
	return fs.collaborator.CopyTo(ctx, rendered, target.String(), opts.ReplaceExisting)
}

// Move renames source to target honoring replaceExisting (spec §4.4).
func (fs *FileSystem) Move(ctx context.Context, source, target smbpath.Path, replaceExisting bool) error {
	rendered := source.String()
	if err := fs.checkOpen("FileSystem.Move", rendered); err != nil {
		return err
	}
	return fs.collaborator.RenameTo(ctx, rendered, target.String(), replaceExisting)
}

// CreateFile creates path as a new, empty file, failing with AlreadyExists
// if it is already present.
func (fs *FileSystem) CreateFile(ctx context.Context, path smbpath.Path) error {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.CreateFile", rendered); err != nil {
		return err
	}
	return fs.collaborator.CreateNewFile(ctx, rendered)
}

// SameFile reports whether a and b name the same underlying remote file, by
// comparing stable file keys (spec §4.4/§4.5).
func (fs *FileSystem) SameFile(ctx context.Context, a, b smbpath.Path) (bool, error) {
	if a.FileSystem() != nil && b.FileSystem() != nil {
		if aid, bid := a.FileSystem().Identifier(), b.FileSystem().Identifier(); aid != bid {
			return false, nil
		}
	}
	if a.String() == b.String() {
		return true, nil
	}

	infoA, err := fs.collaborator.Stat(ctx, a.String())
	if err != nil {
		return false, err
	}
	infoB, err := fs.collaborator.Stat(ctx, b.String())
	if err != nil {
		return false, err
	}
	if !infoA.Exists || !infoB.Exists {
		return false, nil
	}
	return infoA.FileKey == infoB.FileKey, nil
}

// IsHidden reports whether path carries the remote hidden attribute.
func (fs *FileSystem) IsHidden(ctx context.Context, path smbpath.Path) (bool, error) {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.IsHidden", rendered); err != nil {
		return false, err
	}
	info, err := fs.collaborator.Stat(ctx, rendered)
	if err != nil {
		return false, err
	}
	if !info.Exists {
		return false, fserrors.New(fserrors.NotFound, "FileSystem.IsHidden", rendered)
	}
	return info.IsHidden, nil
}

// AccessMode is the bitset CheckAccess validates against, mirroring
// java.nio.file.AccessMode.
type AccessMode int

const (
	AccessRead AccessMode = 1 << iota
	AccessWrite
	AccessExecute
)

// CheckAccess reports NotFound if path does not exist and AccessDenied if
// it does not support every requested mode. Execute access is not modeled by the
// collaborator and is treated as implied by existence, matching the
// common SMB posture of "no separate execute bit for regular files".
func (fs *FileSystem) CheckAccess(ctx context.Context, path smbpath.Path, modes AccessMode) error {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.CheckAccess", rendered); err != nil {
		return err
	}
	info, err := fs.collaborator.Stat(ctx, rendered)
	if err != nil {
		return err
	}
	if !info.Exists {
		return fserrors.New(fserrors.NotFound, "FileSystem.CheckAccess", rendered)
	}
	if modes&AccessRead != 0 && !info.CanRead {
		return fserrors.New(fserrors.AccessDenied, "FileSystem.CheckAccess", rendered)
	}
	if modes&AccessWrite != 0 && !info.CanWrite {
		return fserrors.New(fserrors.AccessDenied, "FileSystem.CheckAccess", rendered)
	}
	return nil
}

// ReadAttributes captures a BasicFileAttributes snapshot of path (spec §4.5).
func (fs *FileSystem) ReadAttributes(ctx context.Context, path smbpath.Path) (smbattr.BasicFileAttributes, error) {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.ReadAttributes", rendered); err != nil {
		return smbattr.BasicFileAttributes{}, err
	}
	return smbattr.Read(ctx, fs.collaborator, rendered)
}

// SetTimes passes non-zero timestamps in t for path to the collaborator
// (spec §4.5). SMB2Collaborator returns nil for them without changing the
// remote timestamps.
func (fs *FileSystem) SetTimes(ctx context.Context, path smbpath.Path, t smbattr.Times) error {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.SetTimes", rendered); err != nil {
		return err
	}
	return smbattr.SetTimes(ctx, fs.collaborator, rendered, t)
}

// DiskFreeSpace reports free bytes on the share containing path.
func (fs *FileSystem) DiskFreeSpace(ctx context.Context, path smbpath.Path) (uint64, error) {
	rendered := path.String()
	if err := fs.checkOpen("FileSystem.DiskFreeSpace", rendered); err != nil {
		return 0, err
	}
	return fs.collaborator.DiskFreeSpace(ctx, rendered)
}

// GetFileStore always reports Unsupported: spec §4.4 explicitly excludes a
// generic file-store abstraction from this module's scope.
func (fs *FileSystem) GetFileStore(path smbpath.Path) error {
	return fserrors.New(fserrors.Unsupported, "FileSystem.GetFileStore", path.String())
}

// shareLister is satisfied by *internal/smbclient.SMB2Collaborator; declared
// here, not in internal/smbclient, so that package stays ignorant of its
// callers.
type shareLister interface {
	MountedShares() []string
}

// Shares lists the share names this handle has mounted so far (one per
// distinct first path component addressed since construction). It reports
// only shares already touched; it does not enumerate shares the server
// exposes but this handle has never been asked to resolve.
func (fs *FileSystem) Shares() []string {
	if l, ok := fs.collaborator.(shareLister); ok {
		return l.MountedShares()
	}
	return nil
}

// Register asks this handle's watch service to track path, failing with
// InvalidArgument if watch support was not enabled for this handle.
func (fs *FileSystem) Register(ctx context.Context, path smbpath.Path, kinds []watch.Kind) (*watch.Key, error) {
	if fs.watchService == nil {
		return nil, fserrors.New(fserrors.InvalidArgument, "FileSystem.Register", path.String())
	}
	return fs.watchService.Register(ctx, path, kinds)
}
