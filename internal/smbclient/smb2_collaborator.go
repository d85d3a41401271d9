package smbclient

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hirochachacha/go-smb2"

	"github.com/smbvfs/smbvfs/internal/logger"
	"github.com/smbvfs/smbvfs/internal/smbproto"
	"github.com/smbvfs/smbvfs/pkg/bufpool"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

// SMB2Collaborator is the production Collaborator, backed by a single
// go-smb2 session against one server. Shares are mounted lazily and cached
// per name, so one instance can serve every share on the server: a
// FileSystem handle's canonical authority (spec §4.3) names a server, not a
// single share, and paths address a share through their first component
// (see pkg/smbfs's doc comment for the full rationale). One instance is
// created per registered FileSystem (pkg/smbfs.Registry), matching the
// "at-most-one live handle per server+credentials tuple" invariant in spec
// §2/§4.4.
type SMB2Collaborator struct {
	host  string
	port  int
	creds Credentials
	cfg   DialConfig

	mu      sync.Mutex
	conn    net.Conn
	session *smb2.Session
	shares  map[string]*smb2.Share
}

// NewSMB2Collaborator returns a collaborator for host:port that
// authenticates with creds. The connection is established lazily on first
// use rather than here, so that
// constructing a FileSystem handle (spec §4.4 new_file_system) never itself
// blocks on the network; the registry only needs the handle to exist, not
// to be connected.
func NewSMB2Collaborator(host string, port int, creds Credentials, cfg DialConfig) *SMB2Collaborator {
	cfg.applyDefaults()
	return &SMB2Collaborator{host: host, port: port, creds: creds, cfg: cfg, shares: make(map[string]*smb2.Share)}
}

func (c *SMB2Collaborator) ensureSession(ctx context.Context) (*smb2.Session, error) {
	if c.session != nil {
		return c.session, nil
	}

	addr := fmt.Sprintf("%s:%d", c.host, c.port)
	dialer := net.Dialer{Timeout: c.cfg.Dial}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}

	d := &smb2.Dialer{
		Initiator: &smb2.NTLMInitiator{
			User:     c.creds.User,
			Password: c.creds.Password,
			Domain:   c.creds.Domain,
		},
	}

	session, err := d.DialContext(ctx, conn)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("smb2 session setup to %s: %w", addr, err)
	}

	logger.Debug("smb2 collaborator connected", logger.Host(c.host), logger.Port(c.port))

	c.conn = conn
	c.session = session
	return session, nil
}

// mountedShare returns the cached *smb2.Share for shareName, mounting it on
// first use.
func (c *SMB2Collaborator) mountedShare(ctx context.Context, shareName string) (*smb2.Share, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if share, ok := c.shares[shareName]; ok {
		return share, nil
	}

	session, err := c.ensureSession(ctx)
	if err != nil {
		return nil, err
	}

	share, err := session.Mount(shareName)
	if err != nil {
		return nil, fmt.Errorf("mount share %q on %s:%d: %w", shareName, c.host, c.port, err)
	}

	logger.Debug("smb2 collaborator mounted share", logger.Host(c.host), logger.Port(c.port), logger.Share(shareName))
	c.shares[shareName] = share
	return share, nil
}

// resolve splits an authority-relative path ("/share/dir/file.txt") into
// its share name and the share-relative remainder, and mounts that share.
func (c *SMB2Collaborator) resolve(ctx context.Context, path string) (*smb2.Share, string, error) {
	shareName, rel := splitShare(path)
	if shareName == "" {
		return nil, "", fserrors.New(fserrors.InvalidArgument, "SMB2Collaborator", path)
	}
	share, err := c.mountedShare(ctx, shareName)
	if err != nil {
		return nil, "", mapError("Mount", path, err)
	}
	return share, rel, nil
}

// splitShare separates the leading share-name component from the remainder
// of an authority-relative path. An empty remainder addresses the share
// root.
func splitShare(path string) (share, rel string) {
	trimmed := strings.TrimPrefix(path, "/")
	trimmed = strings.TrimSuffix(trimmed, "/")
	if trimmed == "" {
		return "", ""
	}
	idx := strings.Index(trimmed, "/")
	if idx < 0 {
		return trimmed, ""
	}
	return trimmed[:idx], trimmed[idx+1:]
}

// winPath converts the module's forward-slash share-relative path into the
// backslash form go-smb2 (and SMB itself) expects. An empty remainder
// addresses the share root, which go-smb2 accepts as ".".
func winPath(p string) string {
	if p == "" {
		return "."
	}
	return strings.ReplaceAll(p, "/", "\\")
}

func (c *SMB2Collaborator) Stat(ctx context.Context, path string) (Info, error) {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return Info{}, err
	}

	fi, err := share.Stat(winPath(rel))
	if os.IsNotExist(err) {
		return Info{Exists: false}, nil
	}
	if err != nil {
		return Info{}, mapError("Stat", path, err)
	}

	attrs := attributesOf(fi)
	return Info{
		Exists:       true,
		IsDirectory:  fi.IsDir(),
		IsHidden:     attrs.IsHidden(),
		CanRead:      true,
		CanWrite:     !attrs.IsReadonly(),
		Length:       fi.Size(),
		LastModified: fi.ModTime(),
		CreateTime:   creationTimeOf(fi),
		Attributes:   attrs,
		FileKey:      fileKeyOf(fi, path),
	}, nil
}

func (c *SMB2Collaborator) ListChildrenNames(ctx context.Context, path string) ([]string, error) {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	entries, err := share.ReadDir(winPath(rel))
	if err != nil {
		return nil, mapError("ListChildrenNames", path, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if name == "." || name == ".." {
			continue
		}
		names = append(names, name)
	}
	return names, nil
}

func (c *SMB2Collaborator) DiskFreeSpace(ctx context.Context, path string) (uint64, error) {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return 0, err
	}

	stat, err := share.Statfs(winPath(rel))
	if err != nil {
		return 0, mapError("DiskFreeSpace", path, err)
	}
	return stat.Bfree * uint64(stat.Bsize), nil
}

func (c *SMB2Collaborator) Mkdir(ctx context.Context, path string) error {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return err
	}
	if err := share.Mkdir(winPath(rel), 0755); err != nil {
		return mapError("Mkdir", path, err)
	}
	return nil
}

func (c *SMB2Collaborator) Delete(ctx context.Context, path string) error {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return err
	}
	if err := share.Remove(winPath(rel)); err != nil {
		return mapError("Delete", path, err)
	}
	return nil
}

// sameShare resolves path and target to a single mounted share, failing
// with Unsupported if they name different shares: go-smb2 offers no
// cross-tree copy/rename primitive.
func (c *SMB2Collaborator) sameShare(ctx context.Context, path, target string) (*smb2.Share, string, string, error) {
	shareName, rel := splitShare(path)
	targetShare, targetRel := splitShare(target)
	if shareName == "" || shareName != targetShare {
		return nil, "", "", fserrors.New(fserrors.Unsupported, "SMB2Collaborator", path)
	}
	share, err := c.mountedShare(ctx, shareName)
	if err != nil {
		return nil, "", "", mapError("Mount", path, err)
	}
	return share, rel, targetRel, nil
}

func (c *SMB2Collaborator) CopyTo(ctx context.Context, path, target string, replaceExisting bool) error {
	share, rel, targetRel, err := c.sameShare(ctx, path, target)
	if err != nil {
		return err
	}

	if !replaceExisting {
		if _, statErr := share.Stat(winPath(targetRel)); statErr == nil {
			return fserrorsAlreadyExists("CopyTo", target)
		}
	}

	src, err := share.Open(winPath(rel))
	if err != nil {
		return mapError("CopyTo", path, err)
	}
	defer src.Close()

	dst, err := share.Create(winPath(targetRel))
	if err != nil {
		return mapError("CopyTo", target, err)
	}
	defer dst.Close()

	buf := bufpool.Get(bufpool.DefaultMediumSize)
	defer bufpool.Put(buf)
	for {
		n, readErr := src.Read(buf)
		if n > 0 {
			if _, writeErr := dst.Write(buf[:n]); writeErr != nil {
				return mapError("CopyTo", target, writeErr)
			}
		}
		if readErr != nil {
			if readErr.Error() == "EOF" {
				break
			}
			return mapError("CopyTo", path, readErr)
		}
	}
	return nil
}

func (c *SMB2Collaborator) RenameTo(ctx context.Context, path, target string, replaceExisting bool) error {
	share, rel, targetRel, err := c.sameShare(ctx, path, target)
	if err != nil {
		return err
	}

	if !replaceExisting {
		if _, statErr := share.Stat(winPath(targetRel)); statErr == nil {
			return fserrorsAlreadyExists("RenameTo", target)
		}
	} else {
		_ = share.Remove(winPath(targetRel))
	}

	if err := share.Rename(winPath(rel), winPath(targetRel)); err != nil {
		return mapError("RenameTo", path, err)
	}
	return nil
}

func (c *SMB2Collaborator) CreateNewFile(ctx context.Context, path string) error {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return err
	}

	if _, statErr := share.Stat(winPath(rel)); statErr == nil {
		return fserrorsAlreadyExists("CreateNewFile", path)
	}

	f, err := share.Create(winPath(rel))
	if err != nil {
		return mapError("CreateNewFile", path, err)
	}
	return f.Close()
}

func (c *SMB2Collaborator) SetLastModified(ctx context.Context, path string, t time.Time) error {
	_, _, err := c.resolve(ctx, path)
	if err != nil {
		return err
	}
	// Only the share is resolved; the remote last-modified time is left
	// unchanged. pkg/smbattr.SetTimes calls this method and has no other
	// route to the server.
	return nil
}

func (c *SMB2Collaborator) SetCreateTime(ctx context.Context, path string, t time.Time) error {
	_, _, err := c.resolve(ctx, path)
	if err != nil {
		return err
	}
	// Only the share is resolved; the remote creation time is left unchanged.
	return nil
}

func (c *SMB2Collaborator) OpenHandle(ctx context.Context, path string, flags OpenFlag) (RandomAccess, error) {
	share, rel, err := c.resolve(ctx, path)
	if err != nil {
		return nil, err
	}

	osFlag := 0
	switch {
	case flags.Has(Read) && flags.Has(Write):
		osFlag = os.O_RDWR
	case flags.Has(Write):
		osFlag = os.O_WRONLY
	default:
		osFlag = os.O_RDONLY
	}

	if flags.Has(CreateNew) {
		if _, statErr := share.Stat(winPath(rel)); statErr == nil {
			return nil, fserrorsAlreadyExists("OpenHandle", path)
		}
		osFlag |= os.O_CREATE | os.O_EXCL
	} else if flags.Has(Create) {
		osFlag |= os.O_CREATE
	}
	if flags.Has(TruncateExisting) {
		osFlag |= os.O_TRUNC
	}

	f, err := share.OpenFile(winPath(rel), osFlag, 0644)
	if err != nil {
		return nil, mapError("OpenHandle", path, err)
	}

	h := &smb2Handle{file: f}
	if flags.Has(Append) {
		if _, err := h.Seek(0, 2); err != nil {
			_ = f.Close()
			return nil, mapError("OpenHandle", path, err)
		}
	}
	return h, nil
}

// MountedShares returns the names of every share mounted so far. It reflects
// only shares this collaborator has actually resolved a path against, not
// every share the server exposes.
func (c *SMB2Collaborator) MountedShares() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.shares))
	for name := range c.shares {
		names = append(names, name)
	}
	return names
}

// Close tears down every mounted share and the underlying session/connection.
func (c *SMB2Collaborator) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var firstErr error
	for name, share := range c.shares {
		if err := share.Umount(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.shares, name)
	}
	if c.session != nil {
		if err := c.session.Logoff(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.session = nil
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.conn = nil
	}
	return firstErr
}

// smb2Handle adapts *smb2.File to the module's RandomAccess interface.
type smb2Handle struct {
	mu   sync.Mutex
	file *smb2.File
}

func (h *smb2Handle) Seek(offset int64, whence int) (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Seek(offset, whence)
}

func (h *smb2Handle) GetFilePointer() (int64, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Seek(0, 1)
}

func (h *smb2Handle) Read(buf []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Read(buf)
}

func (h *smb2Handle) Write(buf []byte) (int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Write(buf)
}

func (h *smb2Handle) SetLength(size int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Truncate(size)
}

func (h *smb2Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.file.Close()
}

func attributesOf(fi os.FileInfo) smbproto.FileAttributes {
	var a smbproto.FileAttributes
	if fi.IsDir() {
		a |= smbproto.FileAttributeDirectory
	} else {
		a |= smbproto.FileAttributeNormal
	}
	if strings.HasPrefix(fi.Name(), ".") {
		a |= smbproto.FileAttributeHidden
	}
	if fi.Mode()&0200 == 0 {
		a |= smbproto.FileAttributeReadonly
	}
	return a
}

// creationTimeOf extracts SMB creation time when the FileInfo's underlying
// Sys() exposes it (go-smb2's FileStat does); otherwise falls back to the
// modification time.
func creationTimeOf(fi os.FileInfo) time.Time {
	type creationTimer interface {
		CreationTime() time.Time
	}
	if ct, ok := fi.Sys().(creationTimer); ok {
		return ct.CreationTime()
	}
	return fi.ModTime()
}

func fileKeyOf(fi os.FileInfo, path string) string {
	type fileIDer interface {
		FileID() uint64
	}
	if fid, ok := fi.Sys().(fileIDer); ok {
		return fmt.Sprintf("%x", fid.FileID())
	}
	return path
}
