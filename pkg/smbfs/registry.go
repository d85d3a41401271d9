// Package smbfs implements the FileSystem registry and handle spec §4.4/§4.3
// describe: a provider keyed by canonical authority, and the per-authority
// handle that dispatches path operations to an SMB collaborator.
//
// A canonical authority names a server plus credentials, not a single
// share (spec §6: "[domain;]user[:password]@host[:port]", no share
// component). One FileSystem handle can therefore address every share the
// authenticated session can reach; internal/smbclient.SMB2Collaborator
// mounts shares lazily by name as paths address them.
//
// Grounded on the teacher's pkg/registry.Registry: an RWMutex-guarded map
// with an exists-check before insert, generalized here from "named stores
// and shares" to "canonical authority -> FileSystem handle".
package smbfs

import (
	"context"
	"sync"

	"github.com/smbvfs/smbvfs/internal/logger"
	"github.com/smbvfs/smbvfs/internal/smbclient"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/metrics"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
	"github.com/smbvfs/smbvfs/pkg/watch"
	"github.com/smbvfs/smbvfs/pkg/watch/poller"
)

// CollaboratorFactory constructs the SMB collaborator backing a new
// FileSystem handle. Tests substitute a fake; production code leaves the
// Registry's default, which constructs an *smbclient.SMB2Collaborator.
type CollaboratorFactory func(host string, port int, creds smbclient.Credentials, cfg smbclient.DialConfig) smbclient.Collaborator

func defaultCollaboratorFactory(host string, port int, creds smbclient.Credentials, cfg smbclient.DialConfig) smbclient.Collaborator {
	return smbclient.NewSMB2Collaborator(host, port, creds, cfg)
}

// Registry is the provider of spec §4.4: a concurrent map from canonical
// authority to FileSystem handle, with insert-if-absent atomicity for
// new_file_system and lookup-or-create for get_or_create_file_system.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*FileSystem

	factory    CollaboratorFactory
	dialConfig smbclient.DialConfig
	defaults   ContextDefaults
	metrics    *metrics.Metrics
}

// NewRegistry creates an empty Registry. defaults supplies the third tier
// of the authority precedence chain (spec §4.3); dialConfig bounds every
// collaborator this registry constructs. m may be nil to disable metrics.
func NewRegistry(defaults ContextDefaults, dialConfig smbclient.DialConfig, m *metrics.Metrics) *Registry {
	return &Registry{
		handles:    make(map[string]*FileSystem),
		factory:    defaultCollaboratorFactory,
		dialConfig: dialConfig,
		defaults:   defaults,
		metrics:    m,
	}
}

// SetCollaboratorFactory overrides how new FileSystem handles construct
// their collaborator. Exported for tests; production callers leave the
// default go-smb2-backed factory in place.
func (r *Registry) SetCollaboratorFactory(f CollaboratorFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factory = f
}

// NewFileSystem computes uri's canonical authority and, if no handle is
// already registered under it, constructs one and inserts it atomically.
// Concurrent callers racing to register the same authority: exactly one
// succeeds, the rest observe AlreadyExists (spec §4.4).
func (r *Registry) NewFileSystem(ctx context.Context, uri string, rawOptions map[string]any) (*FileSystem, error) {
	parsed, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	opts, err := DecodeOptions(rawOptions)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.InvalidArgument, "Registry.NewFileSystem", uri, err)
	}
	authority := parsed.canonicalAuthority(opts, r.defaults)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handles[authority]; exists {
		return nil, fserrors.New(fserrors.AlreadyExists, "Registry.NewFileSystem", authority)
	}

	collaborator := r.factory(parsed.host, parsed.port, r.sessionCredentials(parsed, opts), r.dialConfig)

	fs := newFileSystem(authority, r, collaborator)
	if opts.WatchServiceEnabled {
		p := poller.New(newPollerCollaborator(collaborator), opts.WatchServicePollInterval, r.metrics)
		fs.watchService = watch.NewService(p)
		if r.metrics != nil {
			fs.watchService.SetMetrics(r.metrics)
		}
	}

	r.handles[authority] = fs
	if r.metrics != nil {
		r.metrics.SetRegistrySize(len(r.handles))
	}
	logger.Debug("smbfs: file system registered", logger.Authority(authority))
	return fs, nil
}

// GetFileSystem looks up an already-registered handle by uri's canonical
// authority, failing with NotFound on miss (spec §4.4). Credential
// precedence still applies: the authority is computed the same way
// NewFileSystem computes it, so lookup only succeeds against the exact
// identity a prior new_file_system/get_or_create_file_system produced.
func (r *Registry) GetFileSystem(uri string, rawOptions map[string]any) (*FileSystem, error) {
	parsed, err := parseURI(uri)
	if err != nil {
		return nil, err
	}
	opts, err := DecodeOptions(rawOptions)
	if err != nil {
		return nil, fserrors.Wrap(fserrors.InvalidArgument, "Registry.GetFileSystem", uri, err)
	}
	authority := parsed.canonicalAuthority(opts, r.defaults)

	r.mu.RLock()
	defer r.mu.RUnlock()

	fs, exists := r.handles[authority]
	if !exists {
		return nil, fserrors.New(fserrors.NotFound, "Registry.GetFileSystem", authority)
	}
	return fs, nil
}

// GetOrCreateFileSystem looks up uri's handle, creating one via
// NewFileSystem on miss (spec §4.4).
func (r *Registry) GetOrCreateFileSystem(ctx context.Context, uri string, rawOptions map[string]any) (*FileSystem, error) {
	fs, err := r.GetFileSystem(uri, rawOptions)
	if err == nil {
		return fs, nil
	}
	if !fserrors.Is(err, fserrors.NotFound) {
		return nil, err
	}

	fs, err = r.NewFileSystem(ctx, uri, rawOptions)
	if err == nil {
		return fs, nil
	}
	if fserrors.Is(err, fserrors.AlreadyExists) {
		// Lost the race: another caller inserted between our miss and our
		// insert attempt. Its handle is just as valid as ours would be.
		return r.GetFileSystem(uri, rawOptions)
	}
	return nil, err
}

// GetPath looks up or creates uri's FileSystem and returns a Path built
// from the URI's own path component (spec §4.4's get_path).
func (r *Registry) GetPath(ctx context.Context, uri string, rawOptions map[string]any) (smbpath.Path, error) {
	parsed, err := parseURI(uri)
	if err != nil {
		return smbpath.Path{}, err
	}
	fs, err := r.GetOrCreateFileSystem(ctx, uri, rawOptions)
	if err != nil {
		return smbpath.Path{}, err
	}
	return fs.GetPath(parsed.path), nil
}

// sessionCredentials picks which credential triple to actually authenticate
// with, following the same precedence canonicalAuthority uses to name the
// handle (spec §4.3): the URI's own embedded credentials win, then the
// options map, then the registry's context defaults.
func (r *Registry) sessionCredentials(parsed parsedURI, opts Options) smbclient.Credentials {
	if parsed.hasCreds {
		return smbclient.Credentials{Domain: parsed.userCreds.Domain, User: parsed.userCreds.User, Password: parsed.userCreds.Password}
	}
	if creds := opts.Credentials(); !creds.Anonymous() {
		return creds
	}
	return smbclient.Credentials{Domain: r.defaults.Domain, User: r.defaults.Username, Password: r.defaults.Password}
}

// remove deletes authority's handle from the registry. Called once by
// FileSystem.Close; a FileSystem handle's "open" state is exactly its
// presence in this map (spec §4.3).
func (r *Registry) remove(authority string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, authority)
	if r.metrics != nil {
		r.metrics.SetRegistrySize(len(r.handles))
	}
}
