// Package poller implements the background diffing engine of spec §4.10:
// a request/response control plane (REGISTER/CANCEL/CLOSE) serviced by a
// single worker goroutine that also runs the periodic poll pass comparing
// observed remote state against cached state.
//
// Grounded on the teacher's pkg/cache/flusher.BackgroundFlusher for the
// worker-goroutine shape (one loop goroutine joined through a
// sync.WaitGroup), adapted from "sweep idle cache entries on a ticker" to
// "drain a command queue, diff remote state, sleep". Here the loop ends
// only on a CLOSE request, and Close joins it. The request/response
// control plane (REGISTER/CANCEL/CLOSE serviced by the same goroutine that
// owns the poll loop) draws on the teacher's
// pkg/controlplane/runtime.SettingsWatcher (single mutating goroutine,
// readers go through a mutex) and on its SMB CHANGE_NOTIFY implementation,
// internal/adapter/smb/v2/handlers/change_notify.go's NotifyRegistry
// (map of pending watches keyed by path), generalized from one-shot
// wire-level notification to a persistent, re-pollable registration.
package poller

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/smbvfs/smbvfs/internal/logger"
	"github.com/smbvfs/smbvfs/internal/telemetry"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
	"github.com/smbvfs/smbvfs/pkg/watch"
)

// Info is the subset of a collaborator stat result the poller diffs
// against; it is satisfied by internal/smbclient.Info.
type Info struct {
	Exists       bool
	IsDirectory  bool
	LastModified time.Time
}

// Collaborator is the narrow remote-query surface the poller needs: enough
// to detect existence, modification, and directory membership changes,
// without pulling in the full internal/smbclient.Collaborator (open/write/
// rename/etc. never happen from a poll pass).
type Collaborator interface {
	Stat(ctx context.Context, path string) (Info, error)
	ListChildrenNames(ctx context.Context, path string) ([]string, error)
}

// Metrics receives poll-pass counters; nil disables instrumentation.
type Metrics interface {
	IncPollPass()
	IncPollError()
}

// DefaultPollInterval is used when a non-positive interval is supplied,
// matching spec §6's default for smb.watchservice.pollInterval.
const DefaultPollInterval = 30 * time.Second

type requestKind int

const (
	reqRegister requestKind = iota
	reqCancel
	reqClose
)

type request struct {
	kind     requestKind
	path     smbpath.Path
	rendered string
	kinds    []watch.Kind
	watcher  *watch.Service
	result   chan result
}

type result struct {
	key *watch.Key
	err error
}

type registration struct {
	key          *watch.Key
	path         smbpath.Path
	rendered     string
	lastModified time.Time
	isDir        bool
	children     map[string]bool
}

// Poller is the concrete background engine. It satisfies watch.Poller
// structurally, so a *watch.Service can hold one without this package
// importing pkg/watch/service.go's Service type back.
type Poller struct {
	collaborator Collaborator
	interval     time.Duration
	metrics      Metrics

	mu       sync.Mutex
	closed   bool
	requests chan *request

	registrations map[string]*registration

	wg sync.WaitGroup
}

// New constructs a Poller and starts its worker goroutine immediately.
// interval <= 0 falls back to DefaultPollInterval. metrics may be nil.
func New(collaborator Collaborator, interval time.Duration, metrics Metrics) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p := &Poller{
		collaborator:  collaborator,
		interval:      interval,
		metrics:       metrics,
		requests:      make(chan *request, 64),
		registrations: make(map[string]*registration),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Register validates kinds, enqueues a REGISTER request, and blocks for the
// worker's result (spec §4.10's REGISTER).
func (p *Poller) Register(ctx context.Context, path smbpath.Path, kinds []watch.Kind, watcher *watch.Service) (*watch.Key, error) {
	rendered := path.String()

	if len(kinds) == 0 {
		return nil, fserrors.New(fserrors.InvalidArgument, "Poller.Register", rendered)
	}
	for _, k := range kinds {
		if !k.Valid() {
			return nil, fserrors.New(fserrors.Unsupported, "Poller.Register", rendered)
		}
	}

	req := &request{kind: reqRegister, path: path, rendered: rendered, kinds: kinds, watcher: watcher}
	res, err := p.invoke(ctx, req)
	if err != nil {
		return nil, err
	}
	return res.key, nil
}

// Cancel enqueues a CANCEL request for path and blocks for its completion.
func (p *Poller) Cancel(ctx context.Context, path smbpath.Path) error {
	req := &request{kind: reqCancel, path: path, rendered: path.String()}
	_, err := p.invoke(ctx, req)
	return err
}

// Close enqueues a CLOSE request, waits for the worker to process it and
// exit, then joins the worker goroutine.
func (p *Poller) Close(ctx context.Context) error {
	req := &request{kind: reqClose}
	_, err := p.invoke(ctx, req)
	p.wg.Wait()
	return err
}

// invoke enqueues req and blocks until the worker releases its result or
// ctx is cancelled. Enqueue itself fails fast with ClosedWatchService once
// shutdown has begun (spec §4.10: "further enqueue attempts fail").
func (p *Poller) invoke(ctx context.Context, req *request) (result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return result{}, fserrors.New(fserrors.ClosedWatchService, "Poller", req.rendered)
	}
	req.result = make(chan result, 1)
	p.requests <- req
	p.mu.Unlock()

	select {
	case res := <-req.result:
		return res, res.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
}

// run is the worker loop of spec §4.10: drain pending requests, poll, sleep,
// repeat. A CLOSE request ends the loop after it has been fully processed.
func (p *Poller) run() {
	defer p.wg.Done()

	for {
		if p.drainPending() {
			return
		}
		p.pollOnce()

		timer := time.NewTimer(p.interval)
		select {
		case <-timer.C:
		case req := <-p.requests:
			timer.Stop()
			if p.handle(req) {
				return
			}
		}
	}
}

// drainPending executes every currently queued request without blocking.
// Returns true if a CLOSE request was among them.
func (p *Poller) drainPending() bool {
	for {
		select {
		case req := <-p.requests:
			if p.handle(req) {
				return true
			}
		default:
			return false
		}
	}
}

// handle executes one request and reports whether it was CLOSE.
func (p *Poller) handle(req *request) bool {
	switch req.kind {
	case reqRegister:
		key, err := p.handleRegister(req)
		req.result <- result{key: key, err: err}
		return false

	case reqCancel:
		p.handleCancel(req.rendered)
		req.result <- result{}
		return false

	case reqClose:
		p.mu.Lock()
		p.closed = true
		p.mu.Unlock()
		p.registrations = make(map[string]*registration)

		for {
			select {
			case pending := <-p.requests:
				pending.result <- result{err: fserrors.New(fserrors.ClosedWatchService, "Poller", pending.rendered)}
			default:
				req.result <- result{}
				return true
			}
		}

	default:
		return false
	}
}

func (p *Poller) handleRegister(req *request) (*watch.Key, error) {
	ctx := context.Background()
	info, err := p.collaborator.Stat(ctx, req.rendered)
	if err != nil {
		return nil, err
	}

	key := watch.NewKey(req.path, req.kinds, req.watcher)
	reg := &registration{
		key:          key,
		path:         req.path,
		rendered:     req.rendered,
		lastModified: info.LastModified,
		isDir:        info.IsDirectory,
	}
	if info.IsDirectory {
		names, err := p.collaborator.ListChildrenNames(ctx, req.rendered)
		if err != nil {
			logger.Warn("poller: initial listing failed", logger.Path(req.rendered), logger.Err(err))
		} else {
			reg.children = toSet(names)
		}
	}

	p.registrations[req.rendered] = reg
	logger.Debug("poller: registered", logger.Path(req.rendered), logger.WatchKeyID(key.ID()))
	return key, nil
}

func (p *Poller) handleCancel(rendered string) {
	if reg, ok := p.registrations[rendered]; ok {
		reg.key.Cancel(context.Background())
		delete(p.registrations, rendered)
	}
}

// pendingSignal is one change to deliver once the whole poll pass has been
// collected and globally ordered (spec §4.10: "Events collected during one
// poll are then sorted by (DELETE < CREATE < MODIFY)").
type pendingSignal struct {
	key      *watch.Key
	kind     watch.Kind
	path     smbpath.Path
	clearReg *registration
}

// pollOnce runs one diffing pass over every registration, then signals the
// resulting events in DELETE, CREATE, MODIFY order.
func (p *Poller) pollOnce() {
	if len(p.registrations) == 0 {
		return
	}

	if p.metrics != nil {
		p.metrics.IncPollPass()
	}

	ctx := context.Background()
	var pending []pendingSignal

	for rendered, reg := range p.registrations {
		spanCtx, span := telemetry.StartPollerSpan(ctx, rendered)
		info, err := p.collaborator.Stat(spanCtx, rendered)
		if err != nil {
			telemetry.RecordError(spanCtx, err)
			span.End()
			if p.metrics != nil {
				p.metrics.IncPollError()
			}
			logger.Warn("poller: stat failed", logger.Path(rendered), logger.Err(err))
			continue
		}

		if !info.Exists {
			pending = append(pending, pendingSignal{key: reg.key, kind: watch.Delete, path: reg.path, clearReg: reg})
			span.End()
			continue
		}

		if info.LastModified.After(reg.lastModified) {
			reg.lastModified = info.LastModified

			if reg.isDir {
				names, err := p.collaborator.ListChildrenNames(spanCtx, rendered)
				if err != nil {
					telemetry.RecordError(spanCtx, err)
					if p.metrics != nil {
						p.metrics.IncPollError()
					}
					logger.Warn("poller: list failed", logger.Path(rendered), logger.Err(err))
					span.End()
					continue
				}
				pending = append(pending, p.diffChildren(reg, rendered, names)...)
			} else {
				pending = append(pending, pendingSignal{key: reg.key, kind: watch.Modify, path: reg.path})
			}
		}
		span.End()
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return kindRank(pending[i].kind) < kindRank(pending[j].kind)
	})

	for _, s := range pending {
		s.key.Signal(s.kind, s.path)
		if s.kind == watch.Delete && s.clearReg != nil {
			s.clearReg.lastModified = time.Time{}
			s.clearReg.children = nil
		}
	}
}

// diffChildren compares reg's cached children against the freshly listed
// names, synthesizing DELETE/CREATE signals for additions and removals. A
// removed child that is itself a registered directory is dropped from the
// cache without a DELETE, so recursive removal does not produce spurious
// leaf-deletes (spec §4.10).
func (p *Poller) diffChildren(reg *registration, rendered string, names []string) []pendingSignal {
	current := toSet(names)
	var out []pendingSignal

	for name := range reg.children {
		if current[name] {
			continue
		}
		fileKey := childRendered(rendered, name)
		if _, isRegisteredDir := p.registrations[fileKey+"/"]; !isRegisteredDir {
			childPath := smbpath.New(reg.path.FileSystem(), fileKey)
			out = append(out, pendingSignal{key: reg.key, kind: watch.Delete, path: childPath})
		}
		delete(reg.children, name)
	}

	for name := range current {
		if reg.children[name] {
			continue
		}
		fileKey := childRendered(rendered, name)
		childPath := smbpath.New(reg.path.FileSystem(), fileKey)
		out = append(out, pendingSignal{key: reg.key, kind: watch.Create, path: childPath})
		if reg.children == nil {
			reg.children = make(map[string]bool)
		}
		reg.children[name] = true
	}

	return out
}

func childRendered(parentRendered, name string) string {
	if !strings.HasSuffix(parentRendered, "/") {
		parentRendered += "/"
	}
	return parentRendered + name
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

func kindRank(k watch.Kind) int {
	switch k {
	case watch.Delete:
		return 0
	case watch.Create:
		return 1
	case watch.Modify:
		return 2
	default:
		return 3
	}
}
