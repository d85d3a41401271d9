package watch

import (
	"context"
	"sync"
	"time"

	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

// closeKey is the sentinel a closed Service's queue head permanently holds.
// It wakes any blocked consumer; consumers must not pop it off, so close
// stays observable to every subsequent caller (spec §4.11).
var closeKey = &Key{}

// EventMetrics receives counts for events signalled, coalesced, and
// overflowed, and is satisfied structurally by *pkg/metrics.Metrics without
// this package importing it. A nil EventMetrics (the default) disables
// instrumentation.
type EventMetrics interface {
	IncEventEmitted(kind string)
	IncEventCoalesced()
	IncOverflow()
}

// Service is the thin, signaled-key delivery queue spec §4.11 describes:
// register delegates to a Poller, poll/take dequeue one ready key at a time.
type Service struct {
	mu      sync.Mutex
	pending []*Key
	closed  bool
	signal  chan struct{}

	poller  Poller
	metrics EventMetrics
}

// NewService creates a WatchService backed by poller, which performs the
// actual background diffing (pkg/watch/poller.Poller satisfies this
// interface structurally).
func NewService(poller Poller) *Service {
	return &Service{poller: poller, signal: make(chan struct{}, 1)}
}

// SetMetrics attaches an EventMetrics sink; passing nil disables it.
func (s *Service) SetMetrics(m EventMetrics) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metrics = m
}

func (s *Service) notify() {
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// enqueue appends k to the pending delivery queue. Called by Key.Signal and
// Key.Reset under the key's own lock, never under s.mu from within Key, so
// this must take s.mu itself.
func (s *Service) enqueue(k *Key) {
	s.mu.Lock()
	s.pending = append(s.pending, k)
	s.mu.Unlock()
	s.notify()
}

// Register asks the poller to create and track a new Key for path with the
// given kinds. modifiers is reserved for implementation-specific watch
// hints (spec §4.10's REGISTER parameter list); this implementation does
// not interpret any.
func (s *Service) Register(ctx context.Context, path smbpath.Path, kinds []Kind, modifiers ...string) (*Key, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, fserrors.New(fserrors.ClosedWatchService, "WatchService.Register", path.String())
	}
	if s.poller == nil {
		return nil, fserrors.New(fserrors.InvalidArgument, "WatchService.Register", path.String())
	}
	return s.poller.Register(ctx, path, kinds, s)
}

// Poll returns the next signaled key without blocking, or (nil, nil) if
// none is ready.
func (s *Service) Poll() (*Key, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollLocked()
}

func (s *Service) pollLocked() (*Key, error) {
	if len(s.pending) > 0 {
		k := s.pending[0]
		if k == closeKey {
			return nil, fserrors.New(fserrors.ClosedWatchService, "WatchService.Poll", "")
		}
		s.pending = s.pending[1:]
		return k, nil
	}
	if s.closed {
		return nil, fserrors.New(fserrors.ClosedWatchService, "WatchService.Poll", "")
	}
	return nil, nil
}

// PollTimeout returns the next signaled key, waiting up to timeout for one
// to arrive. Returns (nil, nil) on timeout with no key ready.
func (s *Service) PollTimeout(timeout time.Duration) (*Key, error) {
	deadline := time.Now().Add(timeout)
	for {
		s.mu.Lock()
		k, err := s.pollLocked()
		s.mu.Unlock()
		if k != nil || err != nil {
			return k, err
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, nil
		}
		timer := time.NewTimer(remaining)
		select {
		case <-s.signal:
			timer.Stop()
		case <-timer.C:
			return nil, nil
		}
	}
}

// Take blocks until a signaled key is available or the service closes.
func (s *Service) Take(ctx context.Context) (*Key, error) {
	for {
		s.mu.Lock()
		k, err := s.pollLocked()
		s.mu.Unlock()
		if k != nil || err != nil {
			return k, err
		}

		select {
		case <-s.signal:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Close idempotently shuts the service down: it marks closed, asks the
// poller to close, drops the pending queue, and installs the sentinel
// close key so blocked consumers wake and observe the closed state.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = []*Key{closeKey}
	s.mu.Unlock()
	s.notify()

	if s.poller != nil {
		return s.poller.Close(ctx)
	}
	return nil
}

// Closed reports whether Close has been called.
func (s *Service) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
