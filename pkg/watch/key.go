package watch

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

// MaxEventListSize bounds a Key's event buffer (spec §3, "WatchKey").
const MaxEventListSize = 512

// State is a Key's membership in the delivery queue.
type State int

const (
	// Ready indicates the key holds no undelivered events and is not
	// queued on its WatchService.
	Ready State = iota
	// Signalled indicates the key has been enqueued on its WatchService
	// for delivery and must not be enqueued again until reset.
	Signalled
)

// Event is one queued change notification. Count is the number of times
// this exact (Kind, Path) pair was coalesced into this single entry; it
// starts at 1 and is incremented instead of appending a duplicate.
type Event struct {
	Kind  Kind
	Path  smbpath.Path
	Count int
}

// Poller is the subset of the background diffing engine (pkg/watch/poller)
// a Service needs: registering, cancelling, and closing watches. Declared
// here rather than in pkg/watch/poller so that package can depend on this
// one without a cycle.
type Poller interface {
	Register(ctx context.Context, path smbpath.Path, kinds []Kind, watcher *Service) (*Key, error)
	Cancel(ctx context.Context, path smbpath.Path) error
	Close(ctx context.Context) error
}

// Key is one active watch registration: a bounded, coalescing event buffer
// bound to a path and a back-reference to the WatchService that delivers it
// (spec §4.9). All mutable state is guarded by a single per-key mutex, so
// contention from signal_event, poll_events, and reset never crosses keys.
type Key struct {
	mu      sync.Mutex
	id      uuid.UUID
	path    smbpath.Path
	watcher *Service
	kinds   map[Kind]bool
	valid   bool
	state   State

	events     []*Event
	lastModify map[string]*Event
}

// NewKey constructs a Key for path, accepting the given kinds, delivered
// through watcher. Exported for pkg/watch/poller, which owns the bidirectional
// path<->key registry and constructs keys on REGISTER.
func NewKey(path smbpath.Path, kinds []Kind, watcher *Service) *Key {
	set := make(map[Kind]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return &Key{
		id:         uuid.New(),
		path:       path,
		watcher:    watcher,
		kinds:      set,
		valid:      true,
		state:      Ready,
		lastModify: make(map[string]*Event),
	}
}

// Path returns the watched path this key was registered for.
func (k *Key) Path() smbpath.Path { return k.path }

// ID returns a stable identifier for this key, used to disambiguate
// registrations on the same path across cancel/re-register cycles in logs
// and traces.
func (k *Key) ID() string { return k.id.String() }

// Accepts reports whether kind was among the kinds this key registered for.
func (k *Key) Accepts(kind Kind) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.kinds[kind]
}

// IsValid reports whether the key is still registered. A cancelled key
// never signals or enqueues again.
func (k *Key) IsValid() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.valid
}

// Cancel unregisters this key's path from the poller and marks it invalid.
// Equivalent to java.nio.file.WatchKey.cancel().
func (k *Key) Cancel(ctx context.Context) error {
	k.mu.Lock()
	path := k.path
	watcher := k.watcher
	k.valid = false
	k.mu.Unlock()

	if watcher == nil || watcher.poller == nil {
		return nil
	}
	if err := watcher.poller.Cancel(ctx, path); err != nil {
		return err
	}
	return nil
}

// Signal records one occurrence of kind against child, applying the
// coalescing rules of spec §4.9:
//  1. if the tail event is OVERFLOW, or matches (kind, child), bump its count;
//  2. else if kind is MODIFY and child already has a pending MODIFY, bump it;
//  3. else if kind is not MODIFY, drop any stale pending-MODIFY cache entry for child;
//  4. if the buffer is full, replace the new event with an OVERFLOW, clearing both buffers first;
//  5. append, and if signalled for the first time since the last poll, enqueue on the watcher.
//
// Only kinds this key actually registered for are delivered; requests for
// other kinds are dropped silently, matching the registered-kinds filter of
// spec §4.10.
func (k *Key) Signal(kind Kind, child smbpath.Path) {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.valid {
		return
	}
	if kind != Overflow && !k.kinds[kind] {
		return
	}

	childKey := child.String()

	if n := len(k.events); n > 0 {
		tail := k.events[n-1]
		if tail.Kind == Overflow {
			tail.Count++
			return
		}
		if tail.Kind == kind && tail.Path.String() == childKey {
			tail.Count++
			k.metrics().IncEventCoalesced()
			return
		}
	}

	if kind == Modify {
		if ev, ok := k.lastModify[childKey]; ok {
			ev.Count++
			k.metrics().IncEventCoalesced()
			return
		}
	} else {
		delete(k.lastModify, childKey)
	}

	var ev *Event
	if len(k.events) >= MaxEventListSize {
		k.events = nil
		k.lastModify = make(map[string]*Event)
		ev = &Event{Kind: Overflow, Count: 1}
		k.metrics().IncOverflow()
	} else {
		ev = &Event{Kind: kind, Path: child, Count: 1}
		k.metrics().IncEventEmitted(kind.String())
	}

	k.events = append(k.events, ev)
	if ev.Kind == Modify {
		k.lastModify[childKey] = ev
	}

	if k.state == Ready {
		k.state = Signalled
		if k.watcher != nil {
			k.watcher.enqueue(k)
		}
	}
}

// noopMetrics discards every call; metrics returns it when the key has no
// watcher or the watcher has no EventMetrics attached, so call sites never
// need a nil check.
type noopMetrics struct{}

func (noopMetrics) IncEventEmitted(string) {}
func (noopMetrics) IncEventCoalesced()     {}
func (noopMetrics) IncOverflow()           {}

func (k *Key) metrics() EventMetrics {
	if k.watcher == nil {
		return noopMetrics{}
	}
	k.watcher.mu.Lock()
	m := k.watcher.metrics
	k.watcher.mu.Unlock()
	if m == nil {
		return noopMetrics{}
	}
	return m
}

// PollEvents atomically swaps out the accumulated event buffer and returns
// the snapshot, clearing the coalescing cache along with it.
func (k *Key) PollEvents() []Event {
	k.mu.Lock()
	defer k.mu.Unlock()

	out := make([]Event, len(k.events))
	for i, ev := range k.events {
		out[i] = *ev
	}
	k.events = nil
	k.lastModify = make(map[string]*Event)
	return out
}

// Reset transitions a Signalled key back to Ready if its buffer has since
// been drained, or re-enqueues it if events arrived since the last poll.
// Reports false if the key has been cancelled.
func (k *Key) Reset() bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if !k.valid {
		return false
	}
	if k.state != Signalled {
		return true
	}
	if len(k.events) == 0 {
		k.state = Ready
		return true
	}
	if k.watcher != nil {
		k.watcher.enqueue(k)
	}
	return true
}
