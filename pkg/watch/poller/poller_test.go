package poller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/smbvfs/smbvfs/pkg/smbpath"
	"github.com/smbvfs/smbvfs/pkg/watch"
)

type fakeFS string

func (f fakeFS) Identifier() string { return string(f) }

// fakeCollaborator is a hand-driven stand-in for the SMB collaborator: the
// test mutates its state directly between poll passes, and forcePoll tells
// the Poller to run a pass synchronously so tests don't race the interval
// timer.
type fakeCollaborator struct {
	mu       sync.Mutex
	stats    map[string]Info
	children map[string][]string
}

func newFakeCollaborator() *fakeCollaborator {
	return &fakeCollaborator{stats: make(map[string]Info), children: make(map[string][]string)}
}

func (f *fakeCollaborator) setStat(path string, info Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stats[path] = info
}

func (f *fakeCollaborator) remove(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.stats, path)
}

func (f *fakeCollaborator) setChildren(path string, names []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.children[path] = names
}

func (f *fakeCollaborator) Stat(ctx context.Context, path string) (Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	info, ok := f.stats[path]
	if !ok {
		return Info{Exists: false}, nil
	}
	return info, nil
}

func (f *fakeCollaborator) ListChildrenNames(ctx context.Context, path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.children[path]...), nil
}

// testPoller wraps a Poller whose worker never runs on its own timer (a
// very long interval) so tests can call pollOnce deterministically from the
// test goroutine via forcePoll, avoiding any dependency on wall-clock sleep.
type testPoller struct {
	p    *Poller
	coll *fakeCollaborator
}

func newTestPoller() *testPoller {
	coll := newFakeCollaborator()
	p := New(coll, time.Hour, nil)
	return &testPoller{p: p, coll: coll}
}

// forcePoll drives one synchronous diff pass by calling pollOnce directly;
// this works because no other goroutine touches p.registrations once the
// worker is parked on its hour-long timer between register calls.
func (tp *testPoller) forcePoll() {
	tp.p.pollOnce()
}

func TestPollerFileModifyThenDelete(t *testing.T) {
	tp := newTestPoller()
	defer tp.p.Close(context.Background())

	fs := fakeFS("s")
	path := smbpath.New(fs, "/share/dir/file.bin")
	now := time.Now()
	tp.coll.setStat(path.String(), Info{Exists: true, LastModified: now})

	svc := watch.NewService(tp.p)
	key, err := svc.Register(context.Background(), path, []watch.Kind{watch.Modify, watch.Delete})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if events := key.PollEvents(); len(events) != 0 {
		t.Fatalf("before any change, PollEvents = %+v, want empty", events)
	}

	tp.coll.setStat(path.String(), Info{Exists: true, LastModified: now.Add(time.Minute)})
	tp.forcePoll()

	events := key.PollEvents()
	if len(events) != 1 || events[0].Kind != watch.Modify {
		t.Fatalf("after bump, PollEvents = %+v, want one Modify", events)
	}

	tp.coll.remove(path.String())
	tp.forcePoll()

	events = key.PollEvents()
	if len(events) != 1 || events[0].Kind != watch.Delete {
		t.Fatalf("after remove, PollEvents = %+v, want one Delete", events)
	}
}

func TestPollerDirectoryDiff(t *testing.T) {
	tp := newTestPoller()
	defer tp.p.Close(context.Background())

	fs := fakeFS("s")
	dir := smbpath.New(fs, "/share/dir/")
	now := time.Now()
	tp.coll.setStat(dir.String(), Info{Exists: true, IsDirectory: true, LastModified: now})
	tp.coll.setChildren(dir.String(), []string{"file.bin", "subdir"})

	svc := watch.NewService(tp.p)
	key, err := svc.Register(context.Background(), dir, []watch.Kind{watch.Create, watch.Delete})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	// Remove file.bin from the listing and bump last-modified.
	tp.coll.setStat(dir.String(), Info{Exists: true, IsDirectory: true, LastModified: now.Add(time.Minute)})
	tp.coll.setChildren(dir.String(), []string{"subdir"})
	tp.forcePoll()

	events := key.PollEvents()
	if len(events) != 1 || events[0].Kind != watch.Delete {
		t.Fatalf("after removing file.bin, PollEvents = %+v, want one Delete", events)
	}

	// Add file.bin back.
	tp.coll.setStat(dir.String(), Info{Exists: true, IsDirectory: true, LastModified: now.Add(2 * time.Minute)})
	tp.coll.setChildren(dir.String(), []string{"file.bin", "subdir"})
	tp.forcePoll()

	events = key.PollEvents()
	if len(events) != 1 || events[0].Kind != watch.Create {
		t.Fatalf("after re-adding file.bin, PollEvents = %+v, want one Create", events)
	}
}

func TestPollerDeleteCreatePrecedesModifyOrdering(t *testing.T) {
	tp := newTestPoller()
	defer tp.p.Close(context.Background())

	fs := fakeFS("s")
	now := time.Now()

	deleted := smbpath.New(fs, "/share/gone.txt")
	tp.coll.setStat(deleted.String(), Info{Exists: true, LastModified: now})

	modified := smbpath.New(fs, "/share/mod.txt")
	tp.coll.setStat(modified.String(), Info{Exists: true, LastModified: now})

	dir := smbpath.New(fs, "/share/dir/")
	tp.coll.setStat(dir.String(), Info{Exists: true, IsDirectory: true, LastModified: now})
	tp.coll.setChildren(dir.String(), nil)

	svc := watch.NewService(tp.p)
	keyDeleted, _ := svc.Register(context.Background(), deleted, []watch.Kind{watch.Delete})
	keyModified, _ := svc.Register(context.Background(), modified, []watch.Kind{watch.Modify})
	keyDir, _ := svc.Register(context.Background(), dir, []watch.Kind{watch.Create})

	tp.coll.remove(deleted.String())
	tp.coll.setStat(modified.String(), Info{Exists: true, LastModified: now.Add(time.Minute)})
	tp.coll.setStat(dir.String(), Info{Exists: true, IsDirectory: true, LastModified: now.Add(time.Minute)})
	tp.coll.setChildren(dir.String(), []string{"new.txt"})
	tp.forcePoll()

	if evs := keyDeleted.PollEvents(); len(evs) != 1 || evs[0].Kind != watch.Delete {
		t.Fatalf("deleted path events = %+v", evs)
	}
	if evs := keyDir.PollEvents(); len(evs) != 1 || evs[0].Kind != watch.Create {
		t.Fatalf("dir events = %+v", evs)
	}
	if evs := keyModified.PollEvents(); len(evs) != 1 || evs[0].Kind != watch.Modify {
		t.Fatalf("modified path events = %+v", evs)
	}
}

func TestPollerRegisterRejectsUnsupportedKind(t *testing.T) {
	tp := newTestPoller()
	defer tp.p.Close(context.Background())

	fs := fakeFS("s")
	path := smbpath.New(fs, "/share/x")
	tp.coll.setStat(path.String(), Info{Exists: true})

	svc := watch.NewService(tp.p)
	_, err := svc.Register(context.Background(), path, []watch.Kind{watch.Kind(99)})
	if err == nil {
		t.Fatal("expected an error for an unsupported watch kind")
	}
}

func TestPollerRegisterRejectsNoKinds(t *testing.T) {
	tp := newTestPoller()
	defer tp.p.Close(context.Background())

	fs := fakeFS("s")
	path := smbpath.New(fs, "/share/x")
	tp.coll.setStat(path.String(), Info{Exists: true})

	svc := watch.NewService(tp.p)
	_, err := svc.Register(context.Background(), path, nil)
	if err == nil {
		t.Fatal("expected an error when no kinds are requested")
	}
}

func TestPollerCancelStopsFurtherEvents(t *testing.T) {
	tp := newTestPoller()
	defer tp.p.Close(context.Background())

	fs := fakeFS("s")
	path := smbpath.New(fs, "/share/x")
	now := time.Now()
	tp.coll.setStat(path.String(), Info{Exists: true, LastModified: now})

	svc := watch.NewService(tp.p)
	key, err := svc.Register(context.Background(), path, []watch.Kind{watch.Modify})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := tp.p.Cancel(context.Background(), path); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if key.IsValid() {
		t.Fatal("key should be invalid after Cancel")
	}

	tp.coll.setStat(path.String(), Info{Exists: true, LastModified: now.Add(time.Minute)})
	tp.forcePoll()

	if events := key.PollEvents(); len(events) != 0 {
		t.Errorf("cancelled key received events: %+v", events)
	}
}

func TestPollerCloseRejectsNewRequests(t *testing.T) {
	tp := newTestPoller()
	if err := tp.p.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	fs := fakeFS("s")
	path := smbpath.New(fs, "/share/x")
	svc := watch.NewService(tp.p)
	_, err := svc.Register(context.Background(), path, []watch.Kind{watch.Modify})
	if err == nil {
		t.Fatal("expected Register to fail after Close")
	}
}
