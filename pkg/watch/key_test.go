package watch

import (
	"testing"

	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

type fakeFS string

func (f fakeFS) Identifier() string { return string(f) }

func newTestKey(t *testing.T, kinds ...Kind) (*Key, *Service) {
	t.Helper()
	svc := NewService(nil)
	key := NewKey(smbpath.New(fakeFS("u@h"), "/share/dir/"), kinds, svc)
	return key, svc
}

func TestSignalCoalescesRepeatedSameKindSameChild(t *testing.T) {
	key, _ := newTestKey(t, Create)
	fs := fakeFS("u@h")
	child := smbpath.New(fs, "/share/dir/file.bin")

	for i := 0; i < 5; i++ {
		key.Signal(Create, child)
	}

	events := key.PollEvents()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1", len(events))
	}
	if events[0].Count != 5 {
		t.Errorf("Count = %d, want 5", events[0].Count)
	}
}

func TestSignalCoalescesRepeatedModify(t *testing.T) {
	key, _ := newTestKey(t, Modify, Create)
	fs := fakeFS("u@h")
	child := smbpath.New(fs, "/share/dir/file.bin")

	key.Signal(Modify, child)
	key.Signal(Create, smbpath.New(fs, "/share/dir/other.bin"))
	key.Signal(Modify, child)

	events := key.PollEvents()
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	var modifyCount int
	for _, ev := range events {
		if ev.Kind == Modify {
			modifyCount = ev.Count
		}
	}
	if modifyCount != 2 {
		t.Errorf("modify Count = %d, want 2 (cached last_modify entry should be bumped across a non-adjacent signal)", modifyCount)
	}
}

func TestSignalDropsLastModifyCacheOnOtherKind(t *testing.T) {
	key, _ := newTestKey(t, Modify, Delete)
	fs := fakeFS("u@h")
	child := smbpath.New(fs, "/share/dir/file.bin")

	key.Signal(Modify, child)
	key.Signal(Delete, child)
	key.Signal(Modify, child)

	events := key.PollEvents()
	// Modify, Delete, Modify: the Delete invalidates the cached Modify
	// pointer, so the second Modify must be a new event, not a coalesce
	// onto the first.
	var modifyEvents int
	for _, ev := range events {
		if ev.Kind == Modify {
			modifyEvents++
		}
	}
	if modifyEvents != 2 {
		t.Errorf("got %d distinct Modify events, want 2", modifyEvents)
	}
}

func TestSignalOnlyDeliversRegisteredKinds(t *testing.T) {
	key, _ := newTestKey(t, Create)
	fs := fakeFS("u@h")
	child := smbpath.New(fs, "/share/dir/file.bin")

	key.Signal(Delete, child)

	events := key.PollEvents()
	if len(events) != 0 {
		t.Fatalf("Delete delivered to a key that only registered Create: %+v", events)
	}
}

func TestSignalOverflow(t *testing.T) {
	key, _ := newTestKey(t, Create)
	fs := fakeFS("u@h")

	for i := 0; i < MaxEventListSize+1; i++ {
		child := smbpath.New(fs, "/share/dir/"+string(rune('a'+(i%26)))+"-"+itoa(i))
		key.Signal(Create, child)
	}

	events := key.PollEvents()
	if len(events) != 1 {
		t.Fatalf("len(events) = %d, want 1 (overflow clears the buffer)", len(events))
	}
	if events[0].Kind != Overflow {
		t.Errorf("Kind = %v, want Overflow", events[0].Kind)
	}
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	digits := []byte{}
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	return string(digits)
}

func TestPollEventsResetsBuffer(t *testing.T) {
	key, _ := newTestKey(t, Create)
	fs := fakeFS("u@h")
	key.Signal(Create, smbpath.New(fs, "/share/dir/a"))

	first := key.PollEvents()
	if len(first) != 1 {
		t.Fatalf("first PollEvents len = %d, want 1", len(first))
	}
	second := key.PollEvents()
	if len(second) != 0 {
		t.Fatalf("second PollEvents len = %d, want 0", len(second))
	}
}

func TestResetReenqueuesWhenEventsPending(t *testing.T) {
	svc := NewService(nil)
	fs := fakeFS("u@h")
	key := NewKey(smbpath.New(fs, "/share/dir/"), []Kind{Create}, svc)

	key.Signal(Create, smbpath.New(fs, "/share/dir/a"))
	got, err := svc.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got != key {
		t.Fatalf("Poll returned %v, want the signalled key", got)
	}

	// Simulate a consumer that read the key but didn't drain its events.
	key.Reset()

	got2, err := svc.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got2 != key {
		t.Fatalf("Reset with pending events should re-enqueue the key")
	}
}

func TestCancelInvalidatesKey(t *testing.T) {
	key, _ := newTestKey(t, Create)
	if !key.IsValid() {
		t.Fatalf("new key should be valid")
	}
	_ = key.Cancel(nil) // nil watcher.poller short-circuits
	if key.IsValid() {
		t.Errorf("key should be invalid after Cancel")
	}
	fs := fakeFS("u@h")
	key.Signal(Create, smbpath.New(fs, "/share/dir/a"))
	if events := key.PollEvents(); len(events) != 0 {
		t.Errorf("a cancelled key must not accept further signals, got %+v", events)
	}
}
