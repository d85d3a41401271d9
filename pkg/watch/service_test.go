package watch

import (
	"context"
	"testing"
	"time"

	"github.com/smbvfs/smbvfs/pkg/fserrors"
	"github.com/smbvfs/smbvfs/pkg/smbpath"
)

type fakePoller struct {
	registerFn func(ctx context.Context, path smbpath.Path, kinds []Kind, watcher *Service) (*Key, error)
	closed     bool
}

func (f *fakePoller) Register(ctx context.Context, path smbpath.Path, kinds []Kind, watcher *Service) (*Key, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, path, kinds, watcher)
	}
	return NewKey(path, kinds, watcher), nil
}

func (f *fakePoller) Cancel(ctx context.Context, path smbpath.Path) error { return nil }

func (f *fakePoller) Close(ctx context.Context) error {
	f.closed = true
	return nil
}

func TestServicePollEmptyWhenNothingSignalled(t *testing.T) {
	svc := NewService(&fakePoller{})
	k, err := svc.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if k != nil {
		t.Errorf("Poll = %v, want nil", k)
	}
}

func TestServiceRegisterThenSignalDelivers(t *testing.T) {
	svc := NewService(&fakePoller{})
	fs := fakeFS("u@h")
	key, err := svc.Register(context.Background(), smbpath.New(fs, "/share/dir/"), []Kind{Create})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	key.Signal(Create, smbpath.New(fs, "/share/dir/a"))

	got, err := svc.Poll()
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if got != key {
		t.Fatalf("Poll returned wrong key")
	}
}

func TestServiceTakeBlocksUntilSignalled(t *testing.T) {
	svc := NewService(&fakePoller{})
	fs := fakeFS("u@h")
	key, _ := svc.Register(context.Background(), smbpath.New(fs, "/share/dir/"), []Kind{Create})

	done := make(chan *Key, 1)
	go func() {
		k, err := svc.Take(context.Background())
		if err != nil {
			t.Error(err)
			return
		}
		done <- k
	}()

	time.Sleep(10 * time.Millisecond)
	key.Signal(Create, smbpath.New(fs, "/share/dir/a"))

	select {
	case got := <-done:
		if got != key {
			t.Errorf("Take returned wrong key")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not unblock after a signal")
	}
}

func TestServicePollTimeoutExpires(t *testing.T) {
	svc := NewService(&fakePoller{})
	start := time.Now()
	k, err := svc.PollTimeout(20 * time.Millisecond)
	if err != nil {
		t.Fatalf("PollTimeout: %v", err)
	}
	if k != nil {
		t.Errorf("PollTimeout = %v, want nil on expiry", k)
	}
	if time.Since(start) < 15*time.Millisecond {
		t.Errorf("PollTimeout returned too early")
	}
}

func TestServiceCloseWakesBlockedTake(t *testing.T) {
	svc := NewService(&fakePoller{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Take(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if !fserrors.Is(err, fserrors.ClosedWatchService) {
			t.Errorf("Take error after Close = %v, want ClosedWatchService", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Take did not unblock after Close")
	}
}

func TestServiceCloseIsIdempotent(t *testing.T) {
	p := &fakePoller{}
	svc := NewService(p)
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("first Close: %v", err)
	}
	if err := svc.Close(context.Background()); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if p.closed != true {
		t.Errorf("poller.Close should have been called")
	}
}

func TestServiceRegisterAfterCloseFails(t *testing.T) {
	svc := NewService(&fakePoller{})
	_ = svc.Close(context.Background())

	fs := fakeFS("u@h")
	_, err := svc.Register(context.Background(), smbpath.New(fs, "/share/dir/"), []Kind{Create})
	if !fserrors.Is(err, fserrors.ClosedWatchService) {
		t.Errorf("Register after Close = %v, want ClosedWatchService", err)
	}
}
