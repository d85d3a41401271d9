// Package channel implements the SeekableByteChannel spec §4.7 describes: a
// mutex-serialized wrapper around one remote random-access handle that fails
// every operation with ClosedChannel once closed.
package channel

import (
	"context"
	"io"
	"sync"

	"github.com/smbvfs/smbvfs/internal/smbclient"
	"github.com/smbvfs/smbvfs/pkg/fserrors"
)

// ByteMetrics receives byte counters for reads and writes; nil disables
// instrumentation. Satisfied structurally by *pkg/metrics.Metrics.
type ByteMetrics interface {
	AddBytesRead(n int)
	AddBytesWritten(n int)
}

// Channel is a SeekableByteChannel over one remote random-access handle.
// The six handle operations (read, write, position-get, position-set,
// size, truncate) are serialized by mu, matching spec §4.7's single
// mutex-guarded-handle model; spec.md describes the usage pattern as
// single-producer/single-consumer, so this is a safety net, not a
// contention point.
type Channel struct {
	mu      sync.Mutex
	handle  smbclient.RandomAccess
	open    bool
	metrics ByteMetrics
}

// New wraps handle, an already-open remote random-access file.
func New(handle smbclient.RandomAccess, metrics ByteMetrics) *Channel {
	return &Channel{handle: handle, open: true, metrics: metrics}
}

func (c *Channel) checkOpen(op string) error {
	if !c.open {
		return fserrors.New(fserrors.ClosedChannel, op, "")
	}
	return nil
}

// Read fills buf from the current position and returns the number of bytes
// actually read. Reaching end of file with nothing read returns (-1, nil),
// matching java.nio.channels.ReadableByteChannel's convention of a negative
// return on EOF rather than io.EOF as an error.
func (c *Channel) Read(ctx context.Context, buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen("Channel.Read"); err != nil {
		return 0, err
	}

	n, err := c.handle.Read(buf)
	if c.metrics != nil && n > 0 {
		c.metrics.AddBytesRead(n)
	}
	if err == io.EOF {
		if n > 0 {
			return n, nil
		}
		return -1, nil
	}
	if err != nil {
		return n, fserrors.Wrap(fserrors.Io, "Channel.Read", "", err)
	}
	return n, nil
}

// Write drains buf to the handle, retrying on short writes until the whole
// buffer is written or the underlying write errors (spec §4.7).
func (c *Channel) Write(ctx context.Context, buf []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen("Channel.Write"); err != nil {
		return 0, err
	}

	total := 0
	for total < len(buf) {
		n, err := c.handle.Write(buf[total:])
		total += n
		if n > 0 && c.metrics != nil {
			c.metrics.AddBytesWritten(n)
		}
		if err != nil {
			return total, fserrors.Wrap(fserrors.Io, "Channel.Write", "", err)
		}
		if n == 0 {
			return total, fserrors.New(fserrors.Io, "Channel.Write", "")
		}
	}
	return total, nil
}

// Position returns the current file pointer.
func (c *Channel) Position() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen("Channel.Position"); err != nil {
		return 0, err
	}
	pos, err := c.handle.GetFilePointer()
	if err != nil {
		return 0, fserrors.Wrap(fserrors.Io, "Channel.Position", "", err)
	}
	return pos, nil
}

// SetPosition repositions the channel to offset, measured from the start of
// the file.
func (c *Channel) SetPosition(offset int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen("Channel.SetPosition"); err != nil {
		return err
	}
	if _, err := c.handle.Seek(offset, io.SeekStart); err != nil {
		return fserrors.Wrap(fserrors.Io, "Channel.SetPosition", "", err)
	}
	return nil
}

// Size returns the current length of the file, without disturbing position.
func (c *Channel) Size() (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen("Channel.Size"); err != nil {
		return 0, err
	}
	cur, err := c.handle.GetFilePointer()
	if err != nil {
		return 0, fserrors.Wrap(fserrors.Io, "Channel.Size", "", err)
	}
	end, err := c.handle.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, fserrors.Wrap(fserrors.Io, "Channel.Size", "", err)
	}
	if _, err := c.handle.Seek(cur, io.SeekStart); err != nil {
		return 0, fserrors.Wrap(fserrors.Io, "Channel.Size", "", err)
	}
	return end, nil
}

// Truncate sets the file's length to size.
func (c *Channel) Truncate(size int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkOpen("Channel.Truncate"); err != nil {
		return err
	}
	if err := c.handle.SetLength(size); err != nil {
		return fserrors.Wrap(fserrors.Io, "Channel.Truncate", "", err)
	}
	return nil
}

// IsOpen reports whether the channel has not yet been closed.
func (c *Channel) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

// Close releases the underlying remote handle. Idempotent: closing an
// already-closed channel is a no-op.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.open {
		return nil
	}
	c.open = false
	return c.handle.Close()
}
