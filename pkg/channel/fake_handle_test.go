package channel

import "io"

// fakeHandle is an in-memory smbclient.RandomAccess backed by a byte slice,
// enough to exercise Channel's read/write/seek/truncate plumbing.
type fakeHandle struct {
	data   []byte
	pos    int64
	closed bool

	shortWriteOnce bool // if true, the next Write only accepts 1 byte
}

func (h *fakeHandle) Read(buf []byte) (int, error) {
	if h.pos >= int64(len(h.data)) {
		return 0, io.EOF
	}
	n := copy(buf, h.data[h.pos:])
	h.pos += int64(n)
	return n, nil
}

func (h *fakeHandle) Write(buf []byte) (int, error) {
	n := len(buf)
	if h.shortWriteOnce {
		n = 1
		h.shortWriteOnce = false
	}
	end := h.pos + int64(n)
	if end > int64(len(h.data)) {
		grown := make([]byte, end)
		copy(grown, h.data)
		h.data = grown
	}
	copy(h.data[h.pos:end], buf[:n])
	h.pos = end
	return n, nil
}

func (h *fakeHandle) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = h.pos
	case io.SeekEnd:
		base = int64(len(h.data))
	}
	h.pos = base + offset
	return h.pos, nil
}

func (h *fakeHandle) GetFilePointer() (int64, error) {
	return h.pos, nil
}

func (h *fakeHandle) SetLength(size int64) error {
	if size <= int64(len(h.data)) {
		h.data = h.data[:size]
	} else {
		grown := make([]byte, size)
		copy(grown, h.data)
		h.data = grown
	}
	return nil
}

func (h *fakeHandle) Close() error {
	h.closed = true
	return nil
}

// fakeMetrics records byte counters without depending on pkg/metrics.
type fakeMetrics struct {
	bytesRead    int
	bytesWritten int
}

func (m *fakeMetrics) AddBytesRead(n int)    { m.bytesRead += n }
func (m *fakeMetrics) AddBytesWritten(n int) { m.bytesWritten += n }
