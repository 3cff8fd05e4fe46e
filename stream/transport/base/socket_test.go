package base

import (
	"errors"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// fakeConnector records writes and can block or fail on demand
type fakeConnector struct {
	mu        sync.Mutex
	writes    [][]byte
	bindErr   error
	createErr error
	writeErr  error
	dialFails atomic.Int32 // number of dial attempts that fail
	dials     atomic.Int32
	gate      chan struct{} // when non-nil, Write blocks until closed
	started   chan struct{} // receives once per Write call
	closeOnce sync.Once
	closed    chan struct{}
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{
		started: make(chan struct{}, 64),
		closed:  make(chan struct{}),
	}
}

func (f *fakeConnector) GetName() string { return "fake" }

func (f *fakeConnector) Create(common.Descriptor, common.Tuning) error { return f.createErr }

func (f *fakeConnector) Bind(address string) (string, error) {
	if f.bindErr != nil {
		return "", f.bindErr
	}
	return address + "-bound", nil
}

func (f *fakeConnector) Dial(string) error {
	if f.dials.Add(1) <= f.dialFails.Load() {
		return errors.New("connection refused")
	}
	return nil
}

func (f *fakeConnector) Write(header, data []byte) error {
	f.started <- struct{}{}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-f.closed:
			return errors.New("closed")
		}
	}
	if f.writeErr != nil {
		return f.writeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, append(append([]byte{}, header...), data...))
	return nil
}

func (f *fakeConnector) Close() error {
	f.closeOnce.Do(func() { close(f.closed) })
	return nil
}

func (f *fakeConnector) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// releaseRecorder counts release calls per message
type releaseRecorder struct {
	counts []atomic.Int32
}

func newReleaseRecorder(n int) *releaseRecorder {
	return &releaseRecorder{counts: make([]atomic.Int32, n)}
}

func (r *releaseRecorder) message(i int) transport.Message {
	return transport.Message{
		Header:  []byte("h"),
		Data:    []byte{byte(i)},
		Release: func() { r.counts[i].Add(1) },
	}
}

func (r *releaseRecorder) count(i int) int32 {
	return r.counts[i].Load()
}

func hwm(n int) common.Tuning {
	return common.Tuning{SendHWM: &n}
}

func mustDescriptor(t *testing.T, raw string) common.Descriptor {
	d, err := common.ParseDescriptor(raw)
	require.NoError(t, err)
	return d
}

// TestSocketSendAndRelease tests that accepted messages are written and released once
func TestSocketSendAndRelease(t *testing.T) {
	conn := newFakeConnector()
	s := NewBaseSocket(conn)
	require.NoError(t, s.Open(mustDescriptor(t, "tcp://*:5555"), common.Tuning{}))
	assert.Equal(t, "tcp://*:5555-bound", s.Endpoint())
	assert.Equal(t, "fake", s.GetName())

	rec := newReleaseRecorder(5)
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Send(rec.message(i)))
	}

	require.Eventually(t, func() bool { return conn.writeCount() == 5 }, time.Second, time.Millisecond)
	require.NoError(t, s.Close())

	for i := 0; i < 5; i++ {
		assert.Equal(t, int32(1), rec.count(i), "message %d", i)
	}
	assert.Equal(t, int64(5), s.Stats().Written)
}

// TestSocketQueueFull tests that a full queue rejects immediately and keeps ownership with the caller
func TestSocketQueueFull(t *testing.T) {
	conn := newFakeConnector()
	conn.gate = make(chan struct{})
	s := NewBaseSocket(conn)
	require.NoError(t, s.Open(mustDescriptor(t, "tcp://*:5555 PUB"), hwm(2)))

	rec := newReleaseRecorder(4)

	// the writer takes the first message and blocks in Write
	require.NoError(t, s.Send(rec.message(0)))
	<-conn.started

	require.NoError(t, s.Send(rec.message(1)))
	require.NoError(t, s.Send(rec.message(2)))
	assert.Equal(t, 2, s.Stats().Queued)

	start := time.Now()
	err := s.Send(rec.message(3))
	assert.ErrorIs(t, err, common.ErrQueueFull)
	assert.ErrorIs(t, err, common.ErrSendFailure)
	assert.Less(t, time.Since(start), 100*time.Millisecond)
	assert.Equal(t, int32(0), rec.count(3))

	// close unblocks the writer and releases everything that was accepted
	require.NoError(t, s.Close())
	for i := 0; i < 3; i++ {
		assert.Equal(t, int32(1), rec.count(i), "message %d", i)
	}
	assert.Equal(t, int32(0), rec.count(3))
}

// TestSocketWriteError tests that failed writes are counted and still released
func TestSocketWriteError(t *testing.T) {
	conn := newFakeConnector()
	conn.writeErr = errors.New("wire error")
	s := NewBaseSocket(conn)
	require.NoError(t, s.Open(mustDescriptor(t, "tcp://*:5555"), common.Tuning{}))

	rec := newReleaseRecorder(1)
	require.NoError(t, s.Send(rec.message(0)))
	require.Eventually(t, func() bool { return rec.count(0) == 1 }, time.Second, time.Millisecond)
	assert.Equal(t, int64(1), s.Stats().WriteErrors)
	require.NoError(t, s.Close())
	assert.Equal(t, int32(1), rec.count(0))
}

// TestSocketPushWithoutPeer tests that a connecting PUSH socket drops until the peer is reached
func TestSocketPushWithoutPeer(t *testing.T) {
	conn := newFakeConnector()
	conn.dialFails.Store(2)
	s := NewBaseSocket(conn)
	require.NoError(t, s.Open(mustDescriptor(t, "tcp://10.0.0.1:5555 PUSH"), common.Tuning{}))
	defer s.Close()
	assert.Equal(t, "tcp://10.0.0.1:5555", s.Endpoint())

	rec := newReleaseRecorder(2)
	err := s.Send(rec.message(0))
	if err != nil {
		assert.ErrorIs(t, err, common.ErrNoPeer)
		assert.Equal(t, int32(0), rec.count(0))
	}

	require.Eventually(t, func() bool { return s.Send(rec.message(1)) == nil }, 2*time.Second, 10*time.Millisecond)
	assert.GreaterOrEqual(t, conn.dials.Load(), int32(3))
}

// TestSocketUnreachableClose tests that closing stops the connect loop
func TestSocketUnreachableClose(t *testing.T) {
	conn := newFakeConnector()
	conn.dialFails.Store(1 << 30)
	s := NewBaseSocket(conn)
	require.NoError(t, s.Open(mustDescriptor(t, "tcp://10.0.0.1:5555 PUSH"), common.Tuning{}))

	for i := 0; i < 3; i++ {
		assert.ErrorIs(t, s.Send(transport.Message{}), common.ErrNoPeer)
	}

	done := make(chan struct{})
	go func() {
		_ = s.Close()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("close blocked")
	}
}

// TestSocketOpenErrors tests that open failures are transport open errors
func TestSocketOpenErrors(t *testing.T) {
	conn := newFakeConnector()
	conn.bindErr = errors.New("address in use")
	s := NewBaseSocket(conn)
	err := s.Open(mustDescriptor(t, "tcp://*:5555"), common.Tuning{})
	assert.ErrorIs(t, err, common.ErrTransportOpen)
	assert.ErrorIs(t, s.Send(transport.Message{}), common.ErrSocketClosed)
	assert.NoError(t, s.Close())

	conn = newFakeConnector()
	conn.createErr = errors.New("bad endpoint")
	s = NewBaseSocket(conn)
	assert.ErrorIs(t, s.Open(mustDescriptor(t, "tcp://*:5555"), common.Tuning{}), common.ErrTransportOpen)
}

// TestSocketLifecycle tests idempotent close and send after close
func TestSocketLifecycle(t *testing.T) {
	s := NewBaseSocket(newFakeConnector())
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())
	assert.ErrorIs(t, s.Open(mustDescriptor(t, "tcp://*:5555"), common.Tuning{}), common.ErrTransportOpen)

	s = NewBaseSocket(newFakeConnector())
	require.NoError(t, s.Open(mustDescriptor(t, "tcp://*:5555"), common.Tuning{}))
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Send(transport.Message{}), common.ErrSocketClosed)
	assert.NoError(t, s.Close())
}
