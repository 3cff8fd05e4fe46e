package base

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("transport/base")

// -----------------------------------------------------------
// Interface Definitions for dependency injection
// -----------------------------------------------------------

// IConnector defines the interface for transport-specific socket operations.
// The base socket calls Write from a single goroutine only.
type IConnector interface {
	// Create allocates the endpoint for the descriptor's role and applies the tuning.
	// It validates the address without performing any network I/O.
	Create(desc common.Descriptor, tuning common.Tuning) error

	// Bind listens on the address and returns the resolved endpoint
	Bind(address string) (string, error)

	// Dial connects to the address. It may block while the peer is unreachable.
	Dial(address string) error

	// Write sends the header and data as one two-part message. It may block.
	// The data buffer is released once Write returns, a connector that still
	// references it afterwards must copy it.
	Write(header, data []byte) error

	// Close unbinds or disconnects and frees the endpoint. It unblocks pending
	// Dial and Write calls.
	Close() error

	// GetName returns the name of the transport type (e.g., "zmq", "memory")
	GetName() string
}

// -----------------------------------------------------------
// Socket
// -----------------------------------------------------------

const (
	// initial and maximum delay between two connect attempts
	dialBackoffMin = 50 * time.Millisecond
	dialBackoffMax = 5 * time.Second
)

// socket implements the core outbound socket independent of the messaging library.
// Accepted messages are queued in a bounded channel (capacity = send high-water mark)
// and written by a dedicated goroutine, so Send never blocks.
type socket struct {
	connector IConnector
	desc      common.Descriptor

	// lifeMu guards the open/closed state against concurrent Send calls
	lifeMu   sync.RWMutex
	opened   bool
	closed   bool
	queue    chan transport.Message
	stopCh   chan struct{}
	writerWg sync.WaitGroup
	dialWg   sync.WaitGroup

	endpoint    atomic.Value // string
	connected   atomic.Bool  // a peer is known to exist (CONNECT mode)
	written     *xsync.Counter
	writeErrors *xsync.Counter
}

// -----------------------------------------------------------
// Transport Factory Method (used for zmq, memory, etc.)
// -----------------------------------------------------------

// NewBaseSocket creates a new base socket with the specified connector
func NewBaseSocket(connector IConnector) transport.ISocket {
	s := &socket{
		connector:   connector,
		written:     xsync.NewCounter(),
		writeErrors: xsync.NewCounter(),
	}
	s.endpoint.Store("")
	return s
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.ISocket)
// --------------------------------------------------------------------------

func (s *socket) Open(desc common.Descriptor, tuning common.Tuning) error {
	s.lifeMu.Lock()
	defer s.lifeMu.Unlock()

	if s.opened || s.closed {
		return fmt.Errorf("%w: socket can only be opened once", common.ErrTransportOpen)
	}

	if err := s.connector.Create(desc, tuning); err != nil {
		_ = s.connector.Close()
		return fmt.Errorf("%w: failed to create %s socket for %s: %v", common.ErrTransportOpen, s.connector.GetName(), desc, err)
	}

	s.desc = desc
	if desc.Binds() {
		endpoint, err := s.connector.Bind(desc.Address)
		if err != nil {
			_ = s.connector.Close()
			return fmt.Errorf("%w: failed to bind %s: %v", common.ErrTransportOpen, desc.Address, err)
		}
		s.endpoint.Store(endpoint)
		Logger.Infof("%s %s socket binds at %s", s.connector.GetName(), desc.Role, endpoint)
	} else {
		s.endpoint.Store(desc.Address)
	}

	s.queue = make(chan transport.Message, tuning.SendHWMOr(common.DefaultSendHWM))
	s.stopCh = make(chan struct{})
	s.opened = true

	s.writerWg.Add(1)
	go s.writeLoop(tuning.Affinity)

	if !desc.Binds() {
		s.dialWg.Add(1)
		go s.dialLoop(desc.Address)
	}
	return nil
}

func (s *socket) Send(msg transport.Message) error {
	s.lifeMu.RLock()
	defer s.lifeMu.RUnlock()

	if !s.opened || s.closed {
		return common.ErrSocketClosed
	}

	// a PUSH socket without a peer would hold the message until one appears
	if s.desc.Role == common.RolePush && !s.desc.Binds() && !s.connected.Load() {
		return common.ErrNoPeer
	}

	select {
	case s.queue <- msg:
		return nil
	default:
		return common.ErrQueueFull
	}
}

func (s *socket) Close() error {
	s.lifeMu.Lock()
	if s.closed {
		s.lifeMu.Unlock()
		return nil
	}
	s.closed = true
	wasOpened := s.opened
	s.lifeMu.Unlock()

	if !wasOpened {
		return nil
	}

	close(s.stopCh)
	// closing the connector unblocks a pending Write or Dial
	err := s.connector.Close()
	s.writerWg.Wait()
	s.dialWg.Wait()

	// no Send can enqueue anymore, discard what is left
	discarded := 0
	for {
		select {
		case msg := <-s.queue:
			release(msg)
			discarded++
		default:
			if discarded > 0 {
				Logger.Warningf("discarded %d queued messages on close of %s", discarded, s.Endpoint())
			}
			if s.desc.Binds() {
				Logger.Infof("%s socket unbound from %s", s.connector.GetName(), s.Endpoint())
			} else {
				Logger.Infof("%s socket disconnected from %s", s.connector.GetName(), s.Endpoint())
			}
			if err != nil {
				return fmt.Errorf("failed to close %s socket: %v", s.connector.GetName(), err)
			}
			return nil
		}
	}
}

func (s *socket) Endpoint() string {
	return s.endpoint.Load().(string)
}

func (s *socket) Stats() transport.SocketStats {
	s.lifeMu.RLock()
	defer s.lifeMu.RUnlock()
	return transport.SocketStats{
		Queued:      len(s.queue),
		Written:     s.written.Value(),
		WriteErrors: s.writeErrors.Value(),
	}
}

func (s *socket) GetName() string {
	return s.connector.GetName()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// writeLoop writes queued messages until the socket is closed
func (s *socket) writeLoop(affinity *int) {
	defer s.writerWg.Done()

	if affinity != nil {
		if err := pinToCPUs(*affinity); err != nil {
			Logger.Warningf("failed to apply affinity %#x: %v", *affinity, err)
		} else {
			Logger.Debugf("writer pinned to cpu mask %#x", *affinity)
		}
	}

	for {
		select {
		case <-s.stopCh:
			return
		case msg := <-s.queue:
			if err := s.connector.Write(msg.Header, msg.Data); err != nil {
				s.writeErrors.Inc()
				Logger.Debugf("write to %s failed: %v", s.Endpoint(), err)
			} else {
				s.written.Inc()
			}
			release(msg)
		}
	}
}

// dialLoop connects to the address, retrying with exponential backoff until it
// succeeds or the socket is closed
func (s *socket) dialLoop(address string) {
	defer s.dialWg.Done()

	backoff := dialBackoffMin
	for attempt := 1; ; attempt++ {
		err := s.connector.Dial(address)
		if err == nil {
			s.connected.Store(true)
			Logger.Infof("%s %s socket connects to %s", s.connector.GetName(), s.desc.Role, address)
			return
		}
		Logger.Debugf("connect attempt %d to %s failed: %v", attempt, address, err)

		// Exponential backoff with a small random jitter (+-10%)
		jitter := float64(backoff) * (0.9 + 0.2*rand.Float64())
		select {
		case <-s.stopCh:
			return
		case <-time.After(time.Duration(jitter)):
		}
		backoff = min(backoff*2, dialBackoffMax)
	}
}

// release calls the message's release hook if there is one
func release(msg transport.Message) {
	if msg.Release != nil {
		msg.Release()
	}
}
