package transport

import (
	"github.com/ValentinKolb/ndzmq/stream/common"
)

// --------------------------------------------------------------------------
// Messages
// --------------------------------------------------------------------------

// Message is one two-part frame message: a header followed by the data buffer.
//
// Header is owned by the transport once the message is accepted. Data is not copied:
// it stays owned by the producer, and the transport calls Release exactly once when it
// no longer needs the bytes (after the write, after a write error or when the message
// is discarded on close). Release may be nil.
type Message struct {
	Header  []byte
	Data    []byte
	Release func()
}

// SocketStats is a snapshot of the socket's counters
type SocketStats struct {
	// Queued is the number of accepted messages waiting to be written
	Queued int
	// Written is the number of messages handed to the wire
	Written int64
	// WriteErrors is the number of accepted messages the wire rejected
	WriteErrors int64
}

// --------------------------------------------------------------------------
// Socket
// --------------------------------------------------------------------------

// ISocket is the interface for all outbound frame sockets.
// A socket owns exactly one endpoint for its whole lifetime.
type ISocket interface {
	// Open creates the endpoint for the resolved descriptor, applies the tuning and
	// binds or connects. Bind failures and malformed endpoints are returned as errors
	// wrapping common.ErrTransportOpen. Connecting completes in the background.
	Open(desc common.Descriptor, tuning common.Tuning) error

	// Send hands a message to the socket without blocking.
	// A nil error means the message was accepted and Release will be called by the
	// socket. Any error (wrapping common.ErrSendFailure) means the message was not
	// accepted and the caller still owns Data.
	Send(msg Message) error

	// Close unbinds or disconnects and releases the endpoint. Queued messages are
	// discarded and released. Close is idempotent and safe on a never-opened socket.
	Close() error

	// Endpoint returns the bound or connected address, with ephemeral ports resolved
	Endpoint() string

	// Stats returns a snapshot of the socket's counters
	Stats() SocketStats

	// GetName returns the name of the transport type (e.g., "zmq", "memory")
	GetName() string
}
