// Package base provides the foundation for outbound frame sockets, implementing the
// queueing and ownership rules independent of the messaging library. It serves as a
// base layer that is extended with library-specific connectors (ZeroMQ, in-memory).
//
// The package focuses on:
//   - Non-blocking sends backed by a bounded queue (the send high-water mark)
//   - Exactly-once release of every accepted data buffer
//   - Asynchronous connecting with exponential backoff
//   - Optional pinning of the writer goroutine to a set of CPUs
//
// Key Components:
//
//   - IConnector: Interface for library-specific operations (create, bind, dial,
//     write, close) that allows extending the base socket with different transports.
//
//   - socket: Core implementation of transport.ISocket. Send enqueues or rejects
//     immediately. A single writer goroutine drains the queue, writes each message
//     through the connector and then calls the message's release hook.
//
// Send Rejections:
//
//   - common.ErrNoPeer: a connecting PUSH socket has not reached its peer yet
//   - common.ErrQueueFull: the high-water mark is reached
//   - common.ErrSocketClosed: the socket is not open
//
// Thread Safety:
//
//	All public methods are thread-safe. Send and Close are coordinated by a
//	read/write lock so no message can be enqueued after Close drained the queue.
package base
