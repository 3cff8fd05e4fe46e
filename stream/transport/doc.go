// Package transport defines the interface for outbound frame sockets. It provides a
// common contract that all socket implementations fulfill, so the publisher does not
// depend on a specific messaging library.
//
// The package focuses on:
//   - A non-blocking send contract with explicit buffer ownership
//   - Two-part messages (header, data) delivered all-or-nothing
//   - Symmetric open and close of exactly one endpoint
//
// Key Components:
//
//   - ISocket: Interface for socket implementations. Send never blocks: a message is
//     either queued (ownership passes to the socket) or rejected (ownership stays
//     with the caller).
//
//   - Message: The header and data of one frame plus the release hook the socket
//     calls exactly once for every accepted message.
//
// Implementations:
//
//   - base: the protocol independent send queue and writer goroutine
//   - zmq: ZeroMQ PUB/PUSH sockets
//   - memory: in-process endpoints for tests and local pipelines
package transport
