// Package zmq implements ZeroMQ PUB and PUSH sockets for publishing frames. It
// provides a concrete implementation of the base package's connector interface on
// top of the pure Go ZeroMQ library.
//
// This package builds on the base package's socket, inheriting its bounded send queue,
// non-blocking sends and exactly-once buffer release. See the base package
// documentation for the queueing and ownership rules.
//
// Key Components:
//
//   - connector: ZeroMQ implementation of base.IConnector. Every frame is written as
//     one two-part message (header, data), which ZeroMQ delivers all-or-nothing.
//
// Endpoints:
//
//	tcp://*:5555 and tcp://0.0.0.0:5555 bind to all interfaces. Binding port 0 picks
//	an ephemeral port, Endpoint() then reports the port in use. ipc:// and inproc://
//	endpoints are supported as well.
package zmq
