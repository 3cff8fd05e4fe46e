// Package memory implements in-process frame sockets. Messages are copied into named
// endpoints that consumers read from the same process, which makes the package the
// transport of choice for tests and for local pipelines that do not need ZeroMQ.
//
// Key Components:
//
//   - Endpoint: A named, optionally buffered mailbox. Consumers either Listen on a
//     name (connecting sockets deliver to it) or Lookup the endpoint a bound socket
//     created.
//
//   - connector: In-process implementation of base.IConnector. A write blocks while
//     the endpoint is full, so a stalled consumer fills the socket's send queue
//     exactly like a stalled network peer.
//
// Addresses have the form memory://name.
package memory
