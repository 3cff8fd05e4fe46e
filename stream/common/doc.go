// Package common provides the core types shared by all parts of the frame
// publisher: connection descriptors, configuration, errors and logging.
//
// The package focuses on:
//   - Resolving connection descriptors into a socket role and bind mode
//   - Configuration structures for publishers and socket tuning
//   - The error taxonomy used across serializer, transport and publisher
//   - Custom logging implementation built on Dragonboat's logger package
//
// Key Components:
//
//   - Descriptor: A resolved "transport://address [PUB|PUSH] [BIND|CONNECT]"
//     string. ParseDescriptor applies the defaulting rules (wildcard addresses
//     bind and publish, plain addresses push and connect).
//
//   - PublisherConfig: Configuration of a publisher, including the descriptor,
//     throttling, the metrics endpoint and the socket tuning.
//
//   - Tuning: Optional socket settings read from ZMQ_AFFINITY and ZMQ_SNDHWM.
//
//   - Errors: ErrConfiguration and ErrTransportOpen are fatal at construction,
//     ErrUnsupportedDataType and ErrSendFailure are counted as dropped frames.
//
//   - Logger: Custom logging implementation that integrates with Dragonboat's
//     logging facade while providing consistent formatting across the module.
package common
