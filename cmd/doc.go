// Package cmd implements the command-line interface of ndzmq. It wires a simulated
// array source to a ZeroMQ publisher and offers tooling around it.
//
// The package is organized into several subpackages:
//
//   - serve: Commands for running a publisher fed by the array simulator
//   - bench: Commands for measuring header encoding and publish throughput
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// The resolve and version commands live in this package.
//
// See ndzmq -help for a list of all commands.
package cmd
