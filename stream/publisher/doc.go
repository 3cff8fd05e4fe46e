// Package publisher streams frames to a single outbound socket. Every frame becomes one
// two-part message: the "array-1.0" JSON header followed by the raw data buffer, which
// is handed to the socket without copying.
//
// The package focuses on:
//   - The per-frame step of an array source: throttle, send or skip, account
//   - Exactly-once release of the reference held for the socket
//   - Drop accounting by reason (transport, throttle) with warning logs
//   - Rates, size distribution and Prometheus export of all counters
//
// Key Components:
//
//   - Publisher: Owns the socket and the counters. Process is the full per-frame
//     step, SendFrame and Skip are its two halves for sources that apply their own
//     rate policy.
//
//   - DropCounters: Monotonic counters for transport drops, throttle drops and
//     delivered frames (VictoriaMetrics).
//
//   - Stats: One-minute and mean frame and byte rates (go-metrics meters) plus the
//     frame size histogram.
//
//   - ByteRateThrottler: Token bucket on the published bytes per second.
//
// Locking Contract:
//
//	The array source owns its lock. It releases the lock before calling Process and
//	reacquires it after Process returned. The publisher never takes that lock and
//	never blocks, a frame the socket cannot accept right away is dropped and counted.
//
// Usage:
//
//	p, err := publisher.New(config, zmq.NewZMQSocket())
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	sim.Run(ctx, 0, interval, func(f *ndarray.Frame) { p.Process(f) })
package publisher
