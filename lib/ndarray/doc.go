// Package ndarray provides the in-memory model of the N-dimensional arrays that are
// streamed by the publisher, together with the array source side of their lifecycle.
//
// The package focuses on:
//   - A typed, reference counted Frame (metadata, dimensions, raw buffer, attributes)
//   - An insertion-ordered AttributeSet with typed attribute values
//   - A size-class buffer pool that recycles frame buffers on the last release
//   - A simulated acquisition source that drives a per-frame callback
//
// Key Components:
//
//   - Frame: One unit of array data. Frames are created with one reference owned by
//     their creator. Every additional holder (e.g. a transport that still needs the
//     bytes) takes a reference with Reserve and gives it back with Release. The buffer
//     returns to its pool when the last reference is released.
//
//   - AttributeSet: Ordered collection of named attributes. The iteration order is the
//     insertion order, which in turn defines the key order of the encoded JSON header.
//
//   - Pool: Allocates frames from per-size sync.Pools (stored in a lock-free xsync map)
//     and keeps a count of outstanding frames. A non-zero count after all consumers are
//     done indicates a leaked reference.
//
//   - Simulator: Produces frames with a test pattern and drives a callback exactly the
//     way an acquisition framework does: bookkeeping under the source lock, the callback
//     itself outside of it.
//
// Thread Safety:
//
//	Reserve and Release are safe for concurrent use. The Pool is safe for concurrent
//	use. A Frame's metadata must not be mutated while it is shared.
package ndarray
