// Package serializer encodes frame metadata into the "array-1.0" JSON header that
// precedes every data buffer on the wire.
//
// The package focuses on:
//   - Producing a byte-exact, deterministic header for every supported frame
//   - Rendering frame attributes with type-preserving precision
//   - Decoding headers again for receivers, tests and tooling
//
// Key Components:
//
//   - IHeaderSerializer: Core interface for header encoding and decoding.
//
//   - jsonSerializerImpl: Builds the header by appending to a byte slice so the
//     key order (htype, type, shape, frame, timeStamp, encoding, ndattr) and the
//     number formatting stay fixed. The shape is written slowest axis first.
//
//   - EncodeAttributes: Renders an AttributeSet as a JSON object in insertion order.
//     float32 values keep 9 and float64 values 17 significant digits, so receivers
//     recover the exact binary value.
//
// Wire format example:
//
//	{"htype":"array-1.0", "type":"uint16", "shape":[480,640], "frame":102, "timeStamp":1700000000.1234567, "encoding":"", "ndattr":{"exposure":0.01}}
//
// Thread Safety:
//
//	The serializer is stateless and safe for concurrent use.
package serializer
