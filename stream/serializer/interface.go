package serializer

import "github.com/ValentinKolb/ndzmq/lib/ndarray"

// HType is the header type tag of every header this package produces
const HType = "array-1.0"

// Header is the decoded form of a frame header.
// Numbers in NDAttr are json.Number so 64-bit integers survive decoding.
type Header struct {
	HType     string         `json:"htype"`
	Type      string         `json:"type"`
	Shape     []int          `json:"shape"`
	Frame     int64          `json:"frame"`
	TimeStamp float64        `json:"timeStamp"`
	Encoding  string         `json:"encoding"`
	NDAttr    map[string]any `json:"ndattr"`
}

// IHeaderSerializer is the interface for all frame header serializers
type IHeaderSerializer interface {
	// SerializeHeader encodes the metadata of a frame (everything but the data buffer).
	// It never mutates the frame and performs no I/O.
	// It returns an error wrapping common.ErrUnsupportedDataType if the frame's
	// data type has no wire name.
	SerializeHeader(frame *ndarray.Frame) ([]byte, error)
	// DeserializeHeader decodes a header produced by SerializeHeader
	DeserializeHeader(b []byte) (Header, error)
}
