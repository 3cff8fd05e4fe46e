package ndarray

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	// ErrOverRelease is returned when a frame is released more often than it was reserved
	ErrOverRelease = errors.New("frame released more often than reserved")
	// ErrShortBuffer is returned when a frame's buffer is smaller than its dimensions require
	ErrShortBuffer = errors.New("frame buffer smaller than dimensions require")
	// ErrPoolExhausted is returned by Pool.Alloc when the outstanding frame limit is reached
	ErrPoolExhausted = errors.New("pool exhausted")
)

// Frame is one array produced by an acquisition event.
//
// A frame starts with one reference owned by its creator. Holders that keep using the
// frame after handing it on take an extra reference with Reserve and drop it with
// Release. When the count reaches zero the frame's release hook runs exactly once
// (e.g. returning the buffer to its Pool).
type Frame struct {
	UniqueID   int64
	TimeStamp  float64
	DataType   DataType
	Dims       []Dimension
	Data       []byte
	Attributes *AttributeSet
	// Codec is the name of the compression codec applied to Data ("" if uncompressed)
	Codec string
	// CompressedSize is the number of valid bytes in Data when Codec is set
	// (0 = all of Data)
	CompressedSize int

	refs    atomic.Int32
	onFree  func(*Frame)
	freeCnt atomic.Int32
}

// NewFrame creates a frame holding one reference. onFree may be nil.
func NewFrame(dataType DataType, dims []Dimension, data []byte, onFree func(*Frame)) *Frame {
	f := &Frame{
		DataType:   dataType,
		Dims:       dims,
		Data:       data,
		Attributes: NewAttributeSet(),
		onFree:     onFree,
	}
	f.refs.Store(1)
	return f
}

// Reserve takes an additional reference
func (f *Frame) Reserve() {
	f.refs.Add(1)
}

// Release drops one reference and frees the frame on the last one
func (f *Frame) Release() error {
	n := f.refs.Add(-1)
	if n < 0 {
		f.refs.Add(1)
		return fmt.Errorf("%w (uniqueId=%d)", ErrOverRelease, f.UniqueID)
	}
	if n == 0 && f.freeCnt.Add(1) == 1 && f.onFree != nil {
		f.onFree(f)
	}
	return nil
}

// Refs returns the current reference count
func (f *Frame) Refs() int32 {
	return f.refs.Load()
}

// TotalBytes returns the number of bytes on the wire: the compressed size for frames
// with a codec, otherwise what the dimensions and data type describe
func (f *Frame) TotalBytes() int {
	if f.Codec != "" {
		if f.CompressedSize > 0 {
			return f.CompressedSize
		}
		return len(f.Data)
	}
	return NumElements(f.Dims) * f.DataType.ElementSize()
}

// Bytes returns the part of the buffer holding the array, without copying
func (f *Frame) Bytes() ([]byte, error) {
	total := f.TotalBytes()
	if len(f.Data) < total {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrShortBuffer, len(f.Data), total)
	}
	return f.Data[:total], nil
}
