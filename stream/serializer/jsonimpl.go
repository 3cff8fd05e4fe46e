package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"strconv"
)

// NewJSONSerializer creates a new header serializer producing "array-1.0" JSON headers
func NewJSONSerializer() IHeaderSerializer {
	return &jsonSerializerImpl{}
}

// jsonSerializerImpl implements the IHeaderSerializer interface.
// The header is assembled by hand because the key order is part of the wire format.
type jsonSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IHeaderSerializer)
// --------------------------------------------------------------------------

func (j jsonSerializerImpl) SerializeHeader(frame *ndarray.Frame) ([]byte, error) {
	typeName, ok := frame.DataType.Name()
	if !ok {
		return nil, fmt.Errorf("%w: %s", common.ErrUnsupportedDataType, frame.DataType)
	}

	b := make([]byte, 0, 160+32*frame.Attributes.Len())
	b = append(b, `{"htype":"`+HType+`", "type":"`...)
	b = append(b, typeName...)
	b = append(b, `", "shape":`...)
	b = appendShape(b, frame.Dims)
	b = append(b, `, "frame":`...)
	b = strconv.AppendInt(b, frame.UniqueID, 10)
	b = append(b, `, "timeStamp":`...)
	b = appendFloat(b, frame.TimeStamp, 17)
	b = append(b, `, "encoding":`...)
	b = appendString(b, frame.Codec)
	b = append(b, `, "ndattr":`...)
	b = AppendAttributes(b, frame.Attributes)
	b = append(b, '}')
	return b, nil
}

func (j jsonSerializerImpl) DeserializeHeader(b []byte) (Header, error) {
	var h Header
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&h); err != nil {
		return Header{}, fmt.Errorf("failed to decode header: %w", err)
	}
	if h.HType != HType {
		return Header{}, fmt.Errorf("unsupported header type %q", h.HType)
	}
	return h, nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// appendShape appends the axis sizes slowest-varying first, the reverse of the frame's dimension order
func appendShape(dst []byte, dims []ndarray.Dimension) []byte {
	dst = append(dst, '[')
	for i := len(dims) - 1; i >= 0; i-- {
		dst = strconv.AppendInt(dst, int64(dims[i].Size), 10)
		if i > 0 {
			dst = append(dst, ',')
		}
	}
	return append(dst, ']')
}
