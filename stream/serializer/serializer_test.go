package serializer

import (
	"encoding/json"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"math"
	"strconv"
	"testing"
)

// testFrame creates a frame with two attributes as used by the end-to-end scenarios
func testFrame() *ndarray.Frame {
	f := ndarray.NewFrame(ndarray.UInt16, ndarray.Dims(640, 480), nil, nil)
	f.UniqueID = 102
	f.TimeStamp = 1700000000.123456789
	f.Attributes.AddInt32("gain", 4)
	f.Attributes.AddString("note", "ok")
	return f
}

// TestSerializeHeaderExact tests the byte-exact header layout
func TestSerializeHeaderExact(t *testing.T) {
	f := ndarray.NewFrame(ndarray.UInt16, ndarray.Dims(640, 480), nil, nil)
	f.UniqueID = 102
	f.TimeStamp = 1700000000.123456789
	f.Attributes.AddFloat64("exposure", 0.01)

	b, err := NewJSONSerializer().SerializeHeader(f)
	require.NoError(t, err)
	assert.Equal(t,
		`{"htype":"array-1.0", "type":"uint16", "shape":[480,640], "frame":102, "timeStamp":1700000000.1234567, "encoding":"", "ndattr":{"exposure":0.01}}`,
		string(b))
}

// TestSerializeHeaderRoundTrip tests that headers decode back to the frame's metadata
func TestSerializeHeaderRoundTrip(t *testing.T) {
	s := NewJSONSerializer()
	f := testFrame()
	f.Codec = "lz4"

	b, err := s.SerializeHeader(f)
	require.NoError(t, err)
	require.True(t, json.Valid(b))

	h, err := s.DeserializeHeader(b)
	require.NoError(t, err)
	assert.Equal(t, HType, h.HType)
	assert.Equal(t, "uint16", h.Type)
	assert.Equal(t, []int{480, 640}, h.Shape)
	assert.Equal(t, int64(102), h.Frame)
	assert.Equal(t, f.TimeStamp, h.TimeStamp)
	assert.Equal(t, "lz4", h.Encoding)
	assert.Equal(t, map[string]any{"gain": json.Number("4"), "note": "ok"}, h.NDAttr)
}

// TestSerializeHeaderDeterministic tests that the same frame always yields the same bytes
func TestSerializeHeaderDeterministic(t *testing.T) {
	s := NewJSONSerializer()
	f := testFrame()
	f.Attributes.Add("temp", ndarray.AttrFloat32, float32(21.5))
	f.Attributes.Add("missing", ndarray.AttrUndefined, nil)

	first, err := s.SerializeHeader(f)
	require.NoError(t, err)
	second, err := s.SerializeHeader(f)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// TestSerializeHeaderShape tests the reversed axis order for 1 to 3 dimensions
func TestSerializeHeaderShape(t *testing.T) {
	tests := []struct {
		dims  []int
		shape []int
	}{
		{[]int{10}, []int{10}},
		{[]int{2, 3}, []int{3, 2}},
		{[]int{3, 640, 480}, []int{480, 640, 3}},
	}

	s := NewJSONSerializer()
	for _, tt := range tests {
		f := ndarray.NewFrame(ndarray.UInt8, ndarray.Dims(tt.dims...), nil, nil)
		b, err := s.SerializeHeader(f)
		require.NoError(t, err)
		h, err := s.DeserializeHeader(b)
		require.NoError(t, err)
		assert.Equal(t, tt.shape, h.Shape)
	}
}

// TestSerializeHeaderUnsupported tests that unsupported data types produce no header
func TestSerializeHeaderUnsupported(t *testing.T) {
	f := ndarray.NewFrame(ndarray.DataType(42), ndarray.Dims(2, 2), nil, nil)
	b, err := NewJSONSerializer().SerializeHeader(f)
	assert.Nil(t, b)
	assert.ErrorIs(t, err, common.ErrUnsupportedDataType)
}

// TestDeserializeHeaderInvalid tests decoding of foreign or broken headers
func TestDeserializeHeaderInvalid(t *testing.T) {
	s := NewJSONSerializer()
	_, err := s.DeserializeHeader([]byte(`{"htype":"chunk-1.0"}`))
	assert.Error(t, err)
	_, err = s.DeserializeHeader([]byte(`{"htype":`))
	assert.Error(t, err)
}

// TestEncodeAttributesKinds tests the rendering of every attribute kind
func TestEncodeAttributesKinds(t *testing.T) {
	set := ndarray.NewAttributeSet()
	set.Add("i8", ndarray.AttrInt8, int8(-8))
	set.Add("u8", ndarray.AttrUInt8, uint8(200))
	set.Add("i16", ndarray.AttrInt16, int16(-1600))
	set.Add("u16", ndarray.AttrUInt16, uint16(65535))
	set.Add("i32", ndarray.AttrInt32, int32(-7))
	set.Add("u32", ndarray.AttrUInt32, uint32(4000000000))
	set.Add("i64", ndarray.AttrInt64, int64(math.MinInt64))
	set.Add("u64", ndarray.AttrUInt64, uint64(math.MaxUint64))
	set.Add("f32", ndarray.AttrFloat32, float32(0.1))
	set.Add("f64", ndarray.AttrFloat64, 0.1)
	set.Add("s", ndarray.AttrString, "a\"b")
	set.Add("u", ndarray.AttrUndefined, nil)

	assert.Equal(t,
		`{"i8":-8,"u8":200,"i16":-1600,"u16":65535,"i32":-7,"u32":4000000000,`+
			`"i64":-9223372036854775808,"u64":18446744073709551615,`+
			`"f32":0.100000001,"f64":0.10000000000000001,"s":"a\"b","u":"Undefined"}`,
		EncodeAttributes(set))
}

// TestEncodeAttributesPrecision tests that floats survive encoding and parsing bit-exactly
func TestEncodeAttributesPrecision(t *testing.T) {
	f64 := []float64{math.Pi, 1.0 / 3.0, 1e-300, 6.02214076e23, -0.0001234567890123}
	f32 := []float32{math.Pi, 1.0 / 3.0, 1e-30, 16777217, -3.4e38}

	for _, v := range f64 {
		set := ndarray.NewAttributeSet()
		set.AddFloat64("v", v)
		var parsed map[string]float64
		require.NoError(t, json.Unmarshal([]byte(EncodeAttributes(set)), &parsed))
		assert.Equal(t, v, parsed["v"], strconv.FormatFloat(v, 'g', -1, 64))
	}

	for _, v := range f32 {
		set := ndarray.NewAttributeSet()
		set.Add("v", ndarray.AttrFloat32, v)
		var parsed map[string]float64
		require.NoError(t, json.Unmarshal([]byte(EncodeAttributes(set)), &parsed))
		assert.Equal(t, v, float32(parsed["v"]))
	}
}

// TestEncodeAttributesEdgeCases tests empty sets and values JSON cannot carry
func TestEncodeAttributesEdgeCases(t *testing.T) {
	assert.Equal(t, "{}", EncodeAttributes(nil))
	assert.Equal(t, "{}", EncodeAttributes(ndarray.NewAttributeSet()))

	set := ndarray.NewAttributeSet()
	set.AddFloat64("nan", math.NaN())
	set.AddFloat64("inf", math.Inf(1))
	set.Add("mismatch", ndarray.AttrInt32, "four")
	set.AddString("html", "<a&b>")
	set.AddString("ctrl", "line\nbreak")

	out := EncodeAttributes(set)
	assert.True(t, json.Valid([]byte(out)), out)
	assert.Equal(t, `{"nan":null,"inf":null,"mismatch":null,"html":"<a&b>","ctrl":"line\nbreak"}`, out)
}
