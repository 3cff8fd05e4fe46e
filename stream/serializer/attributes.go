package serializer

import (
	"bytes"
	"encoding/json"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"math"
	"strconv"
)

// undefinedValue is the placeholder rendered for attributes without a value
const undefinedValue = `"Undefined"`

// EncodeAttributes renders an attribute set as a JSON object body.
//
// Entries appear in set order. Integers are bare numbers, float32 values carry 9 and
// float64 values 17 significant digits, strings are quoted JSON strings and undefined
// attributes render as "Undefined". Values that cannot be represented in JSON
// (NaN, infinities, a value not matching its kind) render as null.
// A nil or empty set renders as {}.
func EncodeAttributes(set *ndarray.AttributeSet) string {
	return string(AppendAttributes(nil, set))
}

// AppendAttributes appends the JSON object body of set to dst and returns the extended buffer
func AppendAttributes(dst []byte, set *ndarray.AttributeSet) []byte {
	dst = append(dst, '{')
	for i, attr := range set.All() {
		if i > 0 {
			dst = append(dst, ',')
		}
		dst = appendString(dst, attr.Name)
		dst = append(dst, ':')
		dst = appendValue(dst, attr)
	}
	return append(dst, '}')
}

// appendValue appends the JSON value of a single attribute
func appendValue(dst []byte, attr ndarray.Attribute) []byte {
	if attr.Kind == ndarray.AttrUndefined {
		return append(dst, undefinedValue...)
	}
	if !attr.Valid() {
		return append(dst, "null"...)
	}

	switch v := attr.Value.(type) {
	case int8:
		return strconv.AppendInt(dst, int64(v), 10)
	case uint8:
		return strconv.AppendUint(dst, uint64(v), 10)
	case int16:
		return strconv.AppendInt(dst, int64(v), 10)
	case uint16:
		return strconv.AppendUint(dst, uint64(v), 10)
	case int32:
		return strconv.AppendInt(dst, int64(v), 10)
	case uint32:
		return strconv.AppendUint(dst, uint64(v), 10)
	case int64:
		return strconv.AppendInt(dst, v, 10)
	case uint64:
		return strconv.AppendUint(dst, v, 10)
	case float32:
		return appendFloat(dst, float64(v), 9)
	case float64:
		return appendFloat(dst, v, 17)
	case string:
		return appendString(dst, v)
	default:
		return append(dst, "null"...)
	}
}

// appendFloat appends v with the given number of significant digits
func appendFloat(dst []byte, v float64, digits int) []byte {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return append(dst, "null"...)
	}
	return strconv.AppendFloat(dst, v, 'g', digits, 64)
}

// appendString appends s as a quoted JSON string.
// HTML characters are kept literal, quotes and control characters are escaped.
func appendString(dst []byte, s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return append(dst, "null"...)
	}
	// Encode terminates the value with a newline
	return append(dst, bytes.TrimSuffix(buf.Bytes(), []byte{'\n'})...)
}
