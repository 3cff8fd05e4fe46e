package serializer

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"testing"
)

// benchmarkFrames returns frames with growing attribute sets
func benchmarkFrames() map[string]*ndarray.Frame {
	frames := make(map[string]*ndarray.Frame)
	for _, n := range []int{0, 4, 32} {
		f := ndarray.NewFrame(ndarray.Float32, ndarray.Dims(2048, 2048), nil, nil)
		f.UniqueID = 123456
		f.TimeStamp = 1700000000.5
		for i := 0; i < n; i++ {
			switch i % 3 {
			case 0:
				f.Attributes.AddFloat64(fmt.Sprintf("float%d", i), float64(i)/7)
			case 1:
				f.Attributes.AddInt64(fmt.Sprintf("int%d", i), int64(i)*1000)
			default:
				f.Attributes.AddString(fmt.Sprintf("str%d", i), "some detector value")
			}
		}
		frames[fmt.Sprintf("Attributes%d", n)] = f
	}
	return frames
}

// BenchmarkSerializeHeader benchmarks header encoding
func BenchmarkSerializeHeader(b *testing.B) {
	s := NewJSONSerializer()
	for name, f := range benchmarkFrames() {
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := s.SerializeHeader(f); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkDeserializeHeader benchmarks header decoding
func BenchmarkDeserializeHeader(b *testing.B) {
	s := NewJSONSerializer()
	for name, f := range benchmarkFrames() {
		data, err := s.SerializeHeader(f)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(name, func(b *testing.B) {
			b.ReportAllocs()
			b.SetBytes(int64(len(data)))
			for i := 0; i < b.N; i++ {
				if _, err := s.DeserializeHeader(data); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
