package util

import (
	"github.com/stretchr/testify/assert"
	"sync"
	"testing"
)

// TestSizeHistogram tests counting, averaging and percentile estimation
func TestSizeHistogram(t *testing.T) {
	h := NewSizeHistogram()
	assert.Equal(t, 0, h.PercentileEstimate(50))
	assert.Equal(t, 0, h.AverageSize())

	for i := 0; i < 9; i++ {
		h.AddSample(8) // first bucket
	}
	h.AddSample(2000) // 1KB - 4KB bucket

	assert.Equal(t, int64(10), h.Count())
	assert.Equal(t, (9*8+2000)/10, h.AverageSize())
	assert.Equal(t, 2000, h.MaxSize())
	assert.Equal(t, 8, h.PercentileEstimate(50))
	assert.Equal(t, (1024+4096)/2, h.PercentileEstimate(100))
	assert.Equal(t, 0, h.PercentileEstimate(101))

	h.Reset()
	assert.Equal(t, int64(0), h.Count())
	assert.Equal(t, 0, h.MaxSize())
}

// TestSizeHistogramLargest tests the overflow bucket
func TestSizeHistogramLargest(t *testing.T) {
	h := NewSizeHistogram()
	h.AddSample(5 * 1024 * 1024 * 1024)
	assert.Equal(t, 4294967296*2, h.PercentileEstimate(50))
	assert.Contains(t, h.String(), "inf")
}

// TestSizeHistogramConcurrent tests concurrent sample addition
func TestSizeHistogramConcurrent(t *testing.T) {
	h := NewSizeHistogram()
	var wg sync.WaitGroup
	for g := 0; g < 10; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				h.AddSample(i)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(10000), h.Count())
}

// TestFormatBytes tests the unit rendering
func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", FormatBytes(512))
	assert.Equal(t, "1.0 KiB", FormatBytes(1024))
	assert.Equal(t, "1.5 MiB", FormatBytes(1536*1024))
}
