// Package util provides small statistics helpers shared by the publisher and the CLI.
// This file implements a size histogram for tracking the distribution of frame sizes.
// The histogram uses exponential bucket sizing to cover a wide range of values
// (bytes to gigabytes) with a fixed, small memory footprint.
//
// Key features include:
//   - Constant memory regardless of the number of samples
//   - Thread-safe sample addition and querying
//   - Percentile estimation from the bucket boundaries
package util

import (
	"fmt"
	"math"
	"strings"
	"sync"
)

// sizeBoundaries are the upper bounds of the histogram buckets
var sizeBoundaries = []int{
	16, 64, 256, 1024, 4096, // Bytes: 16B to 4KB
	16384, 65536, 262144, 1048576, // KB range: 16KB to 1MB
	4194304, 16777216, 67108864, // MB range: 4MB to 64MB
	268435456, 1073741824, 4294967296, // Above 256MB to 4GB
}

// SizeHistogram tracks the distribution of frame sizes
type SizeHistogram struct {
	mutex   sync.RWMutex
	buckets []int64 // Count of items in each bucket (one more than boundaries)
	count   int64
	sum     int64
	max     int
}

// NewSizeHistogram creates a new size histogram
func NewSizeHistogram() *SizeHistogram {
	return &SizeHistogram{
		buckets: make([]int64, len(sizeBoundaries)+1),
	}
}

// AddSample adds a size sample to the histogram
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) AddSample(size int) {
	bucketIndex := len(sizeBoundaries)
	for i, boundary := range sizeBoundaries {
		if size <= boundary {
			bucketIndex = i
			break
		}
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.buckets[bucketIndex]++
	h.count++
	h.sum += int64(size)
	if size > h.max {
		h.max = size
	}
}

// Count returns the total number of samples
func (h *SizeHistogram) Count() int64 {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.count
}

// AverageSize returns the average size across all samples
func (h *SizeHistogram) AverageSize() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 {
		return 0
	}
	return int(h.sum / h.count)
}

// MaxSize returns the largest sample seen
func (h *SizeHistogram) MaxSize() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.max
}

// PercentileEstimate returns an estimate for the given percentile (0-100).
// The estimate is the midpoint of the bucket the percentile falls into.
//
// Thread-safe: This method is safe for concurrent use
func (h *SizeHistogram) PercentileEstimate(percentile int) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if h.count == 0 || percentile < 0 || percentile > 100 {
		return 0
	}

	targetCount := int64(math.Ceil(float64(h.count) * float64(percentile) / 100.0))
	if targetCount == 0 {
		targetCount = 1
	}
	cumulativeCount := int64(0)

	for i, count := range h.buckets {
		cumulativeCount += count
		if cumulativeCount >= targetCount {
			switch {
			case i == 0:
				return sizeBoundaries[0] / 2
			case i < len(sizeBoundaries):
				return (sizeBoundaries[i-1] + sizeBoundaries[i]) / 2
			default:
				return sizeBoundaries[len(sizeBoundaries)-1] * 2
			}
		}
	}

	return int(h.sum / h.count)
}

// Reset clears all histogram data
func (h *SizeHistogram) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.count = 0
	h.sum = 0
	h.max = 0
	for i := range h.buckets {
		h.buckets[i] = 0
	}
}

// String renders the non-empty buckets, one per line
func (h *SizeHistogram) String() string {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	var sb strings.Builder
	lower := 0
	for i, count := range h.buckets {
		if count > 0 {
			upper := "inf"
			if i < len(sizeBoundaries) {
				upper = FormatBytes(sizeBoundaries[i])
			}
			sb.WriteString(fmt.Sprintf("  %10s - %-10s: %d\n", FormatBytes(lower), upper, count))
		}
		if i < len(sizeBoundaries) {
			lower = sizeBoundaries[i] + 1
		}
	}
	return sb.String()
}

// FormatBytes renders a byte count with a binary unit suffix
func FormatBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
