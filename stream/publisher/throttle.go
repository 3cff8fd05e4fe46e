package publisher

import (
	"golang.org/x/time/rate"
	"math"
	"time"
)

// IThrottler decides whether a frame of the given size may be sent now
type IThrottler interface {
	Allow(bytes int) bool
}

// ByteRateThrottler limits the published bytes per second with a token bucket.
// The bucket holds one second's worth of bytes, so a frame larger than the rate is
// never allowed.
type ByteRateThrottler struct {
	limiter *rate.Limiter
}

// NewByteRateThrottler creates a throttler allowing bytesPerSecond on average
func NewByteRateThrottler(bytesPerSecond float64) *ByteRateThrottler {
	burst := int(math.Min(math.Max(bytesPerSecond, 1), math.MaxInt32))
	return &ByteRateThrottler{
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see publisher.IThrottler)
// --------------------------------------------------------------------------

func (t *ByteRateThrottler) Allow(bytes int) bool {
	return t.AllowAt(time.Now(), bytes)
}

// AllowAt is Allow at the given point in time
func (t *ByteRateThrottler) AllowAt(now time.Time, bytes int) bool {
	return t.limiter.AllowN(now, bytes)
}
