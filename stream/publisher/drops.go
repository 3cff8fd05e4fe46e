package publisher

import (
	"fmt"
	"github.com/VictoriaMetrics/metrics"
)

// DropReason classifies why a frame was not published
type DropReason string

const (
	// DropTransport covers encoding failures and sends the socket rejected
	DropTransport DropReason = "transport"
	// DropThrottle covers frames the rate policy skipped before any send attempt
	DropThrottle DropReason = "throttle"
)

// DropCounters holds the monotonic per-reason drop counters and the delivered counter.
// Recording never blocks and never fails.
type DropCounters struct {
	transport *metrics.Counter
	throttle  *metrics.Counter
	delivered *metrics.Counter
}

// NewDropCounters registers the counters of the named publisher in set
func NewDropCounters(set *metrics.Set, name string) *DropCounters {
	return &DropCounters{
		transport: set.NewCounter(fmt.Sprintf(`ndzmq_dropped_arrays_total{publisher=%q,reason=%q}`, name, DropTransport)),
		throttle:  set.NewCounter(fmt.Sprintf(`ndzmq_dropped_arrays_total{publisher=%q,reason=%q}`, name, DropThrottle)),
		delivered: set.NewCounter(fmt.Sprintf(`ndzmq_delivered_arrays_total{publisher=%q}`, name)),
	}
}

// RecordTransportDrop counts a transport drop and logs the frame and the cause
func (d *DropCounters) RecordTransportDrop(uniqueID int64, cause error) {
	d.transport.Inc()
	Logger.Warningf("ZeroMQ socket dropped array uniqueId=%d: %v", uniqueID, cause)
}

// RecordThrottleDrop counts a throttle drop and logs the frame
func (d *DropCounters) RecordThrottleDrop(uniqueID int64) {
	d.throttle.Inc()
	Logger.Warningf("maximum byte rate exceeded, dropped array uniqueId=%d", uniqueID)
}

// RecordDelivered counts a frame the socket accepted
func (d *DropCounters) RecordDelivered() {
	d.delivered.Inc()
}

// Dropped returns the drop count for the reason
func (d *DropCounters) Dropped(reason DropReason) uint64 {
	switch reason {
	case DropTransport:
		return d.transport.Get()
	case DropThrottle:
		return d.throttle.Get()
	default:
		return 0
	}
}

// Delivered returns the number of delivered frames
func (d *DropCounters) Delivered() uint64 {
	return d.delivered.Get()
}
