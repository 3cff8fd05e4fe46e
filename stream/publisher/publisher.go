package publisher

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/serializer"
	"github.com/ValentinKolb/ndzmq/stream/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"io"
	"sync/atomic"
)

var Logger = logger.GetLogger("publisher")

// --------------------------------------------------------------------------
// Results
// --------------------------------------------------------------------------

// Outcome is the result of processing one frame
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	OutcomeTransportDrop
	OutcomeThrottleDrop
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeTransportDrop:
		return "transport drop"
	case OutcomeThrottleDrop:
		return "throttle drop"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// SendResult is the result of one transmit attempt.
// OwnershipTransferred means the socket holds a reference to the frame and releases it
// once the bytes are written or discarded. Otherwise the publisher already gave its
// reference back.
type SendResult struct {
	Delivered            bool
	OwnershipTransferred bool
}

// --------------------------------------------------------------------------
// Publisher
// --------------------------------------------------------------------------

// Publisher sends frames as two-part messages (JSON header, raw data) over one socket.
//
// Process, SendFrame and Skip must be called from one goroutine at a time and never
// while holding a lock of the array source: the source releases its lock, calls the
// publisher and reacquires the lock afterwards.
type Publisher struct {
	config     common.PublisherConfig
	desc       common.Descriptor
	socket     transport.ISocket
	serializer serializer.IHeaderSerializer
	throttler  IThrottler

	metrics      *metrics.Set
	drops        *DropCounters
	stats        *Stats
	arrayCounter atomic.Int64
	closed       atomic.Bool
}

// New resolves the configured descriptor and opens the socket.
// Configuration errors wrap common.ErrConfiguration, open failures common.ErrTransportOpen.
// On error the socket is closed and no publisher is returned.
func New(config common.PublisherConfig, socket transport.ISocket) (*Publisher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	desc, err := common.ParseDescriptor(config.Descriptor)
	if err != nil {
		return nil, err
	}

	if err := socket.Open(desc, config.Tuning); err != nil {
		_ = socket.Close()
		return nil, err
	}

	set := metrics.NewSet()
	p := &Publisher{
		config:     config,
		desc:       desc,
		socket:     socket,
		serializer: serializer.NewJSONSerializer(),
		metrics:    set,
		drops:      NewDropCounters(set, config.Name),
		stats:      NewStats(set, config.Name),
	}
	if config.MaxByteRate > 0 {
		p.throttler = NewByteRateThrottler(config.MaxByteRate)
	}

	set.NewGauge(fmt.Sprintf(`ndzmq_queued_messages{publisher=%q}`, config.Name), func() float64 {
		return float64(p.socket.Stats().Queued)
	})
	set.NewGauge(fmt.Sprintf(`ndzmq_array_counter{publisher=%q}`, config.Name), func() float64 {
		return float64(p.arrayCounter.Load())
	})

	Logger.Infof("publisher %s opened %s (%s)", config.Name, desc, socket.Endpoint())
	return p, nil
}

// WithThrottler replaces the rate policy used by Process (nil disables throttling)
func (p *Publisher) WithThrottler(t IThrottler) *Publisher {
	p.throttler = t
	return p
}

// Process runs the complete per-frame step: consult the rate policy, send or skip the
// frame, account for drops and advance the array counter. It never blocks and never
// fails, the returned outcome is informational.
func (p *Publisher) Process(frame *ndarray.Frame) Outcome {
	defer p.arrayCounter.Add(1)

	if p.throttler != nil && !p.throttler.Allow(frame.TotalBytes()) {
		p.Skip(frame)
		return OutcomeThrottleDrop
	}
	return p.SendFrame(frame)
}

// SendFrame transmits the frame and accounts a transport drop if that fails
func (p *Publisher) SendFrame(frame *ndarray.Frame) Outcome {
	res, err := p.transmit(frame)
	if err != nil || !res.Delivered {
		p.drops.RecordTransportDrop(frame.UniqueID, err)
		return OutcomeTransportDrop
	}
	p.drops.RecordDelivered()
	Logger.Debugf("sent array uniqueId=%d (%d bytes)", frame.UniqueID, frame.TotalBytes())
	return OutcomeDelivered
}

// Skip records a frame the array source decided not to send because of its rate policy
func (p *Publisher) Skip(frame *ndarray.Frame) {
	p.drops.RecordThrottleDrop(frame.UniqueID)
}

// transmit encodes the header and hands header and data to the socket without copying
// the data. The frame is reserved once for the socket and that reservation is released
// exactly once: by the socket after the write, or here if the socket rejects the message.
func (p *Publisher) transmit(frame *ndarray.Frame) (SendResult, error) {
	header, err := p.serializer.SerializeHeader(frame)
	if err != nil {
		return SendResult{}, err
	}
	data, err := frame.Bytes()
	if err != nil {
		return SendResult{}, err
	}

	frame.Reserve()
	err = p.socket.Send(transport.Message{
		Header:  header,
		Data:    data,
		Release: func() { releaseFrame(frame) },
	})
	if err != nil {
		releaseFrame(frame)
		return SendResult{}, err
	}

	p.stats.Record(len(data))
	return SendResult{Delivered: true, OwnershipTransferred: true}, nil
}

// releaseFrame gives one reference back, an over-release is a bug in the caller
func releaseFrame(frame *ndarray.Frame) {
	if err := frame.Release(); err != nil {
		Logger.Errorf("failed to release array: %v", err)
	}
}

// Close closes the socket and stops the meters. It is idempotent.
// Frames still queued in the socket are released.
func (p *Publisher) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	p.stats.Stop()
	err := p.socket.Close()
	Logger.Infof("publisher %s closed", p.config.Name)
	return err
}

// --------------------------------------------------------------------------
// Observability
// --------------------------------------------------------------------------

// Descriptor returns the resolved connection descriptor
func (p *Publisher) Descriptor() common.Descriptor {
	return p.desc
}

// Endpoint returns the address the socket is bound or connected to
func (p *Publisher) Endpoint() string {
	return p.socket.Endpoint()
}

// Dropped returns the number of frames dropped for the reason
func (p *Publisher) Dropped(reason DropReason) uint64 {
	return p.drops.Dropped(reason)
}

// Delivered returns the number of frames the socket accepted
func (p *Publisher) Delivered() uint64 {
	return p.drops.Delivered()
}

// ArrayCounter returns the number of frames processed
func (p *Publisher) ArrayCounter() int64 {
	return p.arrayCounter.Load()
}

// Stats returns the rate and size statistics
func (p *Publisher) Stats() *Stats {
	return p.stats
}

// WritePrometheus writes all counters in Prometheus text format
func (p *Publisher) WritePrometheus(w io.Writer) {
	p.metrics.WritePrometheus(w)
}

// Report writes a human readable status summary
func (p *Publisher) Report(w io.Writer) error {
	verb := "connects to"
	if p.desc.Binds() {
		verb = "binds at"
	}
	sock := p.socket.Stats()

	_, err := fmt.Fprintf(w,
		"\nZMQ publisher %s %s %s\n"+
			"  Socket type:          %s\n"+
			"  Transport:            %s\n"+
			"  Array counter:        %d\n"+
			"  Delivered arrays:     %d\n"+
			"  Dropped (transport):  %d\n"+
			"  Dropped (throttle):   %d\n"+
			"  Queued messages:      %d\n"+
			"  Write errors:         %d\n",
		p.config.Name, verb, p.socket.Endpoint(),
		p.desc.Role,
		p.socket.GetName(),
		p.arrayCounter.Load(),
		p.drops.Delivered(),
		p.drops.Dropped(DropTransport),
		p.drops.Dropped(DropThrottle),
		sock.Queued,
		sock.WriteErrors)
	if err != nil {
		return err
	}
	_, err = p.stats.WriteTo(w)
	return err
}
