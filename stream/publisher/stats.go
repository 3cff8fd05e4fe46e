package publisher

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/lib/util"
	"github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"io"
)

// Stats tracks the rate and size of delivered frames.
// Rates come from exponentially weighted meters, sizes from a bucketed histogram.
type Stats struct {
	registry gometrics.Registry
	frames   gometrics.Meter
	bytes    gometrics.Meter
	sizes    *util.SizeHistogram
	promSize *metrics.Histogram
}

// NewStats creates the meters of the named publisher; the size histogram is also
// exported through set
func NewStats(set *metrics.Set, name string) *Stats {
	registry := gometrics.NewRegistry()
	return &Stats{
		registry: registry,
		frames:   gometrics.NewRegisteredMeter("frames", registry),
		bytes:    gometrics.NewRegisteredMeter("bytes", registry),
		sizes:    util.NewSizeHistogram(),
		promSize: set.NewHistogram(fmt.Sprintf(`ndzmq_frame_bytes{publisher=%q}`, name)),
	}
}

// Record adds one delivered frame of the given data size
func (s *Stats) Record(size int) {
	s.frames.Mark(1)
	s.bytes.Mark(int64(size))
	s.sizes.AddSample(size)
	s.promSize.Update(float64(size))
}

// FrameRate returns the one-minute moving average of delivered frames per second
func (s *Stats) FrameRate() float64 {
	return s.frames.Rate1()
}

// ByteRate returns the one-minute moving average of delivered bytes per second
func (s *Stats) ByteRate() float64 {
	return s.bytes.Rate1()
}

// Sizes returns the frame size histogram
func (s *Stats) Sizes() *util.SizeHistogram {
	return s.sizes
}

// WriteTo writes a human readable summary
func (s *Stats) WriteTo(w io.Writer) (int64, error) {
	n, err := fmt.Fprintf(w,
		"  Frame rate:           %.2f/s (1m), %.2f/s (mean)\n"+
			"  Byte rate:            %s/s (1m), %s/s (mean)\n"+
			"  Frame size:           avg %s, p50 %s, p99 %s, max %s\n",
		s.frames.Rate1(), s.frames.RateMean(),
		util.FormatBytes(int(s.bytes.Rate1())), util.FormatBytes(int(s.bytes.RateMean())),
		util.FormatBytes(s.sizes.AverageSize()), util.FormatBytes(s.sizes.PercentileEstimate(50)),
		util.FormatBytes(s.sizes.PercentileEstimate(99)), util.FormatBytes(s.sizes.MaxSize()))
	if err != nil {
		return int64(n), err
	}
	m, err := io.WriteString(w, s.sizes.String())
	return int64(n + m), err
}

// Stop stops the meters' background ticker
func (s *Stats) Stop() {
	s.frames.Stop()
	s.bytes.Stop()
	s.registry.UnregisterAll()
}
