package ndarray

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Callback is invoked once per produced frame.
// It runs without the simulator lock held and must not retain the frame beyond the
// call unless it takes its own reference with Reserve.
type Callback func(frame *Frame)

// SimulatorConfig describes the frames a Simulator produces
type SimulatorConfig struct {
	DataType DataType
	Dims     []Dimension
	// Attributes are copied into every frame after the standard attributes
	Attributes *AttributeSet
	// Codec is set as the frame codec name
	Codec string
	// Now returns the acquisition time (defaults to time.Now)
	Now func() time.Time
}

// Simulator stands in for an acquisition framework.
// Every call to Produce allocates a frame from the pool, stamps it, and invokes the
// callback between releasing and re-acquiring the simulator lock, the same contract
// a driver's plugin callback has. The array counter advances for every frame the
// callback was invoked for, regardless of what the callback did with it.
type Simulator struct {
	mu           sync.Mutex
	pool         *Pool
	config       SimulatorConfig
	uniqueID     int64
	arrayCounter int64
	skipped      int64
}

// NewSimulator creates a simulator allocating from pool
func NewSimulator(pool *Pool, config SimulatorConfig) *Simulator {
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Simulator{
		pool:   pool,
		config: config,
	}
}

// Produce runs one acquisition event
func (s *Simulator) Produce(cb Callback) error {
	frame, err := s.pool.Alloc(s.config.DataType, s.config.Dims)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.uniqueID++
	frame.UniqueID = s.uniqueID
	now := s.config.Now()
	frame.TimeStamp = float64(now.UnixNano()) / 1e9
	frame.Codec = s.config.Codec
	fillPattern(frame.Data, frame.UniqueID)

	frame.Attributes.AddInt32("ArrayCounter", int32(s.arrayCounter+1))
	frame.Attributes.AddInt64("UniqueId", frame.UniqueID)
	frame.Attributes.AddFloat64("TimeStamp", frame.TimeStamp)
	for _, a := range s.config.Attributes.All() {
		frame.Attributes.Add(a.Name, a.Kind, a.Value)
	}
	s.mu.Unlock()

	cb(frame)

	s.mu.Lock()
	s.arrayCounter++
	s.mu.Unlock()

	// drop the reference the source held while the callback ran
	if err := frame.Release(); err != nil {
		Logger.Errorf("frame %d: %v", frame.UniqueID, err)
	}
	return nil
}

// Run produces count frames (count <= 0 means until ctx is done), one every interval.
// Events for which the pool has no free buffer are skipped and counted.
func (s *Simulator) Run(ctx context.Context, count int, interval time.Duration, cb Callback) error {
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for i := 0; count <= 0 || i < count; i++ {
		if ticker != nil && i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.Produce(cb); errors.Is(err, ErrPoolExhausted) {
			// a driver skips the event when no buffer is free
			s.mu.Lock()
			s.skipped++
			s.mu.Unlock()
			Logger.Warningf("skipped acquisition: %v", err)
		} else if err != nil {
			return err
		}
	}
	return nil
}

// ArrayCounter returns the number of frames handed to the callback so far
func (s *Simulator) ArrayCounter() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.arrayCounter
}

// Skipped returns the number of acquisition events lost to an exhausted pool
func (s *Simulator) Skipped() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.skipped
}

// fillPattern writes a ramp offset by the frame id
func fillPattern(buf []byte, id int64) {
	for i := range buf {
		buf[i] = byte(int64(i) + id)
	}
}
