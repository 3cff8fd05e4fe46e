package ndarray

import (
	"fmt"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
)

var Logger = logger.GetLogger("ndarray")

// Pool allocates frames and recycles their buffers.
// Buffers are kept in one sync.Pool per buffer size, the size classes live in a
// lock-free map so allocation never takes a global lock.
type Pool struct {
	classes     *xsync.MapOf[int, *sync.Pool]
	outstanding *xsync.Counter
	allocated   *xsync.Counter
	maxFrames   int64
}

// NewPool creates a pool. maxFrames limits the number of frames that may be
// outstanding at the same time (0 = unlimited).
func NewPool(maxFrames int) *Pool {
	return &Pool{
		classes:     xsync.NewMapOf[int, *sync.Pool](),
		outstanding: xsync.NewCounter(),
		allocated:   xsync.NewCounter(),
		maxFrames:   int64(maxFrames),
	}
}

// Alloc returns a frame with one reference and a buffer sized for the given
// data type and dimensions. The buffer content is undefined.
func (p *Pool) Alloc(dataType DataType, dims []Dimension) (*Frame, error) {
	if !dataType.Supported() {
		return nil, fmt.Errorf("cannot allocate frame with unsupported data type %s", dataType)
	}
	if p.maxFrames > 0 && p.outstanding.Value() >= p.maxFrames {
		return nil, fmt.Errorf("%w (%d frames outstanding)", ErrPoolExhausted, p.outstanding.Value())
	}

	size := NumElements(dims) * dataType.ElementSize()
	class, _ := p.classes.LoadOrCompute(size, func() *sync.Pool {
		return &sync.Pool{
			New: func() interface{} {
				p.allocated.Inc()
				buf := make([]byte, size)
				return &buf
			},
		}
	})

	buf := class.Get().(*[]byte)
	p.outstanding.Inc()

	dimsCopy := make([]Dimension, len(dims))
	copy(dimsCopy, dims)

	return NewFrame(dataType, dimsCopy, (*buf)[:size], func(f *Frame) {
		p.outstanding.Dec()
		class.Put(buf)
	}), nil
}

// Outstanding returns the number of frames that were allocated and not yet freed
func (p *Pool) Outstanding() int64 {
	return p.outstanding.Value()
}

// Allocated returns the number of buffers that had to be newly allocated
// (as opposed to being taken from a size class)
func (p *Pool) Allocated() int64 {
	return p.allocated.Value()
}
