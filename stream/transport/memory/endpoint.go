package memory

import (
	"context"
	"errors"
	"fmt"
	"github.com/puzpuzpuz/xsync/v3"
	"sync"
)

// ErrEndpointClosed is returned when receiving from or writing to a closed endpoint
var ErrEndpointClosed = errors.New("memory endpoint closed")

// registry holds all listening endpoints by name
var registry = xsync.NewMapOf[string, *Endpoint]()

// Delivery is one received two-part message
type Delivery struct {
	Header []byte
	Data   []byte
}

// Endpoint is a named in-process mailbox. Sockets bind to it (and own it) or connect
// to one a consumer registered with Listen.
type Endpoint struct {
	name      string
	ch        chan Delivery
	done      chan struct{}
	closeOnce sync.Once
}

// Listen registers a new endpoint. capacity is the number of deliveries buffered
// before writers block (0 = writers block until a receiver is ready).
func Listen(name string, capacity int) (*Endpoint, error) {
	if capacity < 0 {
		capacity = 0
	}
	e := &Endpoint{
		name: name,
		ch:   make(chan Delivery, capacity),
		done: make(chan struct{}),
	}
	if _, loaded := registry.LoadOrStore(name, e); loaded {
		return nil, fmt.Errorf("memory endpoint %q already in use", name)
	}
	return e, nil
}

// Lookup returns the endpoint registered under name
func Lookup(name string) (*Endpoint, bool) {
	return registry.Load(name)
}

// Name returns the name the endpoint is registered under
func (e *Endpoint) Name() string {
	return e.name
}

// Recv waits for the next delivery
func (e *Endpoint) Recv(ctx context.Context) (Delivery, error) {
	select {
	case d := <-e.ch:
		return d, nil
	case <-e.done:
		return Delivery{}, ErrEndpointClosed
	case <-ctx.Done():
		return Delivery{}, ctx.Err()
	}
}

// Pending returns the number of buffered deliveries
func (e *Endpoint) Pending() int {
	return len(e.ch)
}

// Close unregisters the endpoint and unblocks all writers and receivers
func (e *Endpoint) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		registry.Compute(e.name, func(current *Endpoint, loaded bool) (*Endpoint, bool) {
			// only remove our own registration
			return current, !loaded || current == e
		})
	})
}

// deliver copies the message into the endpoint, blocking while it is full
func (e *Endpoint) deliver(header, data []byte, abort <-chan struct{}) error {
	d := Delivery{
		Header: append([]byte(nil), header...),
		Data:   append([]byte(nil), data...),
	}
	select {
	case e.ch <- d:
		return nil
	case <-e.done:
		return ErrEndpointClosed
	case <-abort:
		return ErrEndpointClosed
	}
}
