package memory

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/transport"
	"github.com/ValentinKolb/ndzmq/stream/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
	"sync"
)

var Logger = logger.GetLogger("transport/memory")

// Scheme is the transport part of in-process addresses ("memory://name")
const Scheme = "memory"

// connector implements the base.IConnector interface on in-process endpoints
type connector struct {
	capacity int

	mu     sync.Mutex
	owned  *Endpoint // endpoint created by Bind
	peer   *Endpoint // endpoint found by Dial
	closed chan struct{}
	once   sync.Once
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return Scheme
}

func (c *connector) Create(desc common.Descriptor, tuning common.Tuning) error {
	if _, err := endpointName(desc.Address); err != nil {
		return err
	}
	c.closed = make(chan struct{})
	return nil
}

func (c *connector) Bind(address string) (string, error) {
	name, err := endpointName(address)
	if err != nil {
		return "", err
	}
	e, err := Listen(name, c.capacity)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.owned = e
	c.mu.Unlock()
	return address, nil
}

func (c *connector) Dial(address string) error {
	name, err := endpointName(address)
	if err != nil {
		return err
	}
	e, ok := Lookup(name)
	if !ok {
		return fmt.Errorf("no memory endpoint listening at %q", name)
	}

	c.mu.Lock()
	c.peer = e
	c.mu.Unlock()
	Logger.Debugf("connected to memory endpoint %q", name)
	return nil
}

func (c *connector) Write(header, data []byte) error {
	c.mu.Lock()
	target := c.owned
	if target == nil {
		target = c.peer
	}
	c.mu.Unlock()

	if target == nil {
		return fmt.Errorf("memory socket neither bound nor connected")
	}
	return target.deliver(header, data, c.closed)
}

func (c *connector) Close() error {
	c.once.Do(func() {
		if c.closed != nil {
			close(c.closed)
		}
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.owned != nil {
		c.owned.Close()
		c.owned = nil
	}
	c.peer = nil
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// endpointName extracts the endpoint name from "memory://name"
func endpointName(address string) (string, error) {
	name, ok := strings.CutPrefix(address, Scheme+"://")
	if !ok {
		return "", fmt.Errorf("unsupported memory address %q", address)
	}
	if name == "" {
		return "", fmt.Errorf("memory address %q has no name", address)
	}
	return name, nil
}

// --------------------------------------------------------------------------
// Socket Factory Method
// --------------------------------------------------------------------------

// NewMemorySocket creates a new in-process socket. Bound sockets create an endpoint
// buffering capacity deliveries, connecting sockets use the consumer's endpoint.
func NewMemorySocket(capacity int) transport.ISocket {
	return base.NewBaseSocket(&connector{capacity: capacity})
}
