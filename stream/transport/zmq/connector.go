package zmq

import (
	"bytes"
	"context"
	"fmt"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/transport"
	"github.com/ValentinKolb/ndzmq/stream/transport/base"
	"github.com/go-zeromq/zmq4"
	"github.com/lni/dragonboat/v4/logger"
	"net"
	"strings"
	"sync"
	"time"
)

var Logger = logger.GetLogger("transport/zmq")

// supportedSchemes lists the endpoint transports the socket can bind or connect to
var supportedSchemes = map[string]bool{
	"tcp":    true,
	"ipc":    true,
	"inproc": true,
}

// Options control the ZeroMQ socket beyond the descriptor and the tuning
type Options struct {
	// Timeout bounds each send call into the library (0 = library default)
	Timeout time.Duration
}

// connector implements the base.IConnector interface for ZeroMQ PUB and PUSH sockets
type connector struct {
	options Options

	mu     sync.Mutex
	role   common.SocketRole
	ctx    context.Context
	cancel context.CancelFunc
	sock   zmq4.Socket
}

// --------------------------------------------------------------------------
// Interface Methods (docu see base.IConnector)
// --------------------------------------------------------------------------

func (c *connector) GetName() string {
	return "zmq"
}

func (c *connector) Create(desc common.Descriptor, tuning common.Tuning) error {
	if !supportedSchemes[desc.Scheme()] {
		return fmt.Errorf("unsupported zmq transport %q", desc.Scheme())
	}

	// connect retries are driven by the base socket so they stop on close
	opts := []zmq4.Option{
		zmq4.WithDialerMaxRetries(0),
		zmq4.WithAutomaticReconnect(true),
	}
	if c.options.Timeout > 0 {
		opts = append(opts, zmq4.WithTimeout(c.options.Timeout))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.role = desc.Role
	switch desc.Role {
	case common.RolePublish:
		c.sock = zmq4.NewPub(c.ctx, opts...)
	case common.RolePush:
		c.sock = zmq4.NewPush(c.ctx, opts...)
	default:
		return fmt.Errorf("unsupported socket role %s", desc.Role)
	}

	// PUB queues inside the library and that queue is unbounded without a hwm
	hwm := tuning.SendHWMOr(common.DefaultSendHWM)
	if err := c.sock.SetOption(zmq4.OptionHWM, hwm); err != nil {
		Logger.Debugf("socket does not accept %s=%d: %v", zmq4.OptionHWM, hwm, err)
	}
	return nil
}

func (c *connector) Bind(address string) (string, error) {
	sock := c.socket()
	if sock == nil {
		return "", fmt.Errorf("socket not created")
	}
	if err := sock.Listen(listenAddress(address)); err != nil {
		return "", err
	}
	return resolvedEndpoint(address, sock.Addr()), nil
}

func (c *connector) Dial(address string) error {
	sock := c.socket()
	if sock == nil {
		return fmt.Errorf("socket not created")
	}
	return sock.Dial(address)
}

// Write hands both parts to the library. PUSH writes to the peer before returning, PUB
// only enqueues for its own sender goroutine and gets a copy of the data, because the
// caller releases the buffer as soon as Write returns.
func (c *connector) Write(header, data []byte) error {
	c.mu.Lock()
	sock, role := c.sock, c.role
	c.mu.Unlock()
	if sock == nil {
		return fmt.Errorf("socket not created")
	}
	if role == common.RolePublish {
		data = bytes.Clone(data)
	}
	return sock.SendMulti(zmq4.NewMsgFrom(header, data))
}

func (c *connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sock == nil {
		return nil
	}
	c.cancel()
	err := c.sock.Close()
	c.sock = nil
	return err
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func (c *connector) socket() zmq4.Socket {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sock
}

// listenAddress maps the "all interfaces" wildcard to an address the tcp listener accepts
func listenAddress(address string) string {
	if strings.HasPrefix(address, "tcp://*:") {
		return "tcp://0.0.0.0:" + strings.TrimPrefix(address, "tcp://*:")
	}
	return address
}

// resolvedEndpoint returns the address with the ephemeral port the listener picked.
// A wildcard host is kept so reports show what was configured.
func resolvedEndpoint(address string, addr net.Addr) string {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok || !strings.HasPrefix(address, "tcp://") {
		return address
	}
	host, _, err := net.SplitHostPort(strings.TrimPrefix(address, "tcp://"))
	if err != nil {
		return address
	}
	return fmt.Sprintf("tcp://%s", net.JoinHostPort(host, fmt.Sprint(tcpAddr.Port)))
}

// --------------------------------------------------------------------------
// Socket Factory Method
// --------------------------------------------------------------------------

// NewZMQSocket creates a new ZeroMQ socket with default options
func NewZMQSocket() transport.ISocket {
	return NewZMQSocketWithOptions(Options{})
}

// NewZMQSocketWithOptions creates a new ZeroMQ socket with the given options
func NewZMQSocketWithOptions(options Options) transport.ISocket {
	return base.NewBaseSocket(&connector{options: options})
}
