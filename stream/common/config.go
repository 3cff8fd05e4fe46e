package common

import (
	"fmt"
	"github.com/spf13/viper"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Socket tuning (process environment)
// --------------------------------------------------------------------------

const (
	// EnvPrefix is the prefix of the socket tuning variables (ZMQ_AFFINITY, ZMQ_SNDHWM)
	EnvPrefix = "zmq"

	// DefaultSendHWM is the send high-water mark used when ZMQ_SNDHWM is absent
	DefaultSendHWM = 1000
)

// Tuning holds the optional socket tuning read from the environment.
// A nil field means "not set", the socket keeps its default.
type Tuning struct {
	// Affinity is a bitmask of CPUs the socket's I/O goroutine may run on
	Affinity *int
	// SendHWM bounds the number of frames queued for sending
	SendHWM *int
}

// SendHWMOr returns the configured high-water mark or def if unset or not positive.
// Unlike libzmq, 0 does not mean unlimited: the send queue is always bounded.
func (t Tuning) SendHWMOr(def int) int {
	if t.SendHWM == nil || *t.SendHWM <= 0 {
		return def
	}
	return *t.SendHWM
}

// TuningFromEnv reads ZMQ_AFFINITY and ZMQ_SNDHWM. A value that does not start with
// a decimal integer is treated as absent.
func TuningFromEnv() Tuning {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	return Tuning{
		Affinity: scanInt(v.GetString("affinity")),
		SendHWM:  scanInt(v.GetString("sndhwm")),
	}
}

// scanInt parses the leading decimal integer of s
func scanInt(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var value int
	if n, _ := fmt.Sscanf(s, "%d", &value); n != 1 {
		return nil
	}
	return &value
}

// String returns a formatted representation of the tuning
func (t Tuning) String() string {
	format := func(p *int) string {
		if p == nil {
			return "(default)"
		}
		return strconv.Itoa(*p)
	}
	return fmt.Sprintf("affinity=%s sndhwm=%s", format(t.Affinity), format(t.SendHWM))
}

// --------------------------------------------------------------------------
// Publisher configuration struct
// --------------------------------------------------------------------------

// PublisherConfig holds all configuration parameters of a frame publisher
type PublisherConfig struct {
	// Name identifies the publisher in logs and reports
	Name string

	// Descriptor is the connection descriptor ("tcp://*:5555 PUB BIND")
	Descriptor string

	// Tuning overrides, usually TuningFromEnv()
	Tuning Tuning

	// SendTimeout bounds how long one library send may wait, e.g. for a PUSH peer
	// (0 = library default of 5 minutes)
	SendTimeout time.Duration

	// MaxByteRate limits the published bytes per second (0 = unlimited)
	MaxByteRate float64

	// MetricsEndpoint is the listen address of the prometheus endpoint ("" = disabled)
	MetricsEndpoint string

	// Logging configuration
	LogLevel string
}

// DefaultPublisherConfig returns a config with the default values
func DefaultPublisherConfig() PublisherConfig {
	return PublisherConfig{
		Name:        "ndzmq",
		Descriptor:  "tcp://*:5555",
		SendTimeout: 5 * time.Second,
		LogLevel:    "info",
	}
}

// Validate checks the config without opening anything
func (c *PublisherConfig) Validate() error {
	if _, err := ParseDescriptor(c.Descriptor); err != nil {
		return err
	}
	if c.MaxByteRate < 0 {
		return fmt.Errorf("%w: max byte rate must not be negative, got %g", ErrConfiguration, c.MaxByteRate)
	}
	if c.SendTimeout < 0 {
		return fmt.Errorf("%w: send timeout must not be negative, got %s", ErrConfiguration, c.SendTimeout)
	}
	_, err := ParseLogLevel(c.LogLevel)
	return err
}

// String returns a formatted string representation of the configuration
func (c *PublisherConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Publisher")
	addField("Name", c.Name)
	addField("Descriptor", c.Descriptor)
	if d, err := ParseDescriptor(c.Descriptor); err == nil {
		addField("Resolved", d.String())
	} else {
		addField("Resolved", "invalid")
	}
	if c.MaxByteRate > 0 {
		addField("Max Byte Rate", fmt.Sprintf("%g B/s", c.MaxByteRate))
	} else {
		addField("Max Byte Rate", "unlimited")
	}

	addSection("Socket")
	addField("Send Timeout", c.SendTimeout.String())
	addField("Send HWM", strconv.Itoa(c.Tuning.SendHWMOr(DefaultSendHWM)))
	if c.Tuning.Affinity != nil {
		addField("Affinity", fmt.Sprintf("%#x", *c.Tuning.Affinity))
	} else {
		addField("Affinity", "(default)")
	}

	addSection("Metrics")
	if c.MetricsEndpoint != "" {
		addField("Endpoint", c.MetricsEndpoint)
	} else {
		addField("Endpoint", "disabled")
	}

	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
