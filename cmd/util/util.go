package util

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/transport"
	"github.com/ValentinKolb/ndzmq/stream/transport/memory"
	"github.com/ValentinKolb/ndzmq/stream/transport/zmq"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables read by the CLI (NDZMQ_<flag>)
	EnvPrefix = "ndzmq"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupPublisherFlags adds the publisher flags to a command
func SetupPublisherFlags(cmd *cobra.Command) {
	defaults := common.DefaultPublisherConfig()

	key := "name"
	cmd.PersistentFlags().String(key, defaults.Name, WrapString("Name of the publisher, used in logs, reports and metric labels"))

	key = "descriptor"
	cmd.PersistentFlags().String(key, defaults.Descriptor, WrapString("Connection descriptor: transport://address [PUB|PUSH] [BIND|CONNECT]. Wildcard addresses (tcp://*:5555) publish and bind, other addresses push and connect unless stated otherwise. memory://name selects the in-process transport"))

	key = "send-timeout"
	cmd.PersistentFlags().Duration(key, defaults.SendTimeout, WrapString("Maximum time a single send may wait inside the ZeroMQ library, e.g. for a PUSH peer (0 = library default)"))

	key = "max-byte-rate"
	cmd.PersistentFlags().Float64(key, 0, WrapString("Maximum published bytes per second, frames above the rate are dropped and counted (0 = unlimited)"))

	key = "metrics-endpoint"
	cmd.PersistentFlags().String(key, "", WrapString("Address of the HTTP endpoint serving /metrics and /report (e.g. localhost:9102, empty = disabled)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, defaults.LogLevel, WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// SetupSourceFlags adds the flags of the simulated array source to a command
func SetupSourceFlags(cmd *cobra.Command) {
	key := "data-type"
	cmd.PersistentFlags().String(key, "uint16", WrapString("Element type of the simulated arrays (int8, uint8, int16, uint16, int32, uint32, int64, uint64, float32, float64)"))

	key = "dims"
	cmd.PersistentFlags().String(key, "640,480", WrapString("Comma-separated axis sizes of the simulated arrays, fastest varying axis first"))

	key = "codec"
	cmd.PersistentFlags().String(key, "", WrapString("Codec name written to the encoding field of the header"))

	key = "max-frames"
	cmd.PersistentFlags().Int(key, 64, WrapString("Maximum number of frame buffers in flight (0 = unlimited)"))
}

// InitConfig loads .env files and binds environment variables to viper
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// GetPublisherConfig reads the publisher configuration from viper.
// The socket tuning comes from ZMQ_AFFINITY and ZMQ_SNDHWM.
func GetPublisherConfig() common.PublisherConfig {
	return common.PublisherConfig{
		Name:            viper.GetString("name"),
		Descriptor:      viper.GetString("descriptor"),
		Tuning:          common.TuningFromEnv(),
		SendTimeout:     viper.GetDuration("send-timeout"),
		MaxByteRate:     viper.GetFloat64("max-byte-rate"),
		MetricsEndpoint: viper.GetString("metrics-endpoint"),
		LogLevel:        viper.GetString("log-level"),
	}
}

// GetSimulatorConfig reads the simulated source configuration from viper
func GetSimulatorConfig() (ndarray.SimulatorConfig, error) {
	dataType, err := ndarray.ParseDataType(viper.GetString("data-type"))
	if err != nil {
		return ndarray.SimulatorConfig{}, err
	}
	sizes, err := ParseDims(viper.GetString("dims"))
	if err != nil {
		return ndarray.SimulatorConfig{}, err
	}
	return ndarray.SimulatorConfig{
		DataType: dataType,
		Dims:     ndarray.Dims(sizes...),
		Codec:    viper.GetString("codec"),
	}, nil
}

// ParseDims parses a comma-separated list of positive axis sizes
func ParseDims(s string) ([]int, error) {
	var sizes []int
	for _, part := range strings.Split(s, ",") {
		size, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid dimension %q in %q (expected positive integers)", part, s)
		}
		sizes = append(sizes, size)
	}
	return sizes, nil
}

// NewSocket creates the socket matching the transport of the descriptor
func NewSocket(config common.PublisherConfig) (transport.ISocket, error) {
	desc, err := common.ParseDescriptor(config.Descriptor)
	if err != nil {
		return nil, err
	}
	switch desc.Scheme() {
	case memory.Scheme:
		return memory.NewMemorySocket(config.Tuning.SendHWMOr(common.DefaultSendHWM)), nil
	default:
		return zmq.NewZMQSocketWithOptions(zmq.Options{Timeout: config.SendTimeout}), nil
	}
}
