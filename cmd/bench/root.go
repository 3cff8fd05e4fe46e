package bench

import (
	"context"
	"encoding/csv"
	"fmt"
	cmdUtil "github.com/ValentinKolb/ndzmq/cmd/util"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/lib/util"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/publisher"
	"github.com/ValentinKolb/ndzmq/stream/serializer"
	"github.com/ValentinKolb/ndzmq/stream/transport/memory"
	"github.com/ValentinKolb/ndzmq/stream/transport/zmq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"math"
	"os"
	"slices"
	"sort"
	"strings"
	"testing"
	"time"
)

var (
	BenchCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Measure header encoding and publish throughput",
		Long:    `Run micro benchmarks of the publish path: header encoding alone, publishing to an in-process consumer and publishing over a loopback ZeroMQ PUB socket. The array shape and type are taken from the source flags`,
		PreRunE: processBenchConfig,
		RunE:    run,
	}
	benchSkip   = make([]string, 0)
	benchConfig = ndarray.SimulatorConfig{}
)

// names of the benchmarks in the order they run
const (
	testHeader        = "header"
	testPublishMemory = "publish-memory"
	testPublishZMQ    = "publish-zmq"
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	cmdUtil.SetupSourceFlags(BenchCmd)

	// add flags
	key := "skip"
	BenchCmd.Flags().String(key, "", cmdUtil.WrapString("Benchmarks to skip (comma separated - e.g. header,publish-zmq)"))
	key = "csv"
	BenchCmd.Flags().String(key, "", cmdUtil.WrapString("Optional path to save benchmark results as CSV"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	benchConfig, err = cmdUtil.GetSimulatorConfig()
	if err != nil {
		return err
	}
	benchSkip = strings.Split(viper.GetString("skip"), ",")
	return nil
}

func run(_ *cobra.Command, _ []string) error {
	// keep the publish loops quiet
	if err := common.InitLoggers("error"); err != nil {
		return err
	}

	fmt.Println("Benchmark of the ndzmq publish path")
	fmt.Println()
	fmt.Printf("Array: %s %v (%s)\n", benchConfig.DataType, dimSizes(benchConfig.Dims),
		util.FormatBytes(ndarray.NumElements(benchConfig.Dims)*benchConfig.DataType.ElementSize()))
	fmt.Println()
	fmt.Println("starting tests...")

	results := make(map[string]testing.BenchmarkResult)

	results[testHeader] = testing.Benchmark(func(b *testing.B) {
		if shouldSkip(testHeader) {
			return
		}
		benchmarkHeader(b)
	})
	printResult(testHeader, results[testHeader])

	results[testPublishMemory] = testing.Benchmark(func(b *testing.B) {
		if shouldSkip(testPublishMemory) {
			return
		}
		benchmarkPublishMemory(b)
	})
	printResult(testPublishMemory, results[testPublishMemory])

	results[testPublishZMQ] = testing.Benchmark(func(b *testing.B) {
		if shouldSkip(testPublishZMQ) {
			return
		}
		benchmarkPublishZMQ(b)
	})
	printResult(testPublishZMQ, results[testPublishZMQ])

	// Save results to CSV if path is provided
	if csvPath := viper.GetString("csv"); csvPath != "" {
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return err
		}
		fmt.Printf("\nResults saved to %s\n", csvPath)
	}
	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// benchmarkHeader measures the JSON header encoding of one frame
func benchmarkHeader(b *testing.B) {
	s := serializer.NewJSONSerializer()
	frame := sampleFrame(b)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		frame.UniqueID = int64(i)
		if _, err := s.SerializeHeader(frame); err != nil {
			b.Fatal(err)
		}
	}
}

// benchmarkPublishMemory publishes to an in-process endpoint drained by a consumer goroutine
func benchmarkPublishMemory(b *testing.B) {
	name := fmt.Sprintf("bench-%d", time.Now().UnixNano())
	config := benchPublisherConfig("memory://" + name + " PUB")

	p, err := publisher.New(config, memory.NewMemorySocket(common.DefaultSendHWM))
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	endpoint, ok := memory.Lookup(name)
	if !ok {
		b.Fatalf("memory endpoint %q not registered", name)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		for {
			if _, err := endpoint.Recv(ctx); err != nil {
				return
			}
		}
	}()

	publishLoop(b, p)
}

// benchmarkPublishZMQ publishes over a PUB socket bound to a loopback port
func benchmarkPublishZMQ(b *testing.B) {
	config := benchPublisherConfig("tcp://127.0.0.1:0 PUB")
	p, err := publisher.New(config, zmq.NewZMQSocket())
	if err != nil {
		b.Fatal(err)
	}
	defer p.Close()

	publishLoop(b, p)
}

// publishLoop runs b.N frames from a simulator through the publisher
func publishLoop(b *testing.B, p *publisher.Publisher) {
	sim := ndarray.NewSimulator(ndarray.NewPool(0), benchConfig)

	b.ResetTimer()
	err := sim.Run(context.Background(), b.N, 0, func(frame *ndarray.Frame) {
		p.Process(frame)
	})
	if err != nil {
		b.Fatal(err)
	}
	b.StopTimer()
	b.ReportMetric(float64(p.Dropped(publisher.DropTransport))/float64(b.N), "drops/op")
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func benchPublisherConfig(descriptor string) common.PublisherConfig {
	config := common.DefaultPublisherConfig()
	config.Name = "bench"
	config.Descriptor = descriptor
	config.LogLevel = "error"
	return config
}

func sampleFrame(b *testing.B) *ndarray.Frame {
	frame, err := ndarray.NewPool(0).Alloc(benchConfig.DataType, benchConfig.Dims)
	if err != nil {
		b.Fatal(err)
	}
	frame.TimeStamp = float64(time.Now().UnixNano()) / 1e9
	frame.Codec = benchConfig.Codec
	frame.Attributes.AddInt32("ArrayCounter", 1)
	frame.Attributes.AddString("note", "bench")
	return frame
}

func dimSizes(dims []ndarray.Dimension) []int {
	sizes := make([]int, len(dims))
	for i, d := range dims {
		sizes[i] = d.Size
	}
	return sizes
}

func shouldSkip(test string) bool {
	return slices.Contains(benchSkip, test)
}

func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped", "DataType", "Dims", "Codec"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	tests := make([]string, 0, len(results))
	for test := range results {
		tests = append(tests, test)
	}
	sort.Strings(tests)

	for _, test := range tests {
		result := results[test]
		var nsPerOp, opsPerSec float64
		skipped := "true"
		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			benchConfig.DataType.String(),
			fmt.Sprint(dimSizes(benchConfig.Dims)),
			benchConfig.Codec,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %v", err)
		}
	}
	return writer.Error()
}
