package serve

import (
	"context"
	"errors"
	"fmt"
	cmdUtil "github.com/ValentinKolb/ndzmq/cmd/util"
	"github.com/ValentinKolb/ndzmq/lib/ndarray"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/ValentinKolb/ndzmq/stream/publisher"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

var (
	Logger = logger.GetLogger("cli")

	serveCmdConfig = common.PublisherConfig{}
	simConfig      = ndarray.SimulatorConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Publish simulated arrays",
		Long:    `Publish arrays produced by the built-in simulator over the configured socket. The configuration can be set via command line flags or environment variables. The format of the environment variables is NDZMQ_<flag> (e.g. NDZMQ_MAX_BYTE_RATE=1e6), the socket tuning is read from ZMQ_AFFINITY and ZMQ_SNDHWM`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	cmdUtil.SetupPublisherFlags(ServeCmd)
	cmdUtil.SetupSourceFlags(ServeCmd)

	key := "interval"
	ServeCmd.PersistentFlags().Duration(key, 100*time.Millisecond, cmdUtil.WrapString("Time between two simulated arrays (0 = as fast as possible)"))

	key = "count"
	ServeCmd.PersistentFlags().Int(key, 0, cmdUtil.WrapString("Number of arrays to publish before exiting (0 = until interrupted)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := cmdUtil.BindCommandFlags(cmd); err != nil {
		return err
	}

	serveCmdConfig = cmdUtil.GetPublisherConfig()
	if err := serveCmdConfig.Validate(); err != nil {
		return err
	}

	var err error
	simConfig, err = cmdUtil.GetSimulatorConfig()
	return err
}

// run publishes simulated arrays until the count is reached or the process is interrupted
func run(cmd *cobra.Command, _ []string) error {
	if err := common.InitLoggers(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	fmt.Println(serveCmdConfig.String())

	socket, err := cmdUtil.NewSocket(serveCmdConfig)
	if err != nil {
		return err
	}
	p, err := publisher.New(serveCmdConfig, socket)
	if err != nil {
		return err
	}
	defer func() {
		if err := p.Close(); err != nil {
			Logger.Errorf("failed to close publisher: %v", err)
		}
		_ = p.Report(cmd.OutOrStdout())
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveCmdConfig.MetricsEndpoint != "" {
		srv := newMetricsServer(serveCmdConfig.MetricsEndpoint, p)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				Logger.Errorf("metrics endpoint failed: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		Logger.Infof("serving metrics at http://%s/metrics", serveCmdConfig.MetricsEndpoint)
	}

	sim := ndarray.NewSimulator(ndarray.NewPool(viper.GetInt("max-frames")), simConfig)
	err = sim.Run(ctx, viper.GetInt("count"), viper.GetDuration("interval"), func(frame *ndarray.Frame) {
		p.Process(frame)
	})
	if n := sim.Skipped(); n > 0 {
		Logger.Warningf("%d acquisitions skipped because all %d frame buffers were in flight", n, viper.GetInt("max-frames"))
	}
	if errors.Is(err, context.Canceled) {
		Logger.Infof("interrupted after %d arrays", sim.ArrayCounter())
		return nil
	}
	return err
}

// newMetricsServer serves the publisher counters in Prometheus format and the status report
func newMetricsServer(addr string, p *publisher.Publisher) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		p.WritePrometheus(w)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_ = p.Report(w)
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
