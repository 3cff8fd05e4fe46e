package cmd

import (
	"fmt"
	"github.com/ValentinKolb/ndzmq/cmd/bench"
	"github.com/ValentinKolb/ndzmq/cmd/serve"
	"github.com/ValentinKolb/ndzmq/cmd/util"
	"github.com/ValentinKolb/ndzmq/stream/common"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "ndzmq",
		Short: "stream n-dimensional arrays over ZeroMQ",
		Long: fmt.Sprintf(`ndzmq (v%s)

Publishes n-dimensional detector arrays as two-part ZeroMQ messages
(a JSON header followed by the raw array data) over PUB or PUSH sockets.`, Version),
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ndzmq",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ndzmq v%s\n", Version)
		},
	}

	// resolveCmd prints how a connection descriptor is interpreted
	resolveCmd = &cobra.Command{
		Use:   "resolve DESCRIPTOR...",
		Short: "Resolve connection descriptors",
		Long: util.WrapString(`Resolve one or more connection descriptors (e.g. "tcp://*:5555" or "tcp://host:5555 PUB CONNECT") and print the socket type and bind mode they select.`),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, raw := range args {
				desc, err := common.ParseDescriptor(raw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s -> %s\n", raw, desc)
			}
			return nil
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(resolveCmd)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
