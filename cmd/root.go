// Package cmd wires up the rosapi command line tool.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mfellner/rosapi/cmd/exec"
	"github.com/mfellner/rosapi/cmd/listen"
	"github.com/mfellner/rosapi/cmd/perf"
	"github.com/mfellner/rosapi/cmd/util"
)

const (
	Version = "0.3.1"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "rosapi",
		Short: "RouterOS API client",
		Long: fmt.Sprintf(`rosapi (v%s)

A client for the RouterOS binary API. Issues commands over a single
multiplexed connection and prints the device's replies.`, Version),
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rosapi",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rosapi v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(exec.ExecCmd)
	RootCmd.AddCommand(listen.ListenCmd)
	RootCmd.AddCommand(perf.PerfCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupDeviceFlags(RootCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
