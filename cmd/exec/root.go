// Package exec implements the one-shot command subcommand.
package exec

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/VictoriaMetrics/metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfellner/rosapi/cmd/util"
	"github.com/mfellner/rosapi/device"
)

var (
	// ExecCmd runs one command against the device and prints its replies.
	ExecCmd = &cobra.Command{
		Use:   "exec <path> [key=value|key|?query]...",
		Short: "Run a command and print its replies",
		Long: `Run a single command against the device.

Examples:
  rosapi exec /system/resource/print
  rosapi exec /interface/print "?type=ether" detail
  rosapi exec /ip/address/add address=10.0.0.1/24 interface=ether1`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    run,
		PreRunE: processConfig,
	}

	showMetrics bool
)

func init() {
	ExecCmd.Flags().BoolVar(&showMetrics, "metrics", false, util.WrapString("Dump connection metrics in Prometheus format after the run"))
}

func processConfig(cmd *cobra.Command, _ []string) error {
	util.InitConfig()
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	util.SetupLogging()
	return nil
}

func run(_ *cobra.Command, args []string) error {
	cmd, err := util.BuildCommand(args)
	if err != nil {
		return err
	}

	dev, err := device.Connect(util.GetDeviceConfig())
	if err != nil {
		return err
	}
	defer dev.Close()

	replies, err := dev.Run(context.Background(), cmd)
	if err != nil {
		return err
	}

	for i, reply := range replies {
		if i > 0 {
			fmt.Println()
		}
		printAttributes(reply.Attributes)
	}

	if showMetrics {
		metrics.WritePrometheus(os.Stdout, false)
	}
	return nil
}

func printAttributes(attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s\n", k, attrs[k])
	}
}
