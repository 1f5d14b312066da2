// Package listen implements the streaming subcommand.
package listen

import (
	"context"
	"fmt"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfellner/rosapi/cmd/util"
	"github.com/mfellner/rosapi/device"
	"github.com/mfellner/rosapi/response"
)

// ListenCmd runs a streaming command (listen, monitor, ...) and prints
// replies until interrupted. Interrupting abandons the stream locally; the
// device keeps the command running until the connection closes.
var ListenCmd = &cobra.Command{
	Use:   "listen <path> [key=value|key|?query]...",
	Short: "Run a streaming command until interrupted",
	Long: `Run a streaming command and print replies as they arrive.

Examples:
  rosapi listen /interface/listen
  rosapi listen /ip/firewall/connection/listen
  rosapi listen /interface/monitor-traffic interface=ether1`,
	Args:    cobra.MinimumNArgs(1),
	RunE:    run,
	PreRunE: processConfig,
}

func processConfig(cmd *cobra.Command, _ []string) error {
	util.InitConfig()
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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stream, err := dev.Send(ctx, cmd)
	if err != nil {
		return err
	}
	defer stream.Close()

	for {
		select {
		case <-ctx.Done():
			return nil
		case result, ok := <-stream.Chan():
			if !ok {
				return nil
			}
			if result.Err != nil {
				return result.Err
			}
			switch r := result.Response.(type) {
			case *response.Reply:
				printReply(r.Attributes)
			case *response.Done:
				return nil
			case *response.Trap:
				return r
			case *response.Fatal:
				return r
			}
		}
	}
}

func printReply(attrs map[string]string) {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%s=%s ", k, attrs[k])
	}
	fmt.Println()
}
