// Package perf implements a round-trip benchmark against a live device.
package perf

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	vmetrics "github.com/VictoriaMetrics/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mfellner/rosapi/cmd/util"
	"github.com/mfellner/rosapi/device"
)

var (
	// PerfCmd measures command round-trip latency over the multiplexed
	// connection.
	PerfCmd = &cobra.Command{
		Use:   "perf [path]",
		Short: "Measure command round-trip latency",
		Long: `Repeatedly run a cheap command (default /system/resource/print) with the
configured concurrency and report latency percentiles. All requests share
one connection, so this also exercises the multiplexer.`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    run,
		PreRunE: processConfig,
	}

	perfIterations int
	perfThreads    int
)

func init() {
	PerfCmd.Flags().IntVar(&perfIterations, "iterations", 100, util.WrapString("Number of commands to run"))
	PerfCmd.Flags().IntVar(&perfThreads, "threads", 10, util.WrapString("Number of goroutines submitting concurrently"))
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
	path := "/system/resource/print"
	if len(args) > 0 {
		path = args[0]
	}
	cmd, err := util.BuildCommand([]string{path})
	if err != nil {
		return err
	}

	cfg := util.GetDeviceConfig()
	fmt.Println("Configuration:")
	fmt.Println(cfg.String())
	fmt.Printf("Iterations: %d, Threads: %d\n\n", perfIterations, perfThreads)

	dev, err := device.Connect(cfg)
	if err != nil {
		return err
	}
	defer dev.Close()

	timer := gometrics.NewTimer()
	work := make(chan struct{}, perfIterations)
	for i := 0; i < perfIterations; i++ {
		work <- struct{}{}
	}
	close(work)

	var wg sync.WaitGroup
	var firstErr error
	var errOnce sync.Once

	start := time.Now()
	for i := 0; i < perfThreads; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range work {
				began := time.Now()
				if _, err := dev.Run(context.Background(), cmd); err != nil {
					errOnce.Do(func() { firstErr = err })
					return
				}
				timer.Update(time.Since(began))
			}
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)

	if firstErr != nil {
		return firstErr
	}

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	fmt.Printf("Total      : %v for %d commands (%.1f/sec)\n",
		elapsed.Round(time.Millisecond), timer.Count(), float64(timer.Count())/elapsed.Seconds())
	fmt.Printf("Mean       : %v\n", time.Duration(timer.Mean()).Round(time.Microsecond))
	fmt.Printf("p50/p95/p99: %v / %v / %v\n",
		time.Duration(ps[0]).Round(time.Microsecond),
		time.Duration(ps[1]).Round(time.Microsecond),
		time.Duration(ps[2]).Round(time.Microsecond))

	fmt.Println()
	vmetrics.WritePrometheus(os.Stdout, false)
	return nil
}
