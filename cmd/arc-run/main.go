// Command arc-run is a CLI harness that runs an empty graph fed with
// synthetic samples on a demo channel until SIGINT/SIGTERM, and serves its
// metrics over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	arc "github.com/arclabs/arc-runtime"
	"github.com/arclabs/arc-runtime/internal/logging"
	"github.com/arclabs/arc-runtime/internal/metricsexport"
	"github.com/arclabs/arc-runtime/internal/retrieval"
	"github.com/arclabs/arc-runtime/internal/telem"
)

func main() {
	var (
		verbose    = flag.Bool("v", false, "verbose logging")
		metricsArg = flag.String("metrics-addr", ":9090", "address to serve /metrics on, empty to disable")
		rateHz     = flag.Float64("rate", 100, "synthetic sample rate in Hz fed to the demo channel")
	)
	flag.Parse()

	logConfig := logging.DefaultConfig()
	if *verbose {
		logConfig.Level = logging.LevelDebug
	}
	logger := logging.NewLogger(logConfig)
	logging.SetDefault(logger)

	const demoChannel = telem.ChannelKey(1)
	registry := retrieval.NewMockRegistry()
	registry.Register(demoChannel, telem.Float64)

	cfg := arc.DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rt, err := arc.New(
		ctx,
		cfg,
		arc.GraphSpec{},
		[]telem.ChannelKey{demoChannel},
		registry.Retrieve,
		func(err error) { logger.Warn("runtime error", "error", err) },
		logger,
	)
	if err != nil {
		logger.Error("failed to construct runtime", "error", err)
		os.Exit(1)
	}
	defer rt.Close(context.Background())

	if *metricsArg != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(metricsexport.NewCollector(rt.Metrics()))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			logger.Info("serving metrics", "addr", *metricsArg)
			if err := http.ListenAndServe(*metricsArg, mux); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	rt.Start()
	logger.Info("runtime started", "demo_channel", demoChannel)

	stopFeed := feedSyntheticSamples(rt, demoChannel, *rateHz, logger)
	defer stopFeed()

	setupStackDumpHandler(logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("received shutdown signal")
	stopFeed()
	cancel()

	cleanupDone := make(chan struct{})
	go func() {
		rt.Stop()
		close(cleanupDone)
	}()

	select {
	case <-cleanupDone:
	case <-time.After(2 * time.Second):
		logger.Info("shutdown timeout, exiting anyway")
	}
}

// feedSyntheticSamples writes one sample to the demo channel at the given
// rate until the returned stop function is called, standing in for an
// upstream driver integration (out of scope for this core).
func feedSyntheticSamples(rt *arc.Runtime, key telem.ChannelKey, hz float64, logger *logging.Logger) func() {
	if hz <= 0 {
		hz = 1
	}
	done := make(chan struct{})
	var stopped bool
	go func() {
		ticker := time.NewTicker(time.Duration(float64(time.Second) / hz))
		defer ticker.Stop()
		var t float64
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				f := telem.NewFrame()
				s := telem.NewSeries(telem.Float64, 1)
				s.WriteFloat(t)
				f.Append(key, s)
				if err := rt.Write(f); err != nil {
					logger.Debug("synthetic write dropped", "error", err)
				}
				t += 1
			}
		}
	}()
	return func() {
		if !stopped {
			stopped = true
			close(done)
		}
	}
}

func setupStackDumpHandler(logger *logging.Logger) {
	stackDumpCh := make(chan os.Signal, 1)
	signal.Notify(stackDumpCh, syscall.SIGUSR1)
	go func() {
		for range stackDumpCh {
			buf := make([]byte, 1024*1024)
			n := runtime.Stack(buf, true)
			fmt.Fprintf(os.Stderr, "\n=== GOROUTINE STACK DUMP ===\n%s\n", buf[:n])
			pprof.Lookup("goroutine").WriteTo(os.Stderr, 2)
			logger.Info("stack dump written to stderr")
		}
	}()
}
