// Command simulate runs the flock without a window and reports how the
// spatial index behaves: per-window telemetry CSV, a final snapshot and
// Prometheus metrics.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lao-tseu-is-alive/go-boids-index/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/spatial"
	"github.com/lao-tseu-is-alive/go-boids-index/pkg/telemetry"
	"github.com/tochemey/goakt/v3/log"
)

type options struct {
	configFile  string
	ticks       int
	dt          float64
	window      int
	outDir      string
	restoreFile string
	metricsAddr string
	index       string
	policy      string
	seed        int64
	debug       bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configFile, "config", "", "settings file (.json or .yaml); defaults when empty")
	flag.IntVar(&o.ticks, "ticks", 600, "number of steps to run")
	flag.Float64Var(&o.dt, "dt", 1.0/60, "seconds per step")
	flag.IntVar(&o.window, "window", 60, "steps per telemetry window")
	flag.StringVar(&o.outDir, "out", "", "directory for config.yaml, telemetry.csv and snapshot.json")
	flag.StringVar(&o.restoreFile, "restore", "", "snapshot.json to resume from")
	flag.StringVar(&o.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flag.StringVar(&o.index, "index", "", "override the index kind (kdtree, grid, scan)")
	flag.StringVar(&o.policy, "policy", "", "override the update policy (rebuild, incremental)")
	flag.Int64Var(&o.seed, "seed", -1, "override the seed")
	flag.BoolVar(&o.debug, "debug", false, "debug logging")
	flag.Parse()
	return o
}

func loadConfig(o options) (*simulation.Config, error) {
	cfg := simulation.DefaultConfig()
	if o.configFile != "" {
		var err error
		if cfg, err = simulation.LoadConfig(o.configFile); err != nil {
			return nil, err
		}
	}
	if o.index != "" {
		cfg.IndexKind = spatial.Kind(o.index)
	}
	if o.policy != "" {
		cfg.UpdatePolicy = simulation.UpdatePolicy(o.policy)
	}
	if o.seed >= 0 {
		cfg.Seed = uint64(o.seed)
	}
	return cfg, cfg.Validate()
}

func main() {
	o := parseFlags()

	level := log.InfoLevel
	if o.debug {
		level = log.DebugLevel
	}
	logger := log.New(level, os.Stdout)

	if err := run(o, logger); err != nil {
		logger.Fatal(err)
	}
}

func run(o options, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig(o)
	if err != nil {
		return err
	}

	world, err := simulation.NewWorld(cfg, logger)
	if err != nil {
		return err
	}
	if o.restoreFile != "" {
		data, err := os.ReadFile(o.restoreFile)
		if err != nil {
			return err
		}
		s, err := simulation.UnmarshalSnapshot(data)
		if err != nil {
			return err
		}
		if err := world.Restore(s); err != nil {
			return err
		}
	}

	out, err := telemetry.NewOutputManager(o.outDir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}

	metrics := telemetry.NewMetrics(string(cfg.IndexKind))
	if o.metricsAddr != "" {
		srv := &http.Server{Addr: o.metricsAddr, Handler: metricsMux(metrics)}
		go func() {
			logger.Infof("Serving metrics on %s/metrics", o.metricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	collector := telemetry.NewCollector(o.window, o.dt, metrics)
	start := time.Now()

	for i := 0; i < o.ticks; i++ {
		if ctx.Err() != nil {
			logger.Info("Interrupted, writing what we have")
			break
		}
		collector.Record(world.Step(o.dt))
		if collector.ShouldFlush() {
			if err := flushWindow(collector, out, logger); err != nil {
				return err
			}
		}
	}
	// Partial last window.
	if err := flushWindow(collector, out, logger); err != nil {
		return err
	}

	logger.Infof("Ran %d ticks of %d boids with %s/%s in %s",
		world.Tick(), world.Index().Len(), cfg.IndexKind, cfg.UpdatePolicy, time.Since(start).Round(time.Millisecond))

	return out.WriteSnapshot(world.Snapshot())
}

func flushWindow(c *telemetry.Collector, out *telemetry.OutputManager, logger log.Logger) error {
	stats := c.Flush()
	if stats.Ticks == 0 {
		return nil
	}
	logger.Info(stats.String())
	return out.WriteTelemetry(stats)
}

func metricsMux(m *telemetry.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
