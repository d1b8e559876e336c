package pamgo

import (
	"time"

	"github.com/hupe1980/pamgo/fabric"
)

type options struct {
	fabric            fabric.Fabric
	threads           int
	maxSwapIterations int
	progressInterval  time.Duration
	logger            *Logger
	metricsCollector  MetricsCollector
}

// Option configures Cluster behavior.
type Option func(*options)

// WithFabric joins the run to a connected collective fabric. Every
// process of the cluster must pass its own fabric to the identical
// Cluster call. Defaults to a world of one.
func WithFabric(f fabric.Fabric) Option {
	return func(o *options) {
		o.fabric = f
	}
}

// WithThreads sets the worker goroutine count inside this process.
// Defaults to 1.
func WithThreads(threads int) Option {
	return func(o *options) {
		o.threads = threads
	}
}

// WithMaxSwapIterations bounds the swap refinement loop. Defaults
// to 1000.
func WithMaxSwapIterations(iterations int) Option {
	return func(o *options) {
		o.maxSwapIterations = iterations
	}
}

// WithProgressInterval throttles swap-loop progress logging to at most
// one line per interval. Zero logs every iteration.
func WithProgressInterval(interval time.Duration) Option {
	return func(o *options) {
		o.progressInterval = interval
	}
}

// WithLogger configures the logger used for rank-0 progress output.
// Defaults to a discarding logger.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}
