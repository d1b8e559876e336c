package engine

import (
	"log/slog"
	"time"

	"github.com/hupe1980/pamgo/fabric"
)

// Options configures a Runner.
type Options struct {
	// Fabric joins this process to its peers. Defaults to fabric.Single().
	Fabric fabric.Fabric

	// Threads is the worker goroutine count inside this process.
	// Defaults to 1.
	Threads int

	// MaxSwapIterations bounds the Swapping loop. Defaults to 1000.
	MaxSwapIterations int

	// Logger receives rank-0 progress at debug level. Defaults to a
	// discarding logger.
	Logger *slog.Logger

	// ProgressInterval throttles swap-loop progress logging. Zero logs
	// every iteration.
	ProgressInterval time.Duration

	// Metrics receives per-step observations. Defaults to NoopMetrics.
	Metrics MetricsCollector
}

// DefaultOptions are the options used when no overrides are given.
var DefaultOptions = Options{
	Threads:           1,
	MaxSwapIterations: 1000,
}
