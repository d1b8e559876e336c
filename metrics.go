package pamgo

import "github.com/hupe1980/pamgo/engine"

// MetricsCollector receives per-step observations from the clustering
// engine. Implement it to integrate with a monitoring system.
type MetricsCollector = engine.MetricsCollector

// NoopMetricsCollector discards all observations.
type NoopMetricsCollector = engine.NoopMetrics

// BasicMetricsCollector counts steps and swaps in memory.
type BasicMetricsCollector = engine.BasicMetrics
