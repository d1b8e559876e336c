package engine

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/pamgo/medoids"
)

// MetricsCollector receives observations from the phase driver.
// Implement it to integrate with a monitoring system.
type MetricsCollector interface {
	// RecordStep is called after every completed step with the phase the
	// step ran in and its duration.
	RecordStep(phase medoids.Phase, duration time.Duration)

	// RecordSwap is called after every accepted swap with the predicted
	// cost change.
	RecordSwap(iteration int, result float32)
}

// NoopMetrics discards all observations.
type NoopMetrics struct{}

func (NoopMetrics) RecordStep(medoids.Phase, time.Duration) {}
func (NoopMetrics) RecordSwap(int, float32)                 {}

// BasicMetrics counts steps and swaps in memory. Useful for tests and
// debugging without an external monitoring system.
type BasicMetrics struct {
	BuildSteps     atomic.Int64
	SwapIterations atomic.Int64
	AcceptedSwaps  atomic.Int64
	StepTotalNanos atomic.Int64
}

func (b *BasicMetrics) RecordStep(phase medoids.Phase, duration time.Duration) {
	if phase == medoids.PhaseSwapping {
		b.SwapIterations.Add(1)
	} else {
		b.BuildSteps.Add(1)
	}
	b.StepTotalNanos.Add(duration.Nanoseconds())
}

func (b *BasicMetrics) RecordSwap(int, float32) {
	b.AcceptedSwaps.Add(1)
}
