package pamgo

import (
	"context"
	"fmt"

	"github.com/hupe1980/pamgo/engine"
	"github.com/hupe1980/pamgo/matrix"
	"github.com/hupe1980/pamgo/medoids"
)

// Cluster partitions the objects of m into k clusters around medoids and
// returns the assignment.
//
// k=1 and k=N are served without running the engine: one cluster holding
// everything, or every object its own medoid. For 1 < k < N the full
// build/swap machinery runs, distributed over the configured fabric and
// thread count. Every process of a distributed run must issue the
// identical call; each returns an identical assignment.
func Cluster(ctx context.Context, m *matrix.Matrix, k int, optFns ...Option) (*Assignment, error) {
	opts := options{
		threads: 1,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	n := m.Size()
	if k < 1 || k > n {
		return nil, fmt.Errorf("%w: k=%d, N=%d", ErrInvalidK, k, n)
	}

	switch k {
	case 1:
		// All objects share one cluster around a nominal medoid.
		return assemble(make([]int, n), []int{0}, totalTo(m, 0)), nil
	case n:
		// Every object is its own medoid.
		labels := make([]int, n)
		clusterMedoids := make([]int, n)
		for i := range labels {
			labels[i] = i
			clusterMedoids[i] = i
		}
		return assemble(labels, clusterMedoids, 0), nil
	}

	state, err := medoids.NewState(m, k)
	if err != nil {
		return nil, err
	}

	runner := engine.New(state, func(o *engine.Options) {
		o.Fabric = opts.fabric
		o.Threads = opts.threads
		o.MaxSwapIterations = opts.maxSwapIterations
		o.ProgressInterval = opts.progressInterval
		o.Metrics = opts.metricsCollector
		if opts.logger != nil {
			o.Logger = opts.logger.Logger
		}
	})

	if err := runner.Run(ctx); err != nil {
		return nil, err
	}

	return newAssignment(state), nil
}

func totalTo(m *matrix.Matrix, medoid int) float32 {
	var total float32
	for i := 0; i < m.Size(); i++ {
		total += m.Distance(i, medoid)
	}
	return total
}
